package jwtcookie_test

import (
	"testing"

	jwtcookie "github.com/goliatone/go-jwt-cookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserAttributeColumns(t *testing.T) {
	user := &jwtcookie.User{
		Username: "jdoe",
		Email:    "jdoe@example.com",
		IsStaff:  true,
	}

	v, ok := user.Attribute("username")
	assert.True(t, ok)
	assert.Equal(t, "jdoe", v)

	v, ok = user.Attribute("is_staff")
	assert.True(t, ok)
	assert.Equal(t, true, v)

	_, ok = user.Attribute("tier")
	assert.False(t, ok)
}

func TestUserAttributeMetadataFallback(t *testing.T) {
	user := &jwtcookie.User{}
	user.AddMetadata("extra", map[string]any{"tier": "gold"})

	v, ok := user.Attribute("extra")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"tier": "gold"}, v)
}

func TestUserSetAttribute(t *testing.T) {
	user := &jwtcookie.User{}

	require.NoError(t, user.SetAttribute("email", "jdoe@example.com"))
	assert.Equal(t, "jdoe@example.com", user.Email)

	require.NoError(t, user.SetAttribute("is_staff", true))
	assert.True(t, user.IsStaff)

	// unknown attribute names land in metadata
	require.NoError(t, user.SetAttribute("tier", "gold"))
	assert.Equal(t, "gold", user.Metadata["tier"])

	// type mismatches are refused, not coerced
	assert.Error(t, user.SetAttribute("email", 42))
	assert.Error(t, user.SetAttribute("is_staff", "yes"))
}
