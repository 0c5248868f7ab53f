package jwtcookie_test

import (
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	jwtcookie "github.com/goliatone/go-jwt-cookie"
	"github.com/stretchr/testify/assert"
)

func TestIsTokenDecodeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "decode error",
			err:      jwtcookie.ErrTokenDecode,
			expected: true,
		},
		{
			name:     "expired counts as decode failure",
			err:      jwtcookie.ErrTokenExpired,
			expected: true,
		},
		{
			name:     "wrapped decode error",
			err:      goerrors.Wrap(errors.New("boom"), goerrors.CategoryAuth, "decode").WithTextCode(jwtcookie.TextCodeTokenDecode),
			expected: true,
		},
		{
			name:     "csrf error is not a decode error",
			err:      jwtcookie.ErrCsrfFailed,
			expected: false,
		},
		{
			name:     "plain error",
			err:      errors.New("something"),
			expected: false,
		},
		{
			name:     "nil",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, jwtcookie.IsTokenDecodeError(tt.err))
		})
	}
}

func TestIsTokenExpiredError(t *testing.T) {
	assert.True(t, jwtcookie.IsTokenExpiredError(jwtcookie.ErrTokenExpired))
	assert.False(t, jwtcookie.IsTokenExpiredError(jwtcookie.ErrTokenDecode))
	assert.False(t, jwtcookie.IsTokenExpiredError(nil))
}

func TestIsCsrfError(t *testing.T) {
	assert.True(t, jwtcookie.IsCsrfError(jwtcookie.ErrCsrfFailed))
	assert.False(t, jwtcookie.IsCsrfError(jwtcookie.ErrTokenDecode))

	wrapped := goerrors.Wrap(errors.New("mismatch"), goerrors.CategoryAuth, "csrf").
		WithTextCode(jwtcookie.TextCodeCsrfFailed)
	assert.True(t, jwtcookie.IsCsrfError(wrapped))
}

func TestIsIdentityError(t *testing.T) {
	assert.True(t, jwtcookie.IsIdentityError(jwtcookie.ErrMissingUsernameClaim))
	assert.True(t, jwtcookie.IsIdentityError(jwtcookie.ErrIdentityStore))
	assert.False(t, jwtcookie.IsIdentityError(jwtcookie.ErrTokenDecode))
	assert.False(t, jwtcookie.IsIdentityError(errors.New("other")))
}
