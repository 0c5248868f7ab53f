package jwtcookie

import (
	"context"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestUserContextRoundTrip(t *testing.T) {
	user := &User{Username: "jdoe"}

	ctx := WithUserContext(context.Background(), user)
	got, ok := UserFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, user, got)

	_, ok = UserFromContext(context.Background())
	assert.False(t, ok)
}

func TestClaimsContextRoundTrip(t *testing.T) {
	claims := Claims{"username": "jdoe"}

	ctx := WithClaimsContext(context.Background(), claims)
	got, ok := ClaimsFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, claims, got)

	_, ok = ClaimsFromContext(context.Background())
	assert.False(t, ok)
}

func TestRequestCacheIsPerRequest(t *testing.T) {
	ctx := router.NewMockContext()
	ctx.On("Locals", mock.Anything, mock.Anything).Return(nil).Maybe()

	first := requestCacheFrom(ctx)
	first.token = "abc"

	second := requestCacheFrom(ctx)
	assert.Same(t, first, second)
	assert.Equal(t, "abc", second.token)

	other := router.NewMockContext()
	other.On("Locals", mock.Anything, mock.Anything).Return(nil).Maybe()
	assert.Empty(t, requestCacheFrom(other).token)
}

func TestIsJwtAuthenticated(t *testing.T) {
	ctx := router.NewMockContext()
	ctx.On("Locals", mock.Anything, mock.Anything).Return(nil).Maybe()

	assert.False(t, IsJwtAuthenticated(ctx))

	cache := requestCacheFrom(ctx)
	cache.token = "abc"
	assert.False(t, IsJwtAuthenticated(ctx), "token without resolved user is not authenticated")

	cache.user = &User{Username: "jdoe"}
	assert.True(t, IsJwtAuthenticated(ctx))
}
