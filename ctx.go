package jwtcookie

import (
	"context"

	"github.com/goliatone/go-router"
)

var userCtxKey = &contextKey{"user"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// requestCacheKey is the router-context key holding the per-request cache.
const requestCacheKey = "jwt_auth_request_cache"

// requestCache memoizes per-request work so the decision engine and later
// helpers never re-locate or re-decode the credential within one request.
// The cache lives in the request context and is never shared across requests.
type requestCache struct {
	located   bool
	token     string
	transport TokenTransport
	claims    Claims
	user      *User
	outcome   *AuthOutcome
}

func requestCacheFrom(ctx router.Context) *requestCache {
	if cached, ok := ctx.Locals(requestCacheKey).(*requestCache); ok {
		return cached
	}

	cache := &requestCache{}
	ctx.Locals(requestCacheKey, cache)
	return cache
}

// WithUserContext sets the User in the given context
func WithUserContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// UserFromContext finds the user from the context.
func UserFromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// WithClaimsContext sets the decoded Claims in the given context
func WithClaimsContext(r context.Context, claims Claims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// ClaimsFromContext extracts the decoded Claims from the standard context
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(Claims)
	return raw, ok
}

// IsJwtAuthenticated reports whether this layer authenticated the request,
// meaning a token decoded successfully and resolved to a user record.
func IsJwtAuthenticated(ctx router.Context) bool {
	cache, ok := ctx.Locals(requestCacheKey).(*requestCache)
	if !ok {
		return false
	}
	return cache.user != nil && cache.token != ""
}
