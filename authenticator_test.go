package jwtcookie_test

import (
	"errors"
	"testing"

	jwtcookie "github.com/goliatone/go-jwt-cookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthenticator(decoder *MockDecoder, identities *MockIdentityStore, cfg *jwtcookie.SimpleConfig, guard jwtcookie.CsrfGuard) *jwtcookie.RequestAuthenticator {
	return jwtcookie.NewRequestAuthenticator(decoder, identities, cfg).
		WithCsrfGuard(guard)
}

func TestAuthenticateHeaderTokenSkipsCsrf(t *testing.T) {
	decoder := new(MockDecoder)
	identities := new(MockIdentityStore)
	guard := new(MockGuard)
	cfg := &jwtcookie.SimpleConfig{}

	claims := jwtcookie.Claims{"preferred_username": "jdoe"}
	user := &jwtcookie.User{Username: "jdoe"}

	decoder.On("Decode", "valid-token").Return(claims, nil)
	identities.On("Resolve", mock.Anything, claims).Return(user, nil)

	auth := newAuthenticator(decoder, identities, cfg, guard)
	ctx := newAuthContext("JWT valid-token")

	outcome := auth.Authenticate(ctx)

	require.True(t, outcome.IsAuthenticated())
	assert.Equal(t, user, outcome.User)
	assert.Equal(t, "valid-token", outcome.Token)
	assert.Equal(t, jwtcookie.TransportAuthorizationHeader, outcome.Transport)

	// the guard must never run for header credentials
	guard.AssertNotCalled(t, "Check", mock.Anything)
	decoder.AssertExpectations(t)
	identities.AssertExpectations(t)
}

func TestAuthenticateCookieTokenRequiresCsrf(t *testing.T) {
	decoder := new(MockDecoder)
	identities := new(MockIdentityStore)
	guard := new(MockGuard)
	cfg := &jwtcookie.SimpleConfig{}

	claims := jwtcookie.Claims{"username": "jdoe"}
	user := &jwtcookie.User{Username: "jdoe"}

	decoder.On("Decode", "cookie-token").Return(claims, nil)
	guard.On("Check", mock.Anything).Return(nil)
	identities.On("Resolve", mock.Anything, claims).Return(user, nil)

	auth := newAuthenticator(decoder, identities, cfg, guard)
	ctx := newAuthContext("")
	ctx.CookiesM[jwtcookie.DefaultJWTCookieName] = "cookie-token"

	outcome := auth.Authenticate(ctx)

	require.True(t, outcome.IsAuthenticated())
	assert.Equal(t, jwtcookie.TransportCookie, outcome.Transport)
	guard.AssertExpectations(t)
}

func TestAuthenticateCookieCsrfFailureRejectsEvenWhenForgiving(t *testing.T) {
	decoder := new(MockDecoder)
	identities := new(MockIdentityStore)
	guard := new(MockGuard)
	cfg := &jwtcookie.SimpleConfig{ForgivingCookies: true}

	claims := jwtcookie.Claims{"username": "jdoe"}

	decoder.On("Decode", "cookie-token").Return(claims, nil)
	guard.On("Check", mock.Anything).Return(errors.New("token mismatch"))

	auth := newAuthenticator(decoder, identities, cfg, guard)
	ctx := newAuthContext("")
	ctx.CookiesM[jwtcookie.DefaultJWTCookieName] = "cookie-token"

	outcome := auth.Authenticate(ctx)

	require.True(t, outcome.IsRejected())
	assert.True(t, jwtcookie.IsCsrfError(outcome.Err))
	identities.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestAuthenticateCookieDecodeFailureStrict(t *testing.T) {
	decoder := new(MockDecoder)
	identities := new(MockIdentityStore)
	cfg := &jwtcookie.SimpleConfig{}
	sink := &capturingSink{}

	decodeErr := jwtcookie.ErrTokenDecode

	decoder.On("Decode", "bad-token").Return(nil, decodeErr)

	auth := newAuthenticator(decoder, identities, cfg, nil).WithMetricsSink(sink)
	ctx := newAuthContext("")
	ctx.CookiesM[jwtcookie.DefaultJWTCookieName] = "bad-token"

	outcome := auth.Authenticate(ctx)

	require.True(t, outcome.IsRejected())
	assert.True(t, jwtcookie.IsTokenDecodeError(outcome.Err))

	require.Len(t, sink.failures, 1)
	assert.Equal(t, "cookie", sink.failures[0].transport)
	assert.False(t, sink.failures[0].forgiven)
}

func TestAuthenticateCookieDecodeFailureForgiving(t *testing.T) {
	decoder := new(MockDecoder)
	identities := new(MockIdentityStore)
	cfg := &jwtcookie.SimpleConfig{ForgivingCookies: true}
	sink := &capturingSink{}

	decoder.On("Decode", "bad-token").Return(nil, jwtcookie.ErrTokenExpired)

	auth := newAuthenticator(decoder, identities, cfg, nil).WithMetricsSink(sink)
	ctx := newAuthContext("")
	ctx.CookiesM[jwtcookie.DefaultJWTCookieName] = "bad-token"

	outcome := auth.Authenticate(ctx)

	require.True(t, outcome.IsDeferred())
	assert.NoError(t, outcome.Err)

	require.Len(t, sink.failures, 1)
	assert.Equal(t, "cookie", sink.failures[0].transport)
	assert.True(t, sink.failures[0].forgiven)
}

func TestAuthenticateHeaderDecodeFailureNeverForgiven(t *testing.T) {
	for _, forgiving := range []bool{false, true} {
		decoder := new(MockDecoder)
		identities := new(MockIdentityStore)
		cfg := &jwtcookie.SimpleConfig{ForgivingCookies: forgiving}
		sink := &capturingSink{}

		decoder.On("Decode", "bad-token").Return(nil, jwtcookie.ErrTokenDecode)

		auth := newAuthenticator(decoder, identities, cfg, nil).WithMetricsSink(sink)
		ctx := newAuthContext("JWT bad-token")

		outcome := auth.Authenticate(ctx)

		require.True(t, outcome.IsRejected(), "forgiving=%v", forgiving)
		assert.Equal(t, jwtcookie.TransportAuthorizationHeader, outcome.Transport)

		require.Len(t, sink.failures, 1)
		assert.Equal(t, "auth-header", sink.failures[0].transport)
		assert.False(t, sink.failures[0].forgiven)
	}
}

func TestAuthenticateNoCredentialDefers(t *testing.T) {
	decoder := new(MockDecoder)
	identities := new(MockIdentityStore)
	cfg := &jwtcookie.SimpleConfig{}

	auth := newAuthenticator(decoder, identities, cfg, nil)
	ctx := newAuthContext("")

	outcome := auth.Authenticate(ctx)

	require.True(t, outcome.IsDeferred())
	decoder.AssertNotCalled(t, "Decode", mock.Anything)
}

func TestAuthenticateIdentityFailureIsTerminalInBothModes(t *testing.T) {
	for _, forgiving := range []bool{false, true} {
		decoder := new(MockDecoder)
		identities := new(MockIdentityStore)
		guard := new(MockGuard)
		cfg := &jwtcookie.SimpleConfig{ForgivingCookies: forgiving}

		claims := jwtcookie.Claims{"username": "jdoe"}

		decoder.On("Decode", "cookie-token").Return(claims, nil)
		guard.On("Check", mock.Anything).Return(nil)
		identities.On("Resolve", mock.Anything, claims).Return(nil, jwtcookie.ErrIdentityStore)

		auth := newAuthenticator(decoder, identities, cfg, guard)
		ctx := newAuthContext("")
		ctx.CookiesM[jwtcookie.DefaultJWTCookieName] = "cookie-token"

		outcome := auth.Authenticate(ctx)

		require.True(t, outcome.IsRejected(), "forgiving=%v", forgiving)
		assert.True(t, jwtcookie.IsIdentityError(outcome.Err))
	}
}

func TestAuthenticateMemoizesOutcome(t *testing.T) {
	decoder := new(MockDecoder)
	identities := new(MockIdentityStore)
	cfg := &jwtcookie.SimpleConfig{}

	claims := jwtcookie.Claims{"username": "jdoe"}
	user := &jwtcookie.User{Username: "jdoe"}

	decoder.On("Decode", "valid-token").Return(claims, nil).Once()
	identities.On("Resolve", mock.Anything, claims).Return(user, nil).Once()

	auth := newAuthenticator(decoder, identities, cfg, nil)
	ctx := newAuthContext("JWT valid-token")

	first := auth.Authenticate(ctx)
	second := auth.Authenticate(ctx)

	assert.Equal(t, first, second)
	decoder.AssertExpectations(t)
	identities.AssertExpectations(t)
}

func TestGetDecodedClaimsUsesCache(t *testing.T) {
	decoder := new(MockDecoder)
	identities := new(MockIdentityStore)
	cfg := &jwtcookie.SimpleConfig{}

	claims := jwtcookie.Claims{"username": "jdoe"}
	user := &jwtcookie.User{Username: "jdoe"}

	decoder.On("Decode", "cookie-token").Return(claims, nil).Once()
	identities.On("Resolve", mock.Anything, claims).Return(user, nil).Once()

	auth := newAuthenticator(decoder, identities, cfg, nil)
	ctx := newAuthContext("")
	ctx.CookiesM[jwtcookie.DefaultJWTCookieName] = "cookie-token"

	outcome := auth.Authenticate(ctx)
	require.True(t, outcome.IsAuthenticated())

	got := auth.GetDecodedClaims(ctx)
	assert.Equal(t, claims, got)
	decoder.AssertExpectations(t)
}

func TestGetDecodedClaimsWithoutCookie(t *testing.T) {
	decoder := new(MockDecoder)
	identities := new(MockIdentityStore)
	cfg := &jwtcookie.SimpleConfig{}

	auth := newAuthenticator(decoder, identities, cfg, nil)
	ctx := newAuthContext("")

	assert.Nil(t, auth.GetDecodedClaims(ctx))
	decoder.AssertNotCalled(t, "Decode", mock.Anything)
}

func TestGetDecodedClaimsLegacyDecode(t *testing.T) {
	decoder := new(MockDecoder)
	identities := new(MockIdentityStore)
	cfg := &jwtcookie.SimpleConfig{LegacyCookieDecode: true}

	claims := jwtcookie.Claims{"username": "jdoe"}

	decoder.On("Decode", "cookie-token").Return(claims, nil).Once()

	auth := newAuthenticator(decoder, identities, cfg, nil)
	ctx := newAuthContext("")
	ctx.CookiesM[jwtcookie.DefaultJWTCookieName] = "cookie-token"

	got := auth.GetDecodedClaims(ctx)
	assert.Equal(t, claims, got)

	// legacy mode decodes directly, skipping identity resolution
	identities.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestGetDecodedClaimsRejectedRequestReturnsNil(t *testing.T) {
	decoder := new(MockDecoder)
	identities := new(MockIdentityStore)
	cfg := &jwtcookie.SimpleConfig{}

	decoder.On("Decode", "bad-token").Return(nil, jwtcookie.ErrTokenDecode)

	auth := newAuthenticator(decoder, identities, cfg, nil)
	ctx := newAuthContext("")
	ctx.CookiesM[jwtcookie.DefaultJWTCookieName] = "bad-token"

	assert.Nil(t, auth.GetDecodedClaims(ctx))
}
