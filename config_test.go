package jwtcookie_test

import (
	"testing"

	jwtcookie "github.com/goliatone/go-jwt-cookie"
	"github.com/goliatone/go-jwt-cookie/middleware/cookieware"
	"github.com/stretchr/testify/assert"
)

func TestSimpleConfigDefaults(t *testing.T) {
	cfg := &jwtcookie.SimpleConfig{}

	assert.Equal(t, "edx-jwt-cookie", cfg.GetJWTCookieName())
	assert.Equal(t, "edx-jwt-cookie-header-payload", cfg.GetHeaderPayloadCookieName())
	assert.Equal(t, "edx-jwt-cookie-signature", cfg.GetSignatureCookieName())
	assert.Equal(t, ".", cfg.GetTokenDelimiter())
	assert.Equal(t, "JWT", cfg.GetAuthScheme())
	assert.Equal(t, "user", cfg.GetContextKey())
	assert.False(t, cfg.GetForgivingCookies())
	assert.False(t, cfg.GetLegacyCookieDecodeEnabled())
	assert.Empty(t, cfg.GetClaimAttributeMap())
	assert.Empty(t, cfg.GetMergeableAttributes())
}

func TestSimpleConfigOverrides(t *testing.T) {
	cfg := &jwtcookie.SimpleConfig{
		JWTCookieName:    "app-jwt",
		AuthScheme:       "Bearer",
		ForgivingCookies: true,
		ClaimAttributeMap: map[string]string{
			"email": "email",
		},
		MergeableAttributes: []string{"extra"},
	}

	assert.Equal(t, "app-jwt", cfg.GetJWTCookieName())
	assert.Equal(t, "Bearer", cfg.GetAuthScheme())
	assert.True(t, cfg.GetForgivingCookies())
	assert.Equal(t, map[string]string{"email": "email"}, cfg.GetClaimAttributeMap())
	assert.Equal(t, []string{"extra"}, cfg.GetMergeableAttributes())
}

// the cookie names configured once on Config flow into the reconstitution
// middleware through cookieware.FromConfig
func TestConfigBridgesToCookieware(t *testing.T) {
	cfg := &jwtcookie.SimpleConfig{
		JWTCookieName:           "app-jwt",
		HeaderPayloadCookieName: "app-jwt-hp",
		SignatureCookieName:     "app-jwt-sig",
		TokenDelimiter:          "|",
	}

	mw := cookieware.FromConfig(cfg)
	assert.Equal(t, cfg.GetJWTCookieName(), mw.JWTCookieName)
	assert.Equal(t, cfg.GetHeaderPayloadCookieName(), mw.HeaderPayloadCookieName)
	assert.Equal(t, cfg.GetSignatureCookieName(), mw.SignatureCookieName)
	assert.Equal(t, cfg.GetTokenDelimiter(), mw.Delimiter)
}
