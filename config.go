package jwtcookie

import "github.com/goliatone/go-jwt-cookie/middleware/cookieware"

// Default cookie names match the values the token issuer uses when splitting
// the JWT across the browser cookies. The cookieware middleware owns them.
const (
	DefaultJWTCookieName           = cookieware.DefaultJWTCookieName
	DefaultHeaderPayloadCookieName = cookieware.DefaultHeaderPayloadCookieName
	DefaultSignatureCookieName     = cookieware.DefaultSignatureCookieName

	// DefaultTokenDelimiter joins the header.payload fragment and the
	// signature fragment back into a compact JWS. Must match the issuer.
	DefaultTokenDelimiter = cookieware.DefaultDelimiter

	// DefaultAuthScheme is the Authorization header scheme prefix. Matched
	// case-sensitively; deployments may configure "Bearer" instead.
	DefaultAuthScheme = "JWT"

	DefaultContextKey = "user"
)

// SimpleConfig is a concrete Config with sane defaults for every getter.
// The zero value is usable.
type SimpleConfig struct {
	JWTCookieName           string
	HeaderPayloadCookieName string
	SignatureCookieName     string
	TokenDelimiter          string
	AuthScheme              string
	ContextKey              string

	// ForgivingCookies defers cookie-transport decode failures to the next
	// authenticator instead of rejecting the request. Header-transport
	// failures always reject regardless of this toggle.
	ForgivingCookies bool

	// ClaimAttributeMap maps claim names to user record attribute names,
	// e.g. {"email": "email", "administrator": "is_staff"}.
	ClaimAttributeMap map[string]string

	// MergeableAttributes lists the attribute names from ClaimAttributeMap
	// whose values are dictionaries merged additively rather than scalars
	// overwritten wholesale.
	MergeableAttributes []string

	// LegacyCookieDecode makes GetDecodedClaims bypass the full
	// authentication path and decode the reconstituted cookie directly.
	// Rollback toggle for the request-cache based processing.
	LegacyCookieDecode bool
}

var _ Config = (*SimpleConfig)(nil)

func (c *SimpleConfig) GetJWTCookieName() string {
	if c.JWTCookieName != "" {
		return c.JWTCookieName
	}
	return DefaultJWTCookieName
}

func (c *SimpleConfig) GetHeaderPayloadCookieName() string {
	if c.HeaderPayloadCookieName != "" {
		return c.HeaderPayloadCookieName
	}
	return DefaultHeaderPayloadCookieName
}

func (c *SimpleConfig) GetSignatureCookieName() string {
	if c.SignatureCookieName != "" {
		return c.SignatureCookieName
	}
	return DefaultSignatureCookieName
}

func (c *SimpleConfig) GetTokenDelimiter() string {
	if c.TokenDelimiter != "" {
		return c.TokenDelimiter
	}
	return DefaultTokenDelimiter
}

func (c *SimpleConfig) GetAuthScheme() string {
	if c.AuthScheme != "" {
		return c.AuthScheme
	}
	return DefaultAuthScheme
}

func (c *SimpleConfig) GetContextKey() string {
	if c.ContextKey != "" {
		return c.ContextKey
	}
	return DefaultContextKey
}

func (c *SimpleConfig) GetForgivingCookies() bool {
	return c.ForgivingCookies
}

func (c *SimpleConfig) GetClaimAttributeMap() map[string]string {
	return c.ClaimAttributeMap
}

func (c *SimpleConfig) GetMergeableAttributes() []string {
	return c.MergeableAttributes
}

func (c *SimpleConfig) GetLegacyCookieDecodeEnabled() bool {
	return c.LegacyCookieDecode
}
