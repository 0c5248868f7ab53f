package jwtcookie

import (
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-router"
)

// CredentialLocator extracts a bearer token from a request, preferring the
// Authorization header over the reconstituted JWT cookie, and reports which
// transport supplied it.
type CredentialLocator struct {
	cfg Config
}

func NewCredentialLocator(cfg Config) *CredentialLocator {
	return &CredentialLocator{cfg: cfg}
}

// Locate returns the raw token and its transport. An empty token pairs with
// TransportNone; a request with no usable credential is not an error.
func (l *CredentialLocator) Locate(ctx router.Context) (string, TokenTransport) {
	header := ctx.GetString(router.HeaderAuthorization, "")
	if token := tokenFromAuthHeader(header, l.cfg.GetAuthScheme()); token != "" {
		return token, TransportAuthorizationHeader
	}

	if token := reconstitutedCookie(ctx, l.cfg); token != "" {
		return token, TransportCookie
	}

	return "", TransportNone
}

// tokenFromAuthHeader matches the configured scheme prefix case-sensitively.
// Undecodable header bytes are treated as "not found" so authentication can
// proceed to the cookie candidate.
func tokenFromAuthHeader(header, scheme string) string {
	if header == "" || scheme == "" {
		return ""
	}

	if !utf8.ValidString(header) {
		return ""
	}

	prefix := scheme + " "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimSpace(header[len(prefix):])
}

// reconstitutedCookie returns the full JWT cookie for the request: the value
// the reconstitution middleware stored in the request context, or a directly
// set full cookie for deployments that never split it.
func reconstitutedCookie(ctx router.Context, cfg Config) string {
	name := cfg.GetJWTCookieName()
	if v, ok := ctx.Locals(name).(string); ok && v != "" {
		return v
	}
	return ctx.Cookies(name)
}
