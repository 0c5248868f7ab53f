package jwtcookie

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// TokenDecoder verifies an opaque bearer string and returns its claims.
// Implementations wrap whatever verification backend the deployment uses;
// the decision engine never inspects token internals itself.
type TokenDecoder interface {
	Decode(token string) (Claims, error)
}

// TokenDecoderFunc adapts a function to the TokenDecoder interface.
type TokenDecoderFunc func(token string) (Claims, error)

// Decode implements TokenDecoder.
func (f TokenDecoderFunc) Decode(token string) (Claims, error) {
	return f(token)
}

// IdentityStore resolves decoded claims into a local user record.
type IdentityStore interface {
	Resolve(ctx context.Context, claims Claims) (*User, error)
}

// Config holds the options consumed by the authentication layer
type Config interface {
	GetJWTCookieName() string
	GetHeaderPayloadCookieName() string
	GetSignatureCookieName() string
	GetTokenDelimiter() string
	GetAuthScheme() string
	GetContextKey() string
	GetForgivingCookies() bool
	GetClaimAttributeMap() map[string]string
	GetMergeableAttributes() []string
	GetLegacyCookieDecodeEnabled() bool
}

// MetricsSink consumes per-request telemetry. Sinks run best-effort and must
// never fail the request.
type MetricsSink interface {
	// CookieReconstitution records the outcome of merging the split JWT
	// cookies, once per request.
	CookieReconstitution(value string)
	// AuthFailure records a failed token decode, tagged with the transport
	// that supplied the credential and whether the failure was forgiven.
	AuthFailure(transport string, forgiven bool, err error)
}

type noopMetricsSink struct{}

func (noopMetricsSink) CookieReconstitution(string)     {}
func (noopMetricsSink) AuthFailure(string, bool, error) {}

func normalizeMetricsSink(s MetricsSink) MetricsSink {
	if s == nil {
		return noopMetricsSink{}
	}
	return s
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] JWTAUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] JWTAUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] JWTAUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] JWTAUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
