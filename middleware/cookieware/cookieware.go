// Package cookieware reconstitutes JWT auth cookies for use by the request
// authenticator.
//
// The JWT is split across two browser cookies (header.payload and signature)
// for security reasons. This middleware merges them back into one full token
// in the request context and emits the request_jwt_cookie metric describing
// the outcome. It must run before any middleware that authenticates the
// request.
package cookieware

import (
	"fmt"

	"github.com/goliatone/go-router"
)

// Default cookie names and delimiter. These must match the values the token
// issuer used when splitting the token.
const (
	DefaultJWTCookieName           = "edx-jwt-cookie"
	DefaultHeaderPayloadCookieName = "edx-jwt-cookie-header-payload"
	DefaultSignatureCookieName     = "edx-jwt-cookie-signature"
	DefaultDelimiter               = "."

	// DefaultSignalHeader is the request header an upstream collaborator
	// sets when cookie-based auth was requested for the endpoint.
	DefaultSignalHeader = "Use-Jwt-Cookie"
)

// Metric values reported once per request. Purely observational; the values
// never affect control flow.
const (
	MetricSuccess      = "success"
	MetricNotRequested = "not-requested"
	MetricMissingBoth  = "missing-both"
)

// MetricMissingCookie tags the reconstitution outcome when exactly one of the
// two fragments is present, naming the missing cookie.
func MetricMissingCookie(cookieName string) string {
	return "missing-" + cookieName
}

// MetricsSink receives the reconstitution outcome once per request.
// This mirrors the MetricsSink interface from the jwtcookie package so the
// two packages stay decoupled.
type MetricsSink interface {
	CookieReconstitution(value string)
}

// Logger mirrors the jwtcookie Logger interface.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type Config struct {
	// JWTCookieName is the request-context key the reconstituted token is
	// stored under, matching the full-cookie name.
	JWTCookieName           string
	HeaderPayloadCookieName string
	SignatureCookieName     string
	Delimiter               string

	// SignalHeader gates whether cookie auth was requested for this
	// endpoint. Reconstitution is attempted regardless (so passive
	// identity helpers can still read the token), but the metric reports
	// not-requested when the signal is absent.
	SignalHeader string

	Sink   MetricsSink
	Logger Logger
}

// CookieConfig is the subset of the host configuration this middleware
// consumes. It mirrors the jwtcookie Config getters so a host configures the
// cookie names once and bridges them here with FromConfig.
type CookieConfig interface {
	GetJWTCookieName() string
	GetHeaderPayloadCookieName() string
	GetSignatureCookieName() string
	GetTokenDelimiter() string
}

// FromConfig builds a middleware Config from the host configuration.
// Overrides apply on top for the fields CookieConfig does not carry
// (SignalHeader, Sink, Logger).
func FromConfig(cfg CookieConfig, overrides ...Config) Config {
	out := Config{}
	if len(overrides) > 0 {
		out = overrides[0]
	}

	out.JWTCookieName = cfg.GetJWTCookieName()
	out.HeaderPayloadCookieName = cfg.GetHeaderPayloadCookieName()
	out.SignatureCookieName = cfg.GetSignatureCookieName()
	out.Delimiter = cfg.GetTokenDelimiter()

	return out
}

type noopSink struct{}

func (noopSink) CookieReconstitution(string) {}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// New returns middleware that reconstitutes the split JWT cookies into the
// request context and emits the request_jwt_cookie metric. It never fails
// the request.
func New(config ...Config) router.MiddlewareFunc {
	cfg := configDefault(config...)

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			requested := ctx.GetString(cfg.SignalHeader, "") != ""
			headerPayload := ctx.Cookies(cfg.HeaderPayloadCookieName)
			signature := ctx.Cookies(cfg.SignatureCookieName)

			token, metric := Reconstitute(requested, headerPayload, signature, cfg)
			if token != "" {
				ctx.Locals(cfg.JWTCookieName, token)
			}

			cfg.Sink.CookieReconstitution(metric)

			return next(ctx)
		}
	}
}

// Reconstitute merges the two cookie fragments into one bearer token and
// computes the outcome metric. A partially present token is never returned:
// both fragments must be non-empty.
func Reconstitute(requested bool, headerPayload, signature string, config ...Config) (string, string) {
	cfg := configDefault(config...)

	token := ""
	if headerPayload != "" && signature != "" {
		token = fmt.Sprintf("%s%s%s", headerPayload, cfg.Delimiter, signature)
	}

	if !requested {
		return token, MetricNotRequested
	}

	switch {
	case token != "":
		return token, MetricSuccess
	case headerPayload == "" && signature == "":
		return "", MetricMissingBoth
	case headerPayload == "":
		cfg.Logger.Warn("%s cookie is missing. JWT auth cookies will not be reconstituted.", cfg.HeaderPayloadCookieName)
		return "", MetricMissingCookie(cfg.HeaderPayloadCookieName)
	default:
		cfg.Logger.Warn("%s cookie is missing. JWT auth cookies will not be reconstituted.", cfg.SignatureCookieName)
		return "", MetricMissingCookie(cfg.SignatureCookieName)
	}
}

func configDefault(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.JWTCookieName == "" {
		cfg.JWTCookieName = DefaultJWTCookieName
	}

	if cfg.HeaderPayloadCookieName == "" {
		cfg.HeaderPayloadCookieName = DefaultHeaderPayloadCookieName
	}

	if cfg.SignatureCookieName == "" {
		cfg.SignatureCookieName = DefaultSignatureCookieName
	}

	if cfg.Delimiter == "" {
		cfg.Delimiter = DefaultDelimiter
	}

	if cfg.SignalHeader == "" {
		cfg.SignalHeader = DefaultSignalHeader
	}

	if cfg.Sink == nil {
		cfg.Sink = noopSink{}
	}

	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}

	return cfg
}
