// Package csrf implements double submit cookie CSRF protection.
//
// The Guard type validates a single request and is what cookie-authenticated
// flows embed: the browser sends the CSRF token both as a cookie and as a
// header (or form field), and the two must match. New wraps the same check as
// router middleware for routes that want standalone protection.
package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-router"
)

var (
	ErrTokenMismatch    = errors.New("CSRF token mismatch")
	ErrTokenMissing     = errors.New("CSRF token missing")
	ErrCookieMissing    = errors.New("CSRF cookie not set")
	ErrTokenExpired     = errors.New("CSRF token expired")
	ErrSecureKeyMissing = errors.New("CSRF secure key required for signed tokens")
)

// DefaultTokenLength is the default length for CSRF tokens
const DefaultTokenLength = 32

// DefaultCookieName is the default cookie carrying the expected token
const DefaultCookieName = "csrftoken"

// DefaultFormFieldName is the default name for the CSRF token form field
const DefaultFormFieldName = "_token"

// DefaultHeaderName is the default header name for CSRF tokens
const DefaultHeaderName = "X-CSRF-Token"

// Config defines the configuration for CSRF validation
type Config struct {
	// Skip defines a function to skip validation
	Skip func(router.Context) bool

	// TokenLength defines the length of generated tokens
	TokenLength int

	// CookieName defines the cookie holding the expected token
	CookieName string

	// FormFieldName defines the name of the form field containing the token
	FormFieldName string

	// HeaderName defines the header name for the token
	HeaderName string

	// TokenLookup defines where to look for the received token
	// Format: "header:X-CSRF-Token,form:_token"
	TokenLookup string

	// SafeMethods defines HTTP methods that don't require CSRF protection
	SafeMethods []string

	// SecureKey enables signed tokens: when set, expected tokens carry an
	// HMAC and a timestamp, and validation checks both. When nil, tokens
	// are opaque random values compared in constant time.
	SecureKey []byte

	// Expiration bounds the age of signed tokens. Zero means no bound.
	// Only used with SecureKey.
	Expiration time.Duration

	// ErrorHandler defines the error handler used by the middleware form
	ErrorHandler router.ErrorHandler

	// SuccessHandler defines the success handler used by the middleware form
	SuccessHandler router.HandlerFunc
}

// TokenExtractor defines a function to extract the received token from a request
type TokenExtractor func(router.Context) (string, error)

// Guard validates the CSRF posture of a single request.
type Guard struct {
	cfg Config
}

// NewGuard creates a request-level CSRF validator.
func NewGuard(config ...Config) *Guard {
	return &Guard{cfg: configDefault(config...)}
}

// Check validates the request. Safe methods always pass. For unsafe methods
// the expected token must be present in the CSRF cookie and the received
// token, from header or form field, must match it.
func (g *Guard) Check(ctx router.Context) error {
	if g.cfg.Skip != nil && g.cfg.Skip(ctx) {
		return nil
	}

	method := strings.ToUpper(ctx.Method())
	if slices.Contains(g.cfg.SafeMethods, method) {
		return nil
	}

	expected := ctx.Cookies(g.cfg.CookieName)
	if expected == "" {
		return ErrCookieMissing
	}

	received, err := extractToken(ctx, g.cfg)
	if err != nil {
		return err
	}

	if received == "" {
		return ErrTokenMissing
	}

	if subtle.ConstantTimeCompare([]byte(received), []byte(expected)) != 1 {
		return ErrTokenMismatch
	}

	if len(g.cfg.SecureKey) > 0 {
		return validateSignedToken(expected, g.cfg)
	}

	return nil
}

// IssueToken generates a new expected token suitable for the CSRF cookie.
func (g *Guard) IssueToken() (string, error) {
	if len(g.cfg.SecureKey) > 0 {
		return generateSignedToken(g.cfg)
	}
	return generateToken(g.cfg.TokenLength)
}

// CookieName reports the cookie the guard reads the expected token from.
func (g *Guard) CookieName() string {
	return g.cfg.CookieName
}

// New creates CSRF middleware built on Guard. Requests without an expected
// token get one issued as a cookie so subsequent unsafe requests can echo it.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := configDefault(config...)
		guard := &Guard{cfg: cfg}

		return func(ctx router.Context) error {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return ctx.Next()
			}

			if ctx.Cookies(cfg.CookieName) == "" {
				token, err := guard.IssueToken()
				if err != nil {
					return cfg.ErrorHandler(ctx, err)
				}
				// the browser script has to read this one, so no HTTPOnly
				ctx.Cookie(&router.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					SameSite: "Lax",
				})
			}

			if err := guard.Check(ctx); err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

// generateToken generates a cryptographically secure random token
func generateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func generateSignedToken(cfg Config) (string, error) {
	if len(cfg.SecureKey) == 0 {
		return "", ErrSecureKeyMissing
	}

	nonce := make([]byte, cfg.TokenLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	timestamp := time.Now().UTC().Unix()
	payload := fmt.Sprintf("%d:%s", timestamp, hex.EncodeToString(nonce))

	mac := hmac.New(sha256.New, cfg.SecureKey)
	mac.Write([]byte(payload))
	signature := mac.Sum(nil)

	token := fmt.Sprintf("%s:%s", payload, hex.EncodeToString(signature))
	return base64.RawURLEncoding.EncodeToString([]byte(token)), nil
}

func validateSignedToken(token string, cfg Config) error {
	if len(cfg.SecureKey) == 0 {
		return ErrSecureKeyMissing
	}

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return ErrTokenMismatch
	}

	parts := strings.Split(string(decoded), ":")
	if len(parts) != 3 {
		return ErrTokenMismatch
	}

	timestampStr, nonceHex, signatureHex := parts[0], parts[1], parts[2]

	timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return ErrTokenMismatch
	}

	if _, err := hex.DecodeString(nonceHex); err != nil {
		return ErrTokenMismatch
	}

	signature, err := hex.DecodeString(signatureHex)
	if err != nil {
		return ErrTokenMismatch
	}

	payload := strings.Join(parts[:2], ":")
	mac := hmac.New(sha256.New, cfg.SecureKey)
	mac.Write([]byte(payload))
	expectedSignature := mac.Sum(nil)

	if !hmac.Equal(signature, expectedSignature) {
		return ErrTokenMismatch
	}

	if cfg.Expiration > 0 {
		expiresAt := time.Unix(timestamp, 0).Add(cfg.Expiration)
		if time.Now().UTC().After(expiresAt) {
			return ErrTokenExpired
		}
	}

	return nil
}

func extractToken(ctx router.Context, cfg Config) (string, error) {
	extractors := getExtractors(cfg.TokenLookup, cfg.FormFieldName, cfg.HeaderName)

	for _, extractor := range extractors {
		token, err := extractor(ctx)
		if token != "" && err == nil {
			return token, nil
		}
	}

	return "", nil
}

// getExtractors returns token extractors based on configuration
func getExtractors(tokenLookup, formField, header string) []TokenExtractor {
	var extractors []TokenExtractor

	if tokenLookup == "" {
		// Default extractors
		extractors = append(extractors,
			extractorFromHeader(header),
			extractorFromForm(formField),
		)
		return extractors
	}

	// Parse tokenLookup: "header:X-CSRF-Token,form:_token"
	parts := strings.Split(tokenLookup, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "form:") {
			field := strings.TrimPrefix(part, "form:")
			extractors = append(extractors, extractorFromForm(field))
		} else if strings.HasPrefix(part, "header:") {
			headerName := strings.TrimPrefix(part, "header:")
			extractors = append(extractors, extractorFromHeader(headerName))
		}
	}

	return extractors
}

// extractorFromForm extracts token from form data
func extractorFromForm(fieldName string) TokenExtractor {
	return func(ctx router.Context) (string, error) {
		return ctx.FormValue(fieldName), nil
	}
}

// extractorFromHeader extracts token from request header
func extractorFromHeader(headerName string) TokenExtractor {
	return func(ctx router.Context) (string, error) {
		return ctx.GetString(headerName, ""), nil
	}
}

// configDefault returns a default config
func configDefault(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenLength == 0 {
		cfg.TokenLength = DefaultTokenLength
	}

	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}

	if cfg.FormFieldName == "" {
		cfg.FormFieldName = DefaultFormFieldName
	}

	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultHeaderName
	}

	if cfg.SafeMethods == nil {
		cfg.SafeMethods = []string{"GET", "HEAD", "OPTIONS", "TRACE"}
	}

	if len(cfg.SecureKey) > 0 && len(cfg.SecureKey) < 32 {
		panic(fmt.Errorf("csrf: secure key must be at least 32 bytes, got %d", len(cfg.SecureKey)))
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler(cfg)
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	return cfg
}

func defaultErrorHandler(cfg Config) router.ErrorHandler {
	return func(ctx router.Context, err error) error {
		switch err {
		case ErrTokenMissing, ErrCookieMissing:
			return ctx.Status(router.StatusBadRequest).SendString("CSRF token missing")
		case ErrTokenMismatch:
			return ctx.Status(router.StatusForbidden).SendString("CSRF token mismatch")
		case ErrTokenExpired:
			return ctx.Status(router.StatusForbidden).SendString("CSRF token expired")
		case ErrSecureKeyMissing:
			return ctx.Status(router.StatusInternalServerError).SendString("CSRF configuration error")
		default:
			return ctx.Status(router.StatusInternalServerError).SendString("CSRF validation error")
		}
	}
}
