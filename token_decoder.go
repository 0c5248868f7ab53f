package jwtcookie

import (
	"fmt"
	"log"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// JWTDecoder is the default TokenDecoder, verifying compact JWS tokens with
// either a shared HMAC key or a JWK Set.
type JWTDecoder struct {
	keyFunc  jwt.Keyfunc
	issuer   string
	audience []string
	leeway   time.Duration
	logger   Logger
}

var _ TokenDecoder = (*JWTDecoder)(nil)

// NewJWTDecoder creates a decoder verifying HMAC-signed tokens with the given
// key. Issuer and audience checks apply when non-empty.
func NewJWTDecoder(signingKey []byte, issuer string, audience []string, logger Logger) *JWTDecoder {
	if logger == nil {
		logger = defLogger{}
	}

	d := &JWTDecoder{
		issuer:   issuer,
		audience: audience,
		logger:   logger,
	}

	d.keyFunc = func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			d.logger.Error("token decoder encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return signingKey, nil
	}

	return d
}

// NewJWKSDecoder creates a decoder that fetches verification keys from one or
// more JWK Set URLs, for deployments where tokens are issued with asymmetric
// keys.
func NewJWKSDecoder(jwkSetURLs []string, issuer string, audience []string, logger Logger) (*JWTDecoder, error) {
	if logger == nil {
		logger = defLogger{}
	}

	kf, err := multiKeyfunc(jwkSetURLs)
	if err != nil {
		return nil, err
	}

	return &JWTDecoder{
		keyFunc:  kf,
		issuer:   issuer,
		audience: audience,
		logger:   logger,
	}, nil
}

// WithLeeway allows clock skew when validating time-based claims.
func (d *JWTDecoder) WithLeeway(leeway time.Duration) *JWTDecoder {
	d.leeway = leeway
	return d
}

// Decode parses and verifies the token string, returning its payload claims.
func (d *JWTDecoder) Decode(tokenString string) (Claims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 3)
	if d.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(d.issuer))
	}
	if len(d.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(d.audience...))
	}
	if d.leeway > 0 {
		parserOptions = append(parserOptions, jwt.WithLeeway(d.leeway))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, d.keyFunc, parserOptions...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.Wrap(err, ErrTokenExpired.Category, ErrTokenExpired.Message).
				WithTextCode(ErrTokenExpired.TextCode).
				WithCode(errors.CodeUnauthorized)
		}
		return nil, errors.Wrap(err, ErrTokenDecode.Category, ErrTokenDecode.Message).
			WithTextCode(ErrTokenDecode.TextCode).
			WithCode(errors.CodeUnauthorized)
	}

	if !token.Valid {
		d.logger.Error("token decoder could not validate claims")
		return nil, ErrTokenDecode
	}

	return Claims(claims), nil
}

func multiKeyfunc(jwkSetURLs []string) (jwt.Keyfunc, error) {
	opts := keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to do a background refresh of JWK set: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}

	m := make(map[string]keyfunc.Options, len(jwkSetURLs))
	for _, url := range jwkSetURLs {
		m[url] = opts
	}

	multi, err := keyfunc.GetMultiple(m, keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get JWK Set URLs: %w", err)
	}

	return multi.Keyfunc, nil
}
