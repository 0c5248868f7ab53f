package jwtcookie

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-jwt-cookie/middleware/csrf"
	"github.com/goliatone/go-router"
)

// CsrfGuard validates the request's CSRF state, returning the rejection
// reason as a value. Consulted only when the credential arrived by cookie;
// header-presented tokens cannot be replayed cross-site via ambient cookies.
type CsrfGuard interface {
	Check(ctx router.Context) error
}

// RequestAuthenticator decides, per request, whether the caller is
// authenticated. It runs locate, decode, CSRF check, and identity resolution
// in that order; CSRF never runs before a successful decode and identity
// resolution never runs before CSRF passes or is skipped.
type RequestAuthenticator struct {
	cfg        Config
	decoder    TokenDecoder
	identities IdentityStore
	locator    *CredentialLocator
	guard      CsrfGuard
	sink       MetricsSink
	logger     Logger
}

// NewRequestAuthenticator returns an authenticator with a default CSRF guard.
func NewRequestAuthenticator(decoder TokenDecoder, identities IdentityStore, cfg Config) *RequestAuthenticator {
	return &RequestAuthenticator{
		cfg:        cfg,
		decoder:    decoder,
		identities: identities,
		locator:    NewCredentialLocator(cfg),
		guard:      csrf.NewGuard(),
		sink:       noopMetricsSink{},
		logger:     defLogger{},
	}
}

func (a *RequestAuthenticator) WithLogger(logger Logger) *RequestAuthenticator {
	a.logger = logger
	return a
}

// WithMetricsSink configures a MetricsSink for emitting auth telemetry.
func (a *RequestAuthenticator) WithMetricsSink(sink MetricsSink) *RequestAuthenticator {
	a.sink = normalizeMetricsSink(sink)
	return a
}

// WithCsrfGuard replaces the default CSRF guard. A nil guard disables CSRF
// checks entirely; only do that when another layer enforces them.
func (a *RequestAuthenticator) WithCsrfGuard(guard CsrfGuard) *RequestAuthenticator {
	a.guard = guard
	return a
}

// Authenticate runs the authentication decision for the request. The verdict
// is memoized in the request cache, so repeated calls within one request are
// free and consistent.
func (a *RequestAuthenticator) Authenticate(ctx router.Context) AuthOutcome {
	cache := requestCacheFrom(ctx)
	if cache.outcome != nil {
		return *cache.outcome
	}

	outcome := a.authenticate(ctx, cache)
	cache.outcome = &outcome
	return outcome
}

func (a *RequestAuthenticator) authenticate(ctx router.Context, cache *requestCache) AuthOutcome {
	// Mode is configuration input, fixed for the whole request.
	forgiving := a.cfg.GetForgivingCookies()

	token, transport := a.locator.Locate(ctx)
	cache.located = true
	cache.token = token
	cache.transport = transport

	if transport == TransportNone {
		return Deferred("no credential")
	}

	claims, err := a.decoder.Decode(token)
	if err != nil {
		return a.handleDecodeFailure(err, transport, forgiving)
	}
	cache.claims = claims

	if transport == TransportCookie && a.guard != nil {
		if gerr := a.guard.Check(ctx); gerr != nil {
			rich := errors.Wrap(gerr, ErrCsrfFailed.Category, ErrCsrfFailed.Message).
				WithTextCode(ErrCsrfFailed.TextCode).
				WithCode(errors.CodeForbidden)
			a.logger.Warn("CSRF validation failed for JWT cookie", "error", gerr)
			return Rejected(rich, transport)
		}
	}

	user, err := a.identities.Resolve(ctx.Context(), claims)
	if err != nil {
		// The credential was valid; resolving it to a local identity was
		// not. Terminal in both modes, distinct from token errors.
		return Rejected(err, transport)
	}
	cache.user = user

	return Authenticated(user, token, claims, transport)
}

func (a *RequestAuthenticator) handleDecodeFailure(err error, transport TokenTransport, forgiving bool) AuthOutcome {
	if transport == TransportAuthorizationHeader {
		// An explicit malformed bearer token must see a hard failure, never
		// silent fallback.
		a.logger.Debug("invalid JWT auth header", "error", err)
		a.sink.AuthFailure(string(transport), false, err)
		return Rejected(err, transport)
	}

	if forgiving {
		// Cookies go stale legitimately; let a later authenticator try.
		a.logger.Debug("invalid JWT cookie, deferring to next authenticator", "error", err)
		a.sink.AuthFailure(string(transport), true, err)
		return Deferred("cookie decode failed")
	}

	a.logger.Debug("invalid JWT cookie", "error", err)
	a.sink.AuthFailure(string(transport), false, err)
	return Rejected(err, transport)
}

// GetDecodedClaims returns the decoded claims for the request if any can be
// found, consulting the request cache first and falling back to the
// reconstituted JWT cookie. Returns nil rather than failing; callers that
// need a hard verdict use Authenticate.
func (a *RequestAuthenticator) GetDecodedClaims(ctx router.Context) Claims {
	cache := requestCacheFrom(ctx)
	if cache.claims != nil {
		return cache.claims
	}

	cookie := reconstitutedCookie(ctx, a.cfg)
	if cookie == "" {
		return nil
	}

	if a.cfg.GetLegacyCookieDecodeEnabled() {
		claims, err := a.decoder.Decode(cookie)
		if err != nil {
			a.logger.Info("GetDecodedClaims: unable to decode JWT cookie", "error", err)
			return nil
		}
		return claims
	}

	if outcome := a.Authenticate(ctx); outcome.IsAuthenticated() {
		return outcome.Claims
	}

	a.logger.Info("GetDecodedClaims: failed to decode JWT cookie")
	return nil
}
