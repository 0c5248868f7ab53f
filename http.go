package jwtcookie

import (
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// HTTPAuthenticator adapts the authentication decision to router middleware.
// Deferred outcomes fall through to the next handler so a downstream
// authenticator (or anonymous access) gets its chance; only rejections
// surface to the client.
type HTTPAuthenticator struct {
	auth         *RequestAuthenticator
	cfg          Config
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

func NewHTTPAuthenticator(auth *RequestAuthenticator, cfg Config) *HTTPAuthenticator {
	h := &HTTPAuthenticator{
		auth:   auth,
		cfg:    cfg,
		Logger: defLogger{},
	}

	h.ErrorHandler = h.defaultErrHandler

	return h
}

// Middleware authenticates the request when possible and attaches the
// resolved user to the request context. Requests without a usable credential
// continue unauthenticated.
func (h *HTTPAuthenticator) Middleware() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			outcome := h.auth.Authenticate(ctx)

			switch {
			case outcome.IsAuthenticated():
				ctx.Locals(h.cfg.GetContextKey(), outcome.User)

				stdCtx := WithUserContext(ctx.Context(), outcome.User)
				stdCtx = WithClaimsContext(stdCtx, outcome.Claims)
				ctx.SetContext(stdCtx)

				return next(ctx)
			case outcome.IsDeferred():
				h.Logger.Debug("jwt auth deferred", "reason", outcome.Reason)
				return next(ctx)
			default:
				return h.ErrorHandler(ctx, outcome.Err)
			}
		}
	}
}

// Protected behaves like Middleware but also rejects deferred outcomes, for
// routes that accept no authenticator besides this one.
func (h *HTTPAuthenticator) Protected() router.MiddlewareFunc {
	middleware := h.Middleware()
	return func(next router.HandlerFunc) router.HandlerFunc {
		guarded := middleware(next)
		return func(ctx router.Context) error {
			if outcome := h.auth.Authenticate(ctx); outcome.IsDeferred() {
				return h.ErrorHandler(ctx, errors.New("authentication required", errors.CategoryAuth).
					WithCode(errors.CodeUnauthorized).
					WithMetadata(map[string]any{
						"reason": outcome.Reason,
					}))
			}
			return guarded(ctx)
		}
	}
}

func (h *HTTPAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid authentication credential").
			WithCode(errors.CodeUnauthorized)
	}

	h.Logger.Info(
		"Authentication error handler",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	status := richErr.Code
	if status == 0 {
		status = http.StatusUnauthorized
	}

	return c.JSON(status, map[string]string{
		"error": richErr.Message,
	})
}
