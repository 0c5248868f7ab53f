package jwtcookie

import "github.com/goliatone/go-errors"

const (
	TextCodeTokenDecode     = "jwt_token_decode_failed"
	TextCodeTokenExpired    = "jwt_token_expired"
	TextCodeCsrfFailed      = "jwt_csrf_failed"
	TextCodeMissingUsername = "jwt_missing_username_claim"
	TextCodeIdentityStore   = "jwt_identity_store_failed"
)

// ErrTokenDecode is returned when a presented token is malformed or fails
// signature verification.
var ErrTokenDecode = errors.New("unable to decode or verify JWT", errors.CategoryAuth).
	WithTextCode(TextCodeTokenDecode).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when a presented token is past its expiration.
var ErrTokenExpired = errors.New("JWT is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrCsrfFailed is returned when a cookie-presented token fails CSRF
// validation. Never forgiven, in any mode.
var ErrCsrfFailed = errors.New("CSRF validation failed", errors.CategoryAuth).
	WithTextCode(TextCodeCsrfFailed).
	WithCode(errors.CodeForbidden)

// ErrMissingUsernameClaim is returned when a decoded token carries neither a
// preferred_username nor a username claim.
var ErrMissingUsernameClaim = errors.New("JWT must include a preferred_username or username claim", errors.CategoryAuth).
	WithTextCode(TextCodeMissingUsername).
	WithCode(errors.CodeUnauthorized)

// ErrIdentityStore is returned when the backing user store fails during
// get-or-create or update. The credential was valid; resolving it was not.
var ErrIdentityStore = errors.New("user retrieval failed", errors.CategoryInternal).
	WithTextCode(TextCodeIdentityStore).
	WithCode(errors.CodeInternal)

func hasTextCode(err error, codes ...string) bool {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return false
	}
	for _, code := range codes {
		if rich.TextCode == code {
			return true
		}
	}
	return false
}

// IsTokenDecodeError reports whether err is a token decode/verification
// failure, including expiration.
func IsTokenDecodeError(err error) bool {
	return hasTextCode(err, TextCodeTokenDecode, TextCodeTokenExpired)
}

// IsTokenExpiredError reports whether err is specifically an expired token.
func IsTokenExpiredError(err error) bool {
	return hasTextCode(err, TextCodeTokenExpired)
}

// IsCsrfError reports whether err is a CSRF rejection.
func IsCsrfError(err error) bool {
	return hasTextCode(err, TextCodeCsrfFailed)
}

// IsIdentityError reports whether err came from identity resolution, either a
// missing username claim or a store failure.
func IsIdentityError(err error) bool {
	return hasTextCode(err, TextCodeMissingUsername, TextCodeIdentityStore)
}
