package jwtcookie

// TokenTransport identifies where the bearer credential came from. CSRF
// enforcement downstream depends on it: header-presented tokens are immune,
// cookie-presented tokens are not.
type TokenTransport string

const (
	TransportAuthorizationHeader TokenTransport = "auth-header"
	TransportCookie              TokenTransport = "cookie"
	TransportNone                TokenTransport = "none"
)

// OutcomeStatus enumerates the terminal states of an authentication decision.
type OutcomeStatus string

const (
	// OutcomeAuthenticated means the credential decoded, passed CSRF where
	// applicable, and resolved to a user record.
	OutcomeAuthenticated OutcomeStatus = "authenticated"
	// OutcomeDeferred means this layer has no opinion; the next authenticator
	// in the chain should get a chance.
	OutcomeDeferred OutcomeStatus = "deferred"
	// OutcomeRejected is terminal for the request.
	OutcomeRejected OutcomeStatus = "rejected"
)

// AuthOutcome is the verdict for one request. Exactly one of the variants
// applies; helpers below construct them so callers never build mixed states.
type AuthOutcome struct {
	Status    OutcomeStatus
	User      *User
	Token     string
	Claims    Claims
	Transport TokenTransport
	Reason    string
	Err       error
}

// Authenticated builds a successful outcome.
func Authenticated(user *User, token string, claims Claims, transport TokenTransport) AuthOutcome {
	return AuthOutcome{
		Status:    OutcomeAuthenticated,
		User:      user,
		Token:     token,
		Claims:    claims,
		Transport: transport,
	}
}

// Deferred builds a no-opinion outcome with a diagnostic reason.
func Deferred(reason string) AuthOutcome {
	return AuthOutcome{
		Status: OutcomeDeferred,
		Reason: reason,
	}
}

// Rejected builds a terminal failure outcome.
func Rejected(err error, transport TokenTransport) AuthOutcome {
	return AuthOutcome{
		Status:    OutcomeRejected,
		Err:       err,
		Transport: transport,
	}
}

func (o AuthOutcome) IsAuthenticated() bool {
	return o.Status == OutcomeAuthenticated
}

func (o AuthOutcome) IsDeferred() bool {
	return o.Status == OutcomeDeferred
}

func (o AuthOutcome) IsRejected() bool {
	return o.Status == OutcomeRejected
}
