package jwtcookie_test

import (
	"context"

	jwtcookie "github.com/goliatone/go-jwt-cookie"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"
)

// MockDecoder implements jwtcookie.TokenDecoder
type MockDecoder struct {
	mock.Mock
}

func (m *MockDecoder) Decode(token string) (jwtcookie.Claims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(jwtcookie.Claims)
	return claims, args.Error(1)
}

// MockIdentityStore implements jwtcookie.IdentityStore
type MockIdentityStore struct {
	mock.Mock
}

func (m *MockIdentityStore) Resolve(ctx context.Context, claims jwtcookie.Claims) (*jwtcookie.User, error) {
	args := m.Called(ctx, claims)
	user, _ := args.Get(0).(*jwtcookie.User)
	return user, args.Error(1)
}

// MockGuard implements jwtcookie.CsrfGuard
type MockGuard struct {
	mock.Mock
}

func (m *MockGuard) Check(ctx router.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// capturingSink records MetricsSink calls for assertions.
type capturingSink struct {
	reconstitutions []string
	failures        []failureEvent
}

type failureEvent struct {
	transport string
	forgiven  bool
}

func (c *capturingSink) CookieReconstitution(value string) {
	c.reconstitutions = append(c.reconstitutions, value)
}

func (c *capturingSink) AuthFailure(transport string, forgiven bool, _ error) {
	c.failures = append(c.failures, failureEvent{transport: transport, forgiven: forgiven})
}

// newAuthContext builds a mock request context with the expectations every
// authentication path hits: a header lookup, context access, and request
// cache writes into Locals.
func newAuthContext(authHeader string) *router.MockContext {
	ctx := router.NewMockContext()
	ctx.On("GetString", router.HeaderAuthorization, "").Return(authHeader)
	ctx.On("Context").Return(context.Background()).Maybe()
	ctx.On("Locals", mock.Anything, mock.Anything).Return(nil).Maybe()
	return ctx
}
