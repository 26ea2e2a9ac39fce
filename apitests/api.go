package apitests

import (
	"context"
	"errors"

	"github.com/storefront-qa/api-contract-tests/client"
	"github.com/storefront-qa/api-contract-tests/framework"
	"github.com/storefront-qa/api-contract-tests/lifecycle"
	"github.com/storefront-qa/api-contract-tests/servicedef"
	"github.com/storefront-qa/api-contract-tests/session"
	"github.com/storefront-qa/api-contract-tests/verify"

	"github.com/stretchr/testify/require"
)

// Environment is the state shared by every test in a run. It is created once by the caller of
// RunTestSuite.
type Environment struct {
	Context   context.Context
	Client    *client.Client
	Sessions  *session.Provider
	Lifecycle *lifecycle.Manager
	Schemas   *verify.Schemas
}

// T represents a test or subtest in the API contract suite.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that is outside
// of the Go test runner, and with some extra features such as debug logging that are convenient for
// our use case. Those features are provided by our lower-level framework package.
//
// It also gives tests access to the run's sessions, request builder, schemas and test data
// lifecycle. Every request made through a T is written to the test's debug output.
//
// To make test assertions, you can use the assert, require and verify packages, passing the *T as if
// it were a *testing.T.
type T struct {
	context *framework.Context
	env     *Environment
}

func newTestScope(context *framework.Context, env *Environment) *T {
	return &T{context: context, env: env}
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(newTestScope(c, t.env))
	})
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

func (t *T) DebugLogger() framework.Logger {
	return t.context.DebugLogger()
}

// Defer schedules a function to run when the test exits, however it exits.
func (t *T) Defer(f func()) {
	t.context.Defer(f)
}

func (t *T) SkipWithReason(reason string) {
	t.context.SkipWithReason(reason)
}

// Ctx is the context for requests made by the test.
func (t *T) Ctx() context.Context {
	if t.env.Context == nil {
		return context.Background()
	}
	return t.env.Context
}

func (t *T) Schemas() *verify.Schemas {
	return t.env.Schemas
}

// Session returns the cached session of role. If the harness runs with strict roles, a role
// without a canonical user skips the test.
func (t *T) Session(role servicedef.Role) session.Session {
	s, err := t.env.Sessions.SessionFor(t.Ctx(), role)
	if errors.Is(err, session.ErrUnknownRole) {
		t.SkipWithReason(err.Error())
	}
	require.NoError(t, err)
	return s
}

// Request starts an unauthenticated request.
func (t *T) Request(basePath string) *client.Request {
	return t.env.Client.NewRequest(basePath, t.DebugLogger())
}

// RequestAs starts a request that carries the token of role's session.
func (t *T) RequestAs(role servicedef.Role, basePath string) *client.Request {
	return t.Request(basePath).WithToken(t.Session(role).Token)
}

// Login sends user's credentials to the token endpoint and returns the raw response.
func (t *T) Login(user servicedef.User) *client.Response {
	_, resp, err := session.NewAuthClient(t.env.Client).Login(t.Ctx(), user, t.DebugLogger())
	require.NoError(t, err)
	return resp
}

// SeedProduct creates a product as admin and returns it with its id.
func (t *T) SeedProduct(p servicedef.Product) servicedef.Product {
	created, err := t.lifecycle().SeedProduct(t.Ctx(), p)
	require.NoError(t, err)
	return created
}

// WithCleanProducts deletes all products now and again when the test exits.
func (t *T) WithCleanProducts() {
	t.reset("products", t.lifecycle().ResetProducts)
	t.Defer(func() { t.reset("products", t.lifecycle().ResetProducts) })
}

// WithCleanUsers deletes all unprotected users now and again when the test exits.
func (t *T) WithCleanUsers() {
	t.reset("users", t.lifecycle().ResetUsers)
	t.Defer(func() { t.reset("users", t.lifecycle().ResetUsers) })
}

func (t *T) reset(what string, reset func(context.Context) (int, error)) {
	deleted, err := reset(t.Ctx())
	require.NoError(t, err, "resetting %s", what)
	t.Debug("Deleted %d %s", deleted, what)
}

func (t *T) lifecycle() *lifecycle.Manager {
	return t.env.Lifecycle.WithDebugLogger(framework.LoggerWithPrefix(t.DebugLogger(), "[test data] "))
}
