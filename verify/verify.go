// Package verify contains the assertions that tests make about service responses.
//
// Each function takes the test as a TestingT, so it works both with *testing.T and with the
// suite's own test type. Status stops the test on a mismatch; the others report every
// mismatching field and let the test continue. All of them return true if the check passed.
package verify

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-qa/api-contract-tests/client"
	"github.com/storefront-qa/api-contract-tests/servicedef"
)

type TestingT = require.TestingT

type tHelper interface {
	Helper()
}

// Status stops the test if the response status is not code.
func Status(t TestingT, resp *client.Response, code int) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	require.NotNil(t, resp, "no response")
	require.Equal(t, code, resp.StatusCode, "unexpected status from %s %s, body: %s", resp.Method, resp.URL, resp.Body)
}

// StatusIn stops the test if the response status is none of codes. It is for operations where
// the service may choose between equivalent success statuses, such as 200 and 204 for a delete.
func StatusIn(t TestingT, resp *client.Response, codes ...int) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	require.NotNil(t, resp, "no response")
	require.Contains(t, codes, resp.StatusCode, "unexpected status from %s %s, body: %s", resp.Method, resp.URL, resp.Body)
}

// EmptyBody checks that the response has no body at all.
func EmptyBody(t TestingT, resp *client.Response) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	return assert.Len(t, resp.Body, 0, "expected an empty body, got: %s", resp.Body)
}

// EntityEquals decodes the response as the same entity type as expected and compares the
// fields that the service echoes back. Passwords are never compared. The id is compared only
// if includeID is true.
func EntityEquals[E servicedef.User | servicedef.Product](t TestingT, expected E, resp *client.Response, includeID bool) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	var actual E
	if !assert.NoError(t, resp.DecodeJSON(&actual)) {
		return false
	}
	switch exp := any(expected).(type) {
	case servicedef.User:
		return usersEqual(t, exp, any(actual).(servicedef.User), includeID)
	case servicedef.Product:
		return productsEqual(t, exp, any(actual).(servicedef.Product), includeID)
	}
	return false
}

func usersEqual(t TestingT, expected, actual servicedef.User, includeID bool) bool {
	ok := true
	if includeID {
		ok = assert.Equal(t, expected.ID, actual.ID, "id") && ok
	}
	ok = assert.Equal(t, expected.Username, actual.Username, "username") && ok
	ok = assert.Equal(t, expected.Email, actual.Email, "email") && ok
	ok = assert.Equal(t, expected.FirstName, actual.FirstName, "firstName") && ok
	ok = assert.Equal(t, expected.LastName, actual.LastName, "lastName") && ok
	ok = assert.Equal(t, expected.Role, actual.Role, "role") && ok
	return ok
}

func productsEqual(t TestingT, expected, actual servicedef.Product, includeID bool) bool {
	ok := true
	if includeID {
		ok = assert.Equal(t, expected.ID, actual.ID, "id") && ok
	}
	ok = assert.Equal(t, expected.Name, actual.Name, "name") && ok
	ok = assert.Equal(t, expected.Description, actual.Description, "description") && ok
	ok = assert.InDelta(t, expected.Price, actual.Price, 1e-9, "price") && ok
	return ok
}

// ErrorBody checks the top level of the error envelope.
func ErrorBody(t TestingT, resp *client.Response, code int, reason, message string) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	var e servicedef.ErrorResponse
	if !assert.NoError(t, resp.DecodeJSON(&e)) {
		return false
	}
	ok := assert.Equal(t, code, e.Code, "code")
	ok = assert.Equal(t, reason, e.Reason, "reason") && ok
	ok = assert.Equal(t, message, e.Message, "message") && ok
	return ok
}

// FieldError checks the envelope code and reason, and the field and message of the first
// reported field error. Further errors are ignored.
func FieldError(t TestingT, resp *client.Response, code int, reason, field, message string) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	var e servicedef.ErrorResponse
	if !assert.NoError(t, resp.DecodeJSON(&e)) {
		return false
	}
	ok := assert.Equal(t, code, e.Code, "code")
	ok = assert.Equal(t, reason, e.Reason, "reason") && ok
	if !assert.NotEmpty(t, e.Errors, "expected at least one field error in: %s", resp.Body) {
		return false
	}
	ok = assert.Equal(t, field, e.Errors[0].Field, "errors[0].field") && ok
	if !assert.NotEmpty(t, e.Errors[0].Messages, "errors[0].messages") {
		return false
	}
	ok = assert.Equal(t, message, e.Errors[0].Messages[0], "errors[0].messages[0]") && ok
	return ok
}
