package mockservice

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/storefront-qa/api-contract-tests/fixtures"
	"github.com/storefront-qa/api-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, s *Service, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, s *Service, u servicedef.User) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, servicedef.TokenPath, "", servicedef.CredentialsOf(u))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tr servicedef.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tr))
	require.NotEmpty(t, tr.JWT)
	return tr.JWT
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) servicedef.ErrorResponse {
	t.Helper()
	var e servicedef.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e), rec.Body.String())
	return e
}

func TestAdminIsSeeded(t *testing.T) {
	s := New(Options{})
	users := s.Users()
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
	assert.Equal(t, 1, users[0].ID.IntValue())
	assert.Empty(t, users[0].Password)
}

func TestTokenEndpoint(t *testing.T) {
	s := New(Options{})
	login(t, s, fixtures.AdminUser())

	for name, u := range map[string]servicedef.User{
		"unknown user":   fixtures.NonExistentUser(),
		"wrong password": fixtures.WrongPasswordUser(),
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, servicedef.TokenPath, "", servicedef.CredentialsOf(u))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			e := decodeEnvelope(t, rec)
			assert.Equal(t, "Bad Request", e.Reason)
			assert.Equal(t, "Invalid username or password.", e.Message)
		})
	}
	assert.Equal(t, 2, s.LoginCount("admin"))
}

func TestUnauthenticatedRequestsGetEmptyUnauthorized(t *testing.T) {
	s := New(Options{})
	for _, token := range []string{"", "invalidToken"} {
		rec := do(t, s, http.MethodPost, servicedef.ProductPath, token, fixtures.GenericProduct())
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Zero(t, rec.Body.Len())
	}
}

func TestTokenSignedWithOtherSecretIsRejected(t *testing.T) {
	other := New(Options{Secret: "other"})
	token := login(t, other, fixtures.AdminUser())

	rec := do(t, New(Options{}), http.MethodGet, servicedef.ProductPath, token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProductLifecycle(t *testing.T) {
	s := New(Options{})
	token := login(t, s, fixtures.AdminUser())

	rec := do(t, s, http.MethodPost, servicedef.ProductPath, token, fixtures.GenericProduct())
	require.Equal(t, http.StatusOK, rec.Code)
	var created servicedef.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.ID.IsDefined())
	assert.Equal(t, "SomeName", created.Name)
	assert.Len(t, s.Products(), 1)

	path := servicedef.ProductPath + "/" + strconv.Itoa(created.ID.IntValue())
	rec = do(t, s, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())

	rec = do(t, s, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	e := decodeEnvelope(t, rec)
	assert.Equal(t, 404, e.Code)
	assert.Equal(t, "Not Found", e.Reason)
	assert.Equal(t, "Product with id="+strconv.Itoa(created.ID.IntValue())+" was not found.", e.Message)
	assert.Empty(t, e.Errors)
}

func TestProductValidation(t *testing.T) {
	s := New(Options{})
	token := login(t, s, fixtures.AdminUser())

	rec := do(t, s, http.MethodPost, servicedef.ProductPath, token, servicedef.Product{Name: "", Description: "d", Price: -1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	e := decodeEnvelope(t, rec)
	assert.Equal(t, "Validation failed.", e.Message)
	assert.Equal(t, []servicedef.FieldError{
		{Field: "name", Messages: []string{"name must not be blank."}},
		{Field: "price", Messages: []string{"price must be greater than 0."}},
	}, e.Errors)
}

func TestRegisterRequiresAdmin(t *testing.T) {
	s := New(Options{})
	adminToken := login(t, s, fixtures.AdminUser())

	rec := do(t, s, http.MethodPost, servicedef.UserPath+servicedef.RegisterPath, adminToken, fixtures.RegularUser())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created servicedef.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "user", created.Username)
	assert.Empty(t, created.Password)

	userToken := login(t, s, fixtures.RegularUser())
	other := fixtures.RegularUser()
	other.Username, other.Email = "someone", "someone@email.com"
	rec = do(t, s, http.MethodPost, servicedef.UserPath+servicedef.RegisterPath, userToken, other)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, s, http.MethodDelete, servicedef.UserPath+"/"+strconv.Itoa(created.ID.IntValue()), userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDuplicateUsers(t *testing.T) {
	s := New(Options{})
	token := login(t, s, fixtures.AdminUser())
	path := servicedef.UserPath + servicedef.RegisterPath

	dupUsername := fixtures.RegularUser()
	dupUsername.Username = "admin"
	rec := do(t, s, http.MethodPost, path, token, dupUsername)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []servicedef.FieldError{
		{Field: "username", Messages: []string{"'admin' username has already been taken."}},
	}, decodeEnvelope(t, rec).Errors)

	dupEmail := fixtures.RegularUser()
	dupEmail.Email = "admin@email.com"
	rec = do(t, s, http.MethodPost, path, token, dupEmail)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []servicedef.FieldError{
		{Field: "email", Messages: []string{"'admin@email.com' email address has already been taken."}},
	}, decodeEnvelope(t, rec).Errors)
}

func TestUserQueryByUsername(t *testing.T) {
	s := New(Options{})
	token := login(t, s, fixtures.AdminUser())

	rec := do(t, s, http.MethodGet, servicedef.UserPath+"?username=user", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, s, http.MethodGet, servicedef.UserPath+"?username=admin", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []servicedef.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, servicedef.RoleAdmin, users[0].Role)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	rec := do(t, New(Options{}), http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decodeEnvelope(t, rec).Reason)
}
