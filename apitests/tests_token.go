package apitests

import (
	"github.com/storefront-qa/api-contract-tests/fixtures"
	"github.com/storefront-qa/api-contract-tests/servicedef"
	"github.com/storefront-qa/api-contract-tests/verify"

	"github.com/stretchr/testify/assert"
)

func DoTokenTests(t *T) {
	t.Run("non-existent user is rejected", func(t *T) {
		resp := t.Login(fixtures.NonExistentUser())
		verify.Status(t, resp, 400)
		t.Schemas().Match(t, resp, "authentication/authentication_failed")
	})

	t.Run("wrong password is rejected", func(t *T) {
		resp := t.Login(fixtures.WrongPasswordUser())
		verify.Status(t, resp, 400)
		t.Schemas().Match(t, resp, "authentication/authentication_failed")
	})

	t.Run("admin receives a token", func(t *T) {
		resp := t.Login(fixtures.AdminUser())
		verify.Status(t, resp, 200)
		t.Schemas().Match(t, resp, "authentication/authentication_successful")
	})

	for _, role := range servicedef.AllRoles {
		t.Run("session is reused for "+string(role), func(t *T) {
			first := t.Session(role)
			second := t.Session(role)
			assert.True(t, first.Authenticated(), "login as %s did not return a token", role)
			assert.Equal(t, first.Token, second.Token)
			assert.Equal(t, first.IssuedAt, second.IssuedAt)
		})
	}
}
