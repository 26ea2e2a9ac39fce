package apitests

import (
	"fmt"

	"github.com/storefront-qa/api-contract-tests/fixtures"
	"github.com/storefront-qa/api-contract-tests/servicedef"
	"github.com/storefront-qa/api-contract-tests/verify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userRow struct {
	user          servicedef.User
	expectedField string
	expectedMsg   string
}

func (r userRow) String() string {
	u := r.user
	return fmt.Sprintf("username=%q, email=%q, firstName=%q, lastName=%q, role=%q",
		u.Username, u.Email, u.FirstName, u.LastName, u.Role)
}

func newUser(username, password, email, firstName, lastName string, role servicedef.Role) servicedef.User {
	return servicedef.User{
		Username:  username,
		Password:  password,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
	}
}

var validUsers = []userRow{
	{user: newUser("jdoe", "JohnDoe1!", "jdoe@email.com", "John", "Doe", servicedef.RoleUser)},
	{user: newUser("asmith", "AliceSmith1!", "asmith@email.com", "Alice", "Smith", servicedef.RoleAdmin)},
}

var invalidUsers = []userRow{
	{newUser("", "ValidPass1!", "blank@email.com", "Blank", "Name", servicedef.RoleUser),
		"username", "username must not be blank."},
	{newUser("ab", "ValidPass1!", "short@email.com", "Short", "Name", servicedef.RoleUser),
		"username", "username must be at least 3 characters long."},
	{newUser("shortpass", "Pass1!", "shortpass@email.com", "Short", "Password", servicedef.RoleUser),
		"password", "password must be at least 8 characters long."},
	{newUser("bademail", "ValidPass1!", "not-an-email", "Bad", "Email", servicedef.RoleUser),
		"email", "'not-an-email' is not a valid email address."},
	{newUser("nofirst", "ValidPass1!", "nofirst@email.com", "", "Name", servicedef.RoleUser),
		"firstName", "firstName must not be blank."},
	{newUser("nolast", "ValidPass1!", "nolast@email.com", "No", "", servicedef.RoleUser),
		"lastName", "lastName must not be blank."},
	{newUser("badrole", "ValidPass1!", "badrole@email.com", "Bad", "Role", "superuser"),
		"role", "role must be one of [admin, user]."},
}

func DoUserTests(t *T) {
	t.WithCleanUsers()

	t.Run("register valid", func(t *T) {
		for _, row := range validUsers {
			t.Run(row.String(), func(t *T) {
				resp, err := t.RequestAs(servicedef.RoleAdmin, servicedef.UserPath).
					WithJSONBody(row.user).
					Post(t.Ctx(), servicedef.RegisterPath)
				require.NoError(t, err)
				verify.Status(t, resp, 200)
				t.Schemas().Match(t, resp, "user/user")
				verify.EntityEquals(t, row.user, resp, false)
			})
		}
	})

	t.Run("register duplicate", func(t *T) {
		original := newUser(fixtures.Unique("originalUser"), "OriginalUser1!", fixtures.Unique("original")+"@mail.com",
			"Original", "Original", servicedef.RoleAdmin)
		resp, err := t.RequestAs(servicedef.RoleAdmin, servicedef.UserPath).
			WithJSONBody(original).
			Post(t.Ctx(), servicedef.RegisterPath)
		require.NoError(t, err)
		verify.Status(t, resp, 200)

		t.Run("email", func(t *T) {
			duplicate := newUser(fixtures.Unique("duplicate"), "DuplicateUser1!", original.Email,
				"Duplicate", "Duplicate", servicedef.RoleUser)
			resp, err := t.RequestAs(servicedef.RoleAdmin, servicedef.UserPath).
				WithJSONBody(duplicate).
				Post(t.Ctx(), servicedef.RegisterPath)
			require.NoError(t, err)
			verify.Status(t, resp, 400)
			verify.FieldError(t, resp, 400, "Bad Request", "email",
				fmt.Sprintf("'%s' email address has already been taken.", original.Email))
		})

		t.Run("username", func(t *T) {
			duplicate := newUser(original.Username, "DuplicateUser1!", fixtures.Unique("nonDuplicate")+"@email.com",
				"Duplicate", "Duplicate", servicedef.RoleUser)
			resp, err := t.RequestAs(servicedef.RoleAdmin, servicedef.UserPath).
				WithJSONBody(duplicate).
				Post(t.Ctx(), servicedef.RegisterPath)
			require.NoError(t, err)
			verify.Status(t, resp, 400)
			verify.FieldError(t, resp, 400, "Bad Request", "username",
				fmt.Sprintf("'%s' username has already been taken.", original.Username))
		})
	})

	t.Run("register invalid", func(t *T) {
		for _, row := range invalidUsers {
			t.Run(row.String(), func(t *T) {
				resp, err := t.RequestAs(servicedef.RoleAdmin, servicedef.UserPath).
					WithJSONBody(row.user).
					Post(t.Ctx(), servicedef.RegisterPath)
				require.NoError(t, err)
				verify.Status(t, resp, 400)
				t.Schemas().Match(t, resp, "user/user_invalid")
				verify.FieldError(t, resp, 400, "Bad Request", row.expectedField, row.expectedMsg)
			})
		}
	})

	t.Run("lookup by username", func(t *T) {
		user := newUser(fixtures.Unique("lookup"), "LookupUser1!", fixtures.Unique("lookup")+"@email.com",
			"Look", "Up", servicedef.RoleUser)
		resp, err := t.RequestAs(servicedef.RoleAdmin, servicedef.UserPath).
			WithJSONBody(user).
			Post(t.Ctx(), servicedef.RegisterPath)
		require.NoError(t, err)
		verify.Status(t, resp, 200)

		resp, err = t.RequestAs(servicedef.RoleAdmin, servicedef.UserPath).
			WithQuery("username", user.Username).
			Get(t.Ctx(), "")
		require.NoError(t, err)
		verify.Status(t, resp, 200)
		t.Schemas().Match(t, resp, "user/user_list")

		var found []servicedef.User
		require.NoError(t, resp.DecodeJSON(&found))
		if assert.Len(t, found, 1) {
			assert.Equal(t, user.Email, found[0].Email)
		}
	})
}
