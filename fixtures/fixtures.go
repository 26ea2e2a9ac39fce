// Package fixtures holds the canonical users and products that tests use as inputs.
//
// Every function returns a fresh value, so callers may modify what they get back.
package fixtures

import (
	"strings"

	"github.com/google/uuid"

	"github.com/storefront-qa/api-contract-tests/servicedef"
)

// AdminUser is the administrator account that the service is provisioned with.
func AdminUser() servicedef.User {
	return servicedef.User{
		Username:  "admin",
		Password:  "admin",
		Email:     "admin@email.com",
		FirstName: "admin",
		LastName:  "admin",
		Role:      servicedef.RoleAdmin,
	}
}

// RegularUser is the non-admin account. The harness registers it on first use if the service
// does not have it yet.
func RegularUser() servicedef.User {
	return servicedef.User{
		Username:  "user",
		Password:  "UserPassword1!",
		Email:     "user@email.com",
		FirstName: "user",
		LastName:  "user",
		Role:      servicedef.RoleUser,
	}
}

// UserForRole returns the canonical user of a role. The second return value is false for a
// role that has no canonical user.
func UserForRole(role servicedef.Role) (servicedef.User, bool) {
	switch role {
	case servicedef.RoleAdmin:
		return AdminUser(), true
	case servicedef.RoleUser:
		return RegularUser(), true
	default:
		return servicedef.User{}, false
	}
}

// GenericProduct is a valid product with no id.
func GenericProduct() servicedef.Product {
	return servicedef.Product{
		Name:        "SomeName",
		Description: "SomeDescription",
		Price:       51.0,
	}
}

// NonExistentUser has the regular user's password but a username the service has never seen.
func NonExistentUser() servicedef.User {
	u := RegularUser()
	u.Username = Unique("noSuchUser")
	return u
}

// WrongPasswordUser is the admin user with a password that does not match.
func WrongPasswordUser() servicedef.User {
	u := AdminUser()
	u.Password = "invalidPassword"
	return u
}

// Unique returns prefix followed by a short random suffix. It is used for names that must not
// collide with data left over from earlier runs.
func Unique(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
