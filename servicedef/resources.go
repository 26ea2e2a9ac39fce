package servicedef

import (
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Base paths of the resources exposed by the service under test.
const (
	UserPath     = "/user"
	TokenPath    = "/user/token"
	ProductPath  = "/product"
	RegisterPath = "/register" // relative to UserPath
)

// Role is the authorization role of a service user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// AllRoles lists every role the service knows about.
var AllRoles = []Role{RoleAdmin, RoleUser}

// ParseRole maps a fixture value to a Role. The second return value is false for anything that
// is not one of AllRoles.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleUser:
		return RoleUser, true
	default:
		return Role(s), false
	}
}

// Valid reports whether r is one of AllRoles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// User is the user resource. ID is assigned by the service and is left undefined on users that
// the harness constructs itself.
type User struct {
	ID        ldvalue.OptionalInt `json:"id,omitzero"`
	Username  string              `json:"username"`
	Password  string              `json:"password,omitempty"`
	Email     string              `json:"email"`
	FirstName string              `json:"firstName"`
	LastName  string              `json:"lastName"`
	Role      Role                `json:"role"`
}

func (u User) String() string {
	return fmt.Sprintf("User(id=%v, username=%q, email=%q, role=%q)", u.ID, u.Username, u.Email, u.Role)
}

// Product is the product resource. ID is assigned by the service.
type Product struct {
	ID          ldvalue.OptionalInt `json:"id,omitzero"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       float64             `json:"price"`
}

func (p Product) String() string {
	return fmt.Sprintf("Product(id=%v, name=%q, description=%q, price=%v)", p.ID, p.Name, p.Description, p.Price)
}

// Credentials is the request body of the token endpoint.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CredentialsOf returns the login credentials of a user.
func CredentialsOf(u User) Credentials {
	return Credentials{Username: u.Username, Password: u.Password}
}

// TokenResponse is the success body of the token endpoint.
type TokenResponse struct {
	JWT string `json:"jwt"`
}

// ErrorResponse is the envelope the service returns for client errors other than 401.
type ErrorResponse struct {
	Code    int          `json:"code"`
	Reason  string       `json:"reason"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`
}

// FieldError describes the violations reported for one field of a submitted entity.
type FieldError struct {
	Field    string   `json:"field"`
	Messages []string `json:"messages"`
}
