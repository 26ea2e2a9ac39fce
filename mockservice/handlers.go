package mockservice

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/storefront-qa/api-contract-tests/servicedef"
)

type userPayload struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Password  string `json:"password" validate:"required,min=8,max=64"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Role      string `json:"role" validate:"required,oneof=admin user"`
}

type productPayload struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description string  `json:"description" validate:"required,max=255"`
	Price       float64 `json:"price" validate:"gt=0"`
}

func (s *Service) postToken(c echo.Context) error {
	var creds servicedef.Credentials
	if err := (&echo.DefaultBinder{}).BindBody(c, &creds); err != nil {
		return errorEnvelope(c, http.StatusBadRequest, "Malformed JSON request.")
	}
	user, ok := s.store.authenticate(creds.Username, creds.Password)
	if !ok {
		return errorEnvelope(c, http.StatusBadRequest, "Invalid username or password.")
	}
	token, err := s.issueToken(user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, servicedef.TokenResponse{JWT: token})
}

func (s *Service) getUsers(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.listUsers(c.QueryParam("username")))
}

func (s *Service) registerUser(c echo.Context) error {
	var payload userPayload
	if written, err := bindAndValidate(c, &payload); written {
		return err
	}
	role, _ := servicedef.ParseRole(payload.Role) // checked by the oneof rule
	created, err := s.store.addUser(servicedef.User{
		Username:  payload.Username,
		Password:  payload.Password,
		Email:     payload.Email,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Role:      role,
	})
	switch {
	case errors.Is(err, errUsernameTaken):
		return errorEnvelope(c, http.StatusBadRequest, "Validation failed.", servicedef.FieldError{
			Field:    "username",
			Messages: []string{fmt.Sprintf("'%s' username has already been taken.", payload.Username)},
		})
	case errors.Is(err, errEmailTaken):
		return errorEnvelope(c, http.StatusBadRequest, "Validation failed.", servicedef.FieldError{
			Field:    "email",
			Messages: []string{fmt.Sprintf("'%s' email address has already been taken.", payload.Email)},
		})
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, created)
}

func (s *Service) deleteUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorEnvelope(c, http.StatusBadRequest, fmt.Sprintf("Invalid id '%s'.", c.Param("id")))
	}
	if err := s.store.deleteUser(id); err != nil {
		return errorEnvelope(c, http.StatusNotFound, fmt.Sprintf("User with id=%d was not found.", id))
	}
	return c.NoContent(http.StatusOK)
}

func (s *Service) getProducts(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.listProducts())
}

func (s *Service) postProduct(c echo.Context) error {
	var payload productPayload
	if written, err := bindAndValidate(c, &payload); written {
		return err
	}
	created := s.store.addProduct(servicedef.Product{
		Name:        payload.Name,
		Description: payload.Description,
		Price:       payload.Price,
	})
	return c.JSON(http.StatusOK, created)
}

func (s *Service) deleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorEnvelope(c, http.StatusBadRequest, fmt.Sprintf("Invalid id '%s'.", c.Param("id")))
	}
	if err := s.store.deleteProduct(id); err != nil {
		return errorEnvelope(c, http.StatusNotFound, fmt.Sprintf("Product with id=%d was not found.", id))
	}
	return c.NoContent(http.StatusOK)
}
