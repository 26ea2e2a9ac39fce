package mockservice

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/storefront-qa/api-contract-tests/servicedef"
)

// entityValidator plugs go-playground/validator into echo and reports field names as they
// appear in JSON.
type entityValidator struct {
	v *validator.Validate
}

func newEntityValidator() *entityValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &entityValidator{v: v}
}

func (ev *entityValidator) Validate(i interface{}) error {
	return ev.v.Struct(i)
}

// fieldErrors groups validation failures by field, in declaration order.
func fieldErrors(err error) ([]servicedef.FieldError, bool) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, false
	}
	var ret []servicedef.FieldError
	for _, fe := range ve {
		msg := fieldMessage(fe)
		if n := len(ret); n > 0 && ret[n-1].Field == fe.Field() {
			ret[n-1].Messages = append(ret[n-1].Messages, msg)
			continue
		}
		ret = append(ret, servicedef.FieldError{Field: fe.Field(), Messages: []string{msg}})
	}
	return ret, true
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " must not be blank."
	case "email":
		return fmt.Sprintf("'%v' is not a valid email address.", fe.Value())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long.", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long.", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s].", field, strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return fmt.Sprintf("%s is invalid.", field)
	}
}

// bindAndValidate decodes the request body into payload. If the body is malformed or fails
// validation, the error envelope is written and written is true.
func bindAndValidate(c echo.Context, payload interface{}) (written bool, err error) {
	if err := (&echo.DefaultBinder{}).BindBody(c, payload); err != nil {
		return true, errorEnvelope(c, http.StatusBadRequest, "Malformed JSON request.")
	}
	if err := c.Validate(payload); err != nil {
		fields, ok := fieldErrors(err)
		if !ok {
			return true, err
		}
		return true, errorEnvelope(c, http.StatusBadRequest, "Validation failed.", fields...)
	}
	return false, nil
}
