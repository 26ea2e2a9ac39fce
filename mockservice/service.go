// Package mockservice is an in-process stand-in for the User/Product service. It implements the
// endpoints, authorization rules and error envelope that the contract suite checks, and is used
// only to test the harness itself.
package mockservice

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront-qa/api-contract-tests/fixtures"
	"github.com/storefront-qa/api-contract-tests/servicedef"
)

type Options struct {
	// Secret signs the issued tokens. A fixed default is used if empty.
	Secret string
	// Logger receives request and token diagnostics. Defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Service is the service double. It is an http.Handler.
type Service struct {
	echo   *echo.Echo
	store  *store
	secret []byte
	logger zerolog.Logger
}

// New creates a service that already contains the admin user.
func New(opts Options) *Service {
	s := &Service{
		store:  newStore(bcrypt.MinCost),
		secret: []byte(opts.Secret),
		logger: zerolog.Nop(),
	}
	if len(s.secret) == 0 {
		s.secret = []byte("mockservice-secret")
	}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	}
	if _, err := s.store.addUser(fixtures.AdminUser()); err != nil {
		panic(fmt.Sprintf("seeding admin user: %s", err))
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newEntityValidator()
	e.HTTPErrorHandler = s.handleError
	e.Use(echomiddleware.Recover())
	e.Use(s.logRequests)

	e.POST(servicedef.TokenPath, s.postToken)

	users := e.Group(servicedef.UserPath, s.requireToken)
	users.GET("", s.getUsers)
	users.POST(servicedef.RegisterPath, s.registerUser, requireAdmin)
	users.DELETE("/:id", s.deleteUser, requireAdmin)

	products := e.Group(servicedef.ProductPath, s.requireToken)
	products.GET("", s.getProducts)
	products.POST("", s.postProduct)
	products.DELETE("/:id", s.deleteProduct)

	s.echo = e
	return s
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// LoginCount returns how many times a login was attempted for username.
func (s *Service) LoginCount(username string) int {
	return s.store.logins(username)
}

// Products returns the products currently stored.
func (s *Service) Products() []servicedef.Product {
	return s.store.listProducts()
}

// Users returns the users currently stored, without passwords.
func (s *Service) Users() []servicedef.User {
	return s.store.listUsers("")
}

func (s *Service) logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		s.logger.Debug().
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Int("status", c.Response().Status).
			Msg("request")
		return err
	}
}

func errorEnvelope(c echo.Context, code int, message string, fields ...servicedef.FieldError) error {
	if fields == nil {
		fields = []servicedef.FieldError{}
	}
	return c.JSON(code, servicedef.ErrorResponse{
		Code:    code,
		Reason:  http.StatusText(code),
		Message: message,
		Errors:  fields,
	})
}

// handleError renders errors that escaped the handlers, such as unknown routes, with the
// same envelope the handlers use.
func (s *Service) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, message := http.StatusInternalServerError, "Internal server error."
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code, message = he.Code, fmt.Sprintf("%v", he.Message)
	} else {
		s.logger.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}
	if code == http.StatusUnauthorized {
		_ = c.NoContent(code)
		return
	}
	_ = errorEnvelope(c, code, message)
}
