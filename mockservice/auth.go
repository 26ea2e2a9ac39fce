package mockservice

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/storefront-qa/api-contract-tests/servicedef"
)

const (
	tokenTTL       = time.Hour
	contextKeyRole = "role"
)

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Service) issueToken(u servicedef.User) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// requireToken rejects requests without a valid bearer token. Like the real service, a 401
// carries no body.
func (s *Service) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		scheme, token, ok := strings.Cut(c.Request().Header.Get(echo.HeaderAuthorization), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			return c.NoContent(http.StatusUnauthorized)
		}
		claims := &tokenClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !parsed.Valid {
			s.logger.Debug().Err(err).Msg("rejected token")
			return c.NoContent(http.StatusUnauthorized)
		}
		c.Set(contextKeyRole, claims.Role)
		return next(c)
	}
}

func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if role, _ := c.Get(contextKeyRole).(string); role != string(servicedef.RoleAdmin) {
			return errorEnvelope(c, http.StatusForbidden, "Access is denied.")
		}
		return next(c)
	}
}
