package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/project-registry/internal/core/domain"
	"github.com/99minutos/project-registry/internal/core/ports"
	"github.com/99minutos/project-registry/internal/metrics"
)

// IdentityKey is the echo.Context key holding the authenticated *domain.Identity.
const IdentityKey = "identity"

// Auth resolves the bearer token to an identity and stores it in the context.
// Every failure surfaces as domain.ErrUnauthenticated.
func Auth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.TokenRejectionsTotal.WithLabelValues("missing").Inc()
				return fmt.Errorf("%w: missing authorization header", domain.ErrUnauthenticated)
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				metrics.TokenRejectionsTotal.WithLabelValues("malformed").Inc()
				return fmt.Errorf("%w: invalid authorization header", domain.ErrUnauthenticated)
			}

			identity, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					metrics.TokenRejectionsTotal.WithLabelValues("invalid").Inc()
				}
				return err
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by Auth.
func IdentityFrom(c echo.Context) (*domain.Identity, bool) {
	identity, ok := c.Get(IdentityKey).(*domain.Identity)
	return identity, ok && identity != nil
}
