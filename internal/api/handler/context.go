package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/project-registry/internal/api/middleware"
	"github.com/99minutos/project-registry/internal/core/domain"
)

// ctxIdentity returns the identity injected by the Auth middleware. Its
// absence means the route was mounted without Auth.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return identity, nil
}
