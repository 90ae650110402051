package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/project-registry/internal/core/domain"
	"github.com/99minutos/project-registry/internal/metrics"
)

// RBAC enforces role-based access control. It must run after Auth so that a
// denied request is rejected before its body or path is inspected.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if _, ok := allowed[identity.Role]; !ok {
				metrics.AccessDeniedTotal.WithLabelValues(string(identity.Role)).Inc()
				return domain.ErrPermissionDenied
			}
			return next(c)
		}
	}
}
