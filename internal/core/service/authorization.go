package service

import (
	"github.com/99minutos/project-registry/internal/core/domain"
)

// RequireRole is the role gate applied before any protected business logic.
// A nil identity was never authenticated, which is a different failure from
// holding the wrong role.
func RequireRole(identity *domain.Identity, role domain.Role) error {
	if identity == nil {
		return domain.ErrUnauthenticated
	}
	if identity.Role != role {
		return domain.ErrPermissionDenied
	}
	return nil
}
