package ports

import (
	"context"

	"github.com/99minutos/project-registry/internal/core/domain"
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username string
	Password string
	Role     string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Identity, error)
	Login(ctx context.Context, username, password string) (*domain.Token, error)
	// Authenticate resolves a bearer token to the identity it was issued for.
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
}
