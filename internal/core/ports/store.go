package ports

import (
	"context"

	"github.com/99minutos/project-registry/internal/core/domain"
)

// IdentityRepository persists registered identities. Username uniqueness is
// enforced by the storage layer and surfaces as domain.ErrDuplicateUsername.
type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
	FindByUsername(ctx context.Context, username string) (*domain.Identity, error)
	FindByID(ctx context.Context, id int64) (*domain.Identity, error)
	Delete(ctx context.Context, id int64) error
}

// ProjectRepository persists projects. Missing rows surface as
// domain.ErrProjectNotFound.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) (*domain.Project, error)
	FindByID(ctx context.Context, id int64) (*domain.Project, error)
	// List returns every project ordered by id.
	List(ctx context.Context) ([]*domain.Project, error)
	Update(ctx context.Context, project *domain.Project) (*domain.Project, error)
	Delete(ctx context.Context, id int64) error
}

// Store is the root data access interface. Drivers (gorm, mongo) implement it
// and hand out repositories bound to the current scope.
type Store interface {
	Identities() IdentityRepository
	Projects() ProjectRepository

	// WithTx runs fn inside a single store scope. The scope is committed when
	// fn returns nil and rolled back otherwise. tx must not be used after fn
	// returns.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	Ping(ctx context.Context) error
	Close() error
}
