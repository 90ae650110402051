package ports

import (
	"context"

	"github.com/99minutos/project-registry/internal/core/domain"
)

// ProjectInput holds the caller-editable project fields. Update replaces both.
type ProjectInput struct {
	Name        string
	Description string
}

type ProjectService interface {
	List(ctx context.Context, actor *domain.Identity) ([]*domain.Project, error)
	Get(ctx context.Context, actor *domain.Identity, id int64) (*domain.Project, error)
	Create(ctx context.Context, actor *domain.Identity, input ProjectInput) (*domain.Project, error)
	Update(ctx context.Context, actor *domain.Identity, id int64, input ProjectInput) (*domain.Project, error)
	Delete(ctx context.Context, actor *domain.Identity, id int64) error
}

// ProjectCache holds the full project list between mutations. Entries are
// tagged with a generation that Invalidate advances, so a list read from the
// store before a write can never be stored after that write.
type ProjectCache interface {
	// GetList reports ok=false on a miss. gen is the generation current at
	// the time of the read and must be handed back to SetList.
	GetList(ctx context.Context) (projects []*domain.Project, gen int64, ok bool, err error)
	// SetList stores projects only while the generation is still gen.
	SetList(ctx context.Context, gen int64, projects []*domain.Project) error
	Invalidate(ctx context.Context) error
}
