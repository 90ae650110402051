package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/project-registry/internal/core/domain"
	"github.com/99minutos/project-registry/internal/core/ports"
)

// ProjectService applies the role gate to project CRUD. Reads need any
// authenticated identity; writes need admin, checked before existence.
type ProjectService struct {
	store  ports.Store
	cache  ports.ProjectCache
	events ports.ProjectEventQueue
	now    func() time.Time
	logger zerolog.Logger
}

var _ ports.ProjectService = (*ProjectService)(nil)

type ProjectOption func(*ProjectService)

// WithProjectCache serves List from cache and invalidates it on writes.
func WithProjectCache(cache ports.ProjectCache) ProjectOption {
	return func(s *ProjectService) { s.cache = cache }
}

// WithEventQueue emits an audit event after every successful write.
func WithEventQueue(q ports.ProjectEventQueue) ProjectOption {
	return func(s *ProjectService) { s.events = q }
}

func WithClock(now func() time.Time) ProjectOption {
	return func(s *ProjectService) { s.now = now }
}

func NewProjectService(store ports.Store, logger zerolog.Logger, opts ...ProjectOption) *ProjectService {
	s := &ProjectService{
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ProjectService) List(ctx context.Context, actor *domain.Identity) ([]*domain.Project, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}

	// The generation is read before the store so a write committed while we
	// read makes SetList a no-op.
	var (
		gen       int64
		cacheable bool
	)
	if s.cache != nil {
		cached, g, ok, err := s.cache.GetList(ctx)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Msg("project cache read failed")
		case ok:
			return cached, nil
		default:
			gen, cacheable = g, true
		}
	}

	projects, err := s.store.Projects().List(ctx)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.SetList(ctx, gen, projects); err != nil {
			s.logger.Warn().Err(err).Msg("project cache write failed")
		}
	}
	return projects, nil
}

func (s *ProjectService) Get(ctx context.Context, actor *domain.Identity, id int64) (*domain.Project, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.store.Projects().FindByID(ctx, id)
}

func (s *ProjectService) Create(ctx context.Context, actor *domain.Identity, input ports.ProjectInput) (*domain.Project, error) {
	if err := RequireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateProjectInput(input); err != nil {
		return nil, err
	}

	now := s.now()
	created, err := s.store.Projects().Create(ctx, &domain.Project{
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, domain.ProjectCreated, actor, created)
	return created, nil
}

func (s *ProjectService) Update(ctx context.Context, actor *domain.Identity, id int64, input ports.ProjectInput) (*domain.Project, error) {
	if err := RequireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateProjectInput(input); err != nil {
		return nil, err
	}

	var updated *domain.Project
	err := s.store.WithTx(ctx, func(tx ports.Store) error {
		existing, err := tx.Projects().FindByID(ctx, id)
		if err != nil {
			return err
		}
		existing.Name = input.Name
		existing.Description = input.Description
		existing.UpdatedAt = s.now()

		updated, err = tx.Projects().Update(ctx, existing)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, domain.ProjectUpdated, actor, updated)
	return updated, nil
}

func (s *ProjectService) Delete(ctx context.Context, actor *domain.Identity, id int64) error {
	if err := RequireRole(actor, domain.RoleAdmin); err != nil {
		return err
	}

	var removed *domain.Project
	err := s.store.WithTx(ctx, func(tx ports.Store) error {
		existing, err := tx.Projects().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Projects().Delete(ctx, id); err != nil {
			return err
		}
		removed = existing
		return nil
	})
	if err != nil {
		return err
	}

	s.afterWrite(ctx, domain.ProjectDeleted, actor, removed)
	return nil
}

// afterWrite drops the cached list and queues the audit event. Neither can
// fail the request once the write is committed.
func (s *ProjectService) afterWrite(ctx context.Context, typ domain.ProjectEventType, actor *domain.Identity, p *domain.Project) {
	s.logger.Info().
		Str("action", string(typ)).
		Int64("project_id", p.ID).
		Int64("actor_id", actor.ID).
		Msg("project mutated")

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("project cache invalidation failed")
		}
	}

	if s.events != nil {
		s.events.Enqueue(domain.ProjectEvent{
			ID:         uuid.NewString(),
			Type:       typ,
			ProjectID:  p.ID,
			ActorID:    actor.ID,
			Name:       p.Name,
			OccurredAt: s.now(),
		})
	}
}

func validateProjectInput(input ports.ProjectInput) error {
	if input.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return nil
}
