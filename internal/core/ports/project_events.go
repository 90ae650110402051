package ports

import (
	"context"

	"github.com/99minutos/project-registry/internal/core/domain"
)

// ProjectEventQueue accepts audit events for asynchronous delivery.
// Enqueue never blocks; it reports false when the event was dropped.
type ProjectEventQueue interface {
	Enqueue(event domain.ProjectEvent) bool
}

// ProjectEventPublisher delivers one event to its final destination.
type ProjectEventPublisher interface {
	Publish(ctx context.Context, event domain.ProjectEvent) error
	Close() error
}
