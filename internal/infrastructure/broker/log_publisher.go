// Package broker holds the destinations audit events can be delivered to.
package broker

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/project-registry/internal/core/domain"
	"github.com/99minutos/project-registry/internal/core/ports"
)

// LogPublisher writes audit events to the structured log. It is used when no
// Kafka brokers are configured.
type LogPublisher struct {
	log zerolog.Logger
}

var _ ports.ProjectEventPublisher = (*LogPublisher)(nil)

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log.With().Str("component", "audit").Logger()}
}

func (p *LogPublisher) Publish(_ context.Context, event domain.ProjectEvent) error {
	p.log.Info().
		Str("event_id", event.ID).
		Str("event_type", string(event.Type)).
		Int64("project_id", event.ProjectID).
		Int64("actor_id", event.ActorID).
		Str("name", event.Name).
		Time("occurred_at", event.OccurredAt).
		Msg("project event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
