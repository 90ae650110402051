package domain

import "time"

// Project is the resource managed through role-gated CRUD.
// OwnerID is fixed at creation.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectEventType names the mutation an audit event records.
type ProjectEventType string

const (
	ProjectCreated ProjectEventType = "project_created"
	ProjectUpdated ProjectEventType = "project_updated"
	ProjectDeleted ProjectEventType = "project_deleted"
)

// ProjectEvent is emitted after a project mutation has been persisted.
// ID is unique per event so consumers can drop redeliveries.
type ProjectEvent struct {
	ID         string           `json:"id"`
	Type       ProjectEventType `json:"type"`
	ProjectID  int64            `json:"project_id"`
	ActorID    int64            `json:"actor_id"`
	Name       string           `json:"name,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}
