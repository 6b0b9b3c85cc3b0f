package events

import (
	"context"
	"time"
)

// Actions carried by a ChangeEvent.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	ActionRetired = "retired" // class soft delete
)

// ChangeEvent describes one successful mutation on a domain entity.
type ChangeEvent struct {
	Entity     string    `json:"entity"`
	Action     string    `json:"action"`
	ID         string    `json:"id"`
	EscolaID   string    `json:"escolaId"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewChangeEvent(entity, action, id, escolaID string) ChangeEvent {
	return ChangeEvent{
		Entity:     entity,
		Action:     action,
		ID:         id,
		EscolaID:   escolaID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher sends change events to the message broker. Implementations must
// not surface publish failures to request handling; mutations stand on their
// own even when the broker is down.
type Publisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
	Close() error
}
