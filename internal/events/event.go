// Package events publishes order domain events once the owning transaction has
// committed.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// New stamps an event with a fresh id. Key is the partition/routing key, usually
// the order number.
func New(typ, key string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// LogPublisher writes events to the log only. Used when no broker is configured.
type LogPublisher struct{ Log logrus.FieldLogger }

func (p LogPublisher) Publish(_ context.Context, e Event) error {
	p.Log.WithFields(logrus.Fields{
		"event_id":   e.ID,
		"event_type": e.Type,
		"key":        e.Key,
	}).Debug("event")
	return nil
}

func (LogPublisher) Close() error { return nil }
