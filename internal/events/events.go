// Package events publishes domain events for every mutation so other
// systems (notifications, analytics) can follow the workflow. Publishing
// is best-effort and never fails the action that produced the event.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
)

// Type names an event.
type Type string

const (
	SubmissionCreated       Type = "submission.created"
	SubmissionStatusChanged Type = "submission.status_changed"
	SubmissionDeleted       Type = "submission.deleted"
	LawyerRegistered        Type = "lawyer.registered"
	LawyerStatusChanged     Type = "lawyer.status_changed"
	LawyerDeleted           Type = "lawyer.deleted"
)

type Event struct {
	ID         string         `json:"id"`
	Type       Type           `json:"type"`
	Subject    string         `json:"subject"`
	Actor      string         `json:"actor,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// New stamps an event with an id and the current time.
func New(t Type, subject, actor string, data map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		Subject:    subject,
		Actor:      actor,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Emit publishes e and logs a warning instead of returning failures.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		log.Printf("Warning: failed to publish %s for %s: %v", e.Type, e.Subject, err)
	}
}

// LogPublisher writes events to the process log. Used when no broker is
// configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	log.Printf("event %s", data)
	return nil
}

func (LogPublisher) Close() error { return nil }
