// Package audit captures structured, append-only records of every mutating
// operation. Sinks are synchronous; emission failures are reported to the
// caller, which logs them without failing the request.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"seva/internal/platform/middleware"
)

// Actions emitted by the services.
const (
	ActionApplicationCreated = "application.created"
	ActionApplicationUpdated = "application.updated"
	ActionApplicationDeleted = "application.deleted"
	ActionTestResultUpdated  = "test_result.updated"
	ActionHistoryRecorded    = "history.recorded"
	ActionPANRevealed        = "pan.revealed"
)

// Event is one audit record.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	Action    string         `json:"action"`
	Subject   string         `json:"subject"`
	Actor     string         `json:"actor,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Detail    map[string]any `json:"detail,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Sink persists audit events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher fans an event out to every configured sink.
type Publisher struct {
	sinks []Sink
}

// NewPublisher constructs a Publisher over the given sinks. Nil sinks are
// skipped so optional backends can be wired unconditionally.
func NewPublisher(sinks ...Sink) *Publisher {
	p := &Publisher{}
	for _, s := range sinks {
		if s != nil {
			p.sinks = append(p.sinks, s)
		}
	}
	return p
}

// Emit assigns the event identity and timestamp and appends it to all sinks.
// Every sink is attempted; errors are joined.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if p == nil {
		return nil
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RequestID == "" {
		event.RequestID = middleware.GetRequestID(ctx)
	}
	var errs []error
	for _, s := range p.sinks {
		if err := s.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
