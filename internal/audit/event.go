// Package audit records authorization decisions.
//
// The HTTP guard hands every decision to a Recorder. In production the
// recorder enqueues the event and the worker persists it with Store; denials
// are always kept, allows only when configured.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is one authorization decision.
type Event struct {
	ID          string    `json:"id"`
	OccurredAt  time.Time `json:"occurred_at"`
	RequestID   string    `json:"request_id,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	Role        string    `json:"role,omitempty"`
	Method      string    `json:"method,omitempty"`
	Path        string    `json:"path,omitempty"`
	Requirement string    `json:"requirement"`
	Allowed     bool      `json:"allowed"`
	Reason      string    `json:"reason"`
}

// WithDefaults fills a missing ID and timestamp.
func (e Event) WithDefaults() Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	return e
}

// Recorder accepts decision events.
type Recorder interface {
	Record(ctx context.Context, evt Event) error
}

// RecorderFunc adapts an ordinary function to Recorder.
type RecorderFunc func(ctx context.Context, evt Event) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// Filtered forwards denials to next and drops allows unless logAllowed.
func Filtered(next Recorder, logAllowed bool) Recorder {
	return RecorderFunc(func(ctx context.Context, evt Event) error {
		if evt.Allowed && !logAllowed {
			return nil
		}
		return next.Record(ctx, evt)
	})
}
