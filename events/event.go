// Package events emits observational records of parsed and executed
// palette commands. Sinks never fail the command they describe.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/intent"
)

// Kind classifies an event.
type Kind string

const (
	KindParsed    Kind = "parsed"
	KindSucceeded Kind = "succeeded"
	KindFailed    Kind = "failed"
)

// Event describes one palette interaction.
type Event struct {
	ID         string        `json:"id"`
	Kind       Kind          `json:"kind"`
	TenantID   int64         `json:"tenant_id"`
	UserID     int64         `json:"user_id"`
	Input      string        `json:"input"`
	Intent     intent.Intent `json:"intent,omitempty"`
	Entities   []entity.Type `json:"entities,omitempty"`
	Confidence float64       `json:"confidence"`
	Shortcut   bool          `json:"shortcut"`
	Success    *bool         `json:"success,omitempty"` // nil for parse events
	Reason     string        `json:"reason,omitempty"`
	Duration   time.Duration `json:"duration"`
	At         time.Time     `json:"at"`
}

// Sink receives events. Implementations must not block the caller for long
// and must swallow their own failures.
type Sink interface {
	Emit(ctx context.Context, ev Event)
}

// Parsed builds the event for a finished parse.
func Parsed(cmd *intent.Command, rctx entity.Context, took time.Duration, at time.Time) Event {
	ev := newEvent(KindParsed, rctx, at)
	ev.Duration = took
	if cmd != nil {
		ev.Input = cmd.Original()
		ev.Intent = cmd.Intent()
		ev.Entities = cmd.Entities()
		ev.Confidence = cmd.Confidence()
		ev.Shortcut = cmd.IsShortcut()
	}
	return ev
}

// Outcome builds the event for an executed command. reason is ignored on
// success.
func Outcome(command string, cmd *intent.Command, rctx entity.Context, success bool, reason string, at time.Time) Event {
	kind := KindSucceeded
	if !success {
		kind = KindFailed
	}
	ev := newEvent(kind, rctx, at)
	ev.Input = command
	ev.Success = &success
	if !success {
		ev.Reason = reason
	}
	if cmd != nil {
		ev.Intent = cmd.Intent()
		ev.Entities = cmd.Entities()
		ev.Confidence = cmd.Confidence()
		ev.Shortcut = cmd.IsShortcut()
	}
	return ev
}

func newEvent(kind Kind, rctx entity.Context, at time.Time) Event {
	return Event{
		ID:       uuid.New().String(),
		Kind:     kind,
		TenantID: rctx.TenantID,
		UserID:   rctx.UserID,
		At:       at,
	}
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) Emit(context.Context, Event) {}

// MultiSink fans an event out to every sink in order.
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, ev Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(ctx, ev)
		}
	}
}
