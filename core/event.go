package core

import (
	"time"

	"github.com/google/uuid"
)

// Event is the unit of observability emitted while a workflow run progresses.
// After emission it should be treated as immutable. It captures:
//   - Correlation (RunID, ID, Author)
//   - The pipeline stage the event belongs to
//   - Optional conversational or structured content
//   - Error metadata for terminal failures
//   - High precision UTC timestamp
//
// Content may be nil for stage-transition or error-only events.
type Event struct {
	ID           string    `json:"id"`
	RunID        string    `json:"run_id"`
	Author       string    `json:"author"`
	Stage        string    `json:"stage,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Content      *Content  `json:"content,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty"`
}

// NewEvent creates a bare event authored by 'author' bound to a run.
// Prefer the helper constructors for common semantic categories.
func NewEvent(runID, author string) Event {
	return Event{
		ID:        NewID(),
		RunID:     runID,
		Author:    author,
		Timestamp: time.Now().UTC(),
	}
}

// NewStageEvent records a workflow state transition.
func NewStageEvent(runID, stage string) Event {
	e := NewEvent(runID, "workflow")
	e.Stage = stage
	return e
}

// NewMessageEvent constructs an assistant-style message event with a single
// text part. Author can be an agent name or system identifier.
func NewMessageEvent(runID, author, message string) Event {
	e := NewEvent(runID, author)
	e.Content = &Content{Role: "assistant", Parts: []Part{TextPart{Text: message}}}
	return e
}

// NewToolEvent records a tool invocation and its result as a data part.
func NewToolEvent(runID, toolName string, args, result map[string]any) Event {
	e := NewEvent(runID, toolName)
	e.Content = &Content{
		Role: "tool",
		Parts: []Part{
			DataPart{Data: map[string]any{"args": args, "result": result}},
		},
	}
	return e
}

// NewErrorEvent records a terminal failure of the run at the given stage.
func NewErrorEvent(runID, stage string, err error) Event {
	e := NewStageEvent(runID, stage)
	msg := err.Error()
	e.ErrorMessage = &msg
	return e
}

// NewID generates a new unique identifier for runs and events.
//
// Returns a string representation of a new UUID.
func NewID() string { return uuid.NewString() }

// IsError reports whether this event carries terminal error metadata.
func (e Event) IsError() bool { return e.ErrorMessage != nil }

// UnixSeconds returns the timestamp as fractional seconds since Unix epoch.
// Useful for metrics & numeric serialization paths.
func (e Event) UnixSeconds() float64 { return float64(e.Timestamp.UnixNano()) / 1e9 }
