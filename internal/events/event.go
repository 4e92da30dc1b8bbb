package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/bookverse-backend/pkg/enums"
)

// Event is one write-once analytics record.
type Event struct {
	ID         uuid.UUID
	Type       enums.EventType
	UserID     *string
	SessionID  *string
	Metadata   map[string]any
	IPAddress  string
	UserAgent  string
	OccurredAt time.Time
}

// Emitter records analytics events without blocking or failing the caller.
type Emitter interface {
	Emit(ctx context.Context, eventType enums.EventType, userID string, metadata map[string]any)
}

// Sink is a destination the async emitter fans events out to.
type Sink interface {
	Name() string
	Write(ctx context.Context, event Event) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, enums.EventType, string, map[string]any) {}

// Envelope is the JSON body published to the analytics topic.
type Envelope struct {
	EventID    string         `json:"event_id"`
	EventType  string         `json:"event_type"`
	UserID     *string        `json:"user_id,omitempty"`
	SessionID  *string        `json:"session_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	IPAddress  string         `json:"ip_address"`
	UserAgent  string         `json:"user_agent"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// EnvelopeFor converts an event into its wire form.
func EnvelopeFor(event Event) Envelope {
	return Envelope{
		EventID:    event.ID.String(),
		EventType:  event.Type.String(),
		UserID:     event.UserID,
		SessionID:  event.SessionID,
		Metadata:   event.Metadata,
		IPAddress:  event.IPAddress,
		UserAgent:  event.UserAgent,
		OccurredAt: event.OccurredAt.UTC(),
	}
}

func newEvent(ctx context.Context, eventType enums.EventType, userID string, metadata map[string]any, now time.Time) Event {
	info := ClientInfoFrom(ctx)
	event := Event{
		ID:         uuid.New(),
		Type:       eventType,
		Metadata:   copyMetadata(metadata),
		IPAddress:  info.IPAddress,
		UserAgent:  info.UserAgent,
		OccurredAt: now.UTC(),
	}
	if userID != "" {
		id := userID
		event.UserID = &id
	}
	if session := SessionIDFrom(ctx); session != "" {
		event.SessionID = &session
	}
	return event
}

func copyMetadata(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
