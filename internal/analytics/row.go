package analytics

import (
	"encoding/json"
	"fmt"
	"time"

	cbigquery "cloud.google.com/go/bigquery"

	"github.com/angelmondragon/bookverse-backend/internal/events"
)

// EventRow is one storefront event in the BigQuery events table.
type EventRow struct {
	EventID    string               `bigquery:"event_id"`
	EventType  string               `bigquery:"event_type"`
	UserID     cbigquery.NullString `bigquery:"user_id"`
	SessionID  cbigquery.NullString `bigquery:"session_id"`
	Metadata   cbigquery.NullJSON   `bigquery:"metadata"`
	IPAddress  string               `bigquery:"ip_address"`
	UserAgent  string               `bigquery:"user_agent"`
	OccurredAt time.Time            `bigquery:"occurred_at"`
	IngestedAt time.Time            `bigquery:"ingested_at"`
}

// RowFromEnvelope maps a published envelope onto the events table schema.
func RowFromEnvelope(envelope events.Envelope, ingestedAt time.Time) (EventRow, error) {
	metadata, err := EncodeJSON(envelope.Metadata)
	if err != nil {
		return EventRow{}, fmt.Errorf("encode metadata: %w", err)
	}
	row := EventRow{
		EventID:    envelope.EventID,
		EventType:  envelope.EventType,
		Metadata:   metadata,
		IPAddress:  valueOrUnknown(envelope.IPAddress),
		UserAgent:  valueOrUnknown(envelope.UserAgent),
		OccurredAt: envelope.OccurredAt.UTC(),
		IngestedAt: ingestedAt.UTC(),
	}
	if envelope.UserID != nil && *envelope.UserID != "" {
		row.UserID = cbigquery.NullString{StringVal: *envelope.UserID, Valid: true}
	}
	if envelope.SessionID != nil && *envelope.SessionID != "" {
		row.SessionID = cbigquery.NullString{StringVal: *envelope.SessionID, Valid: true}
	}
	return row, nil
}

// EncodeJSON serializes payload for a BigQuery JSON column. Empty maps and
// nil payloads become NULL.
func EncodeJSON(payload any) (cbigquery.NullJSON, error) {
	switch value := payload.(type) {
	case nil:
		return cbigquery.NullJSON{}, nil
	case map[string]any:
		if len(value) == 0 {
			return cbigquery.NullJSON{}, nil
		}
	case json.RawMessage:
		if len(value) == 0 {
			return cbigquery.NullJSON{}, nil
		}
		return cbigquery.NullJSON{Valid: true, JSONVal: string(value)}, nil
	}

	marshaled, err := json.Marshal(payload)
	if err != nil {
		return cbigquery.NullJSON{}, fmt.Errorf("marshal json: %w", err)
	}
	return cbigquery.NullJSON{Valid: true, JSONVal: string(marshaled)}, nil
}

func valueOrUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
