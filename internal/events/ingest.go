package events

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
)

const maxIngestMetadataBytes = 4096

// clientEventTypes are the types browsers may report directly. Payment and
// order events only originate server side.
var clientEventTypes = map[enums.EventType]bool{
	enums.EventBookView:    true,
	enums.EventSearchQuery: true,
	enums.EventPageView:    true,
	enums.EventUserSignup:  true,
	enums.EventUserLogin:   true,
}

// IngestInput is a client-reported event.
type IngestInput struct {
	Type     string         `json:"type" validate:"required"`
	Metadata map[string]any `json:"metadata"`
}

// IngestService validates client events before handing them to the emitter.
type IngestService struct {
	emitter Emitter
}

func NewIngestService(emitter Emitter) *IngestService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &IngestService{emitter: emitter}
}

func (s *IngestService) Ingest(ctx context.Context, userID string, input IngestInput) error {
	eventType, err := enums.ParseEventType(strings.TrimSpace(input.Type))
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown event type").
			WithDetails(map[string]any{"type": input.Type})
	}
	if !clientEventTypes[eventType] {
		return pkgerrors.New(pkgerrors.CodeForbidden, "event type cannot be reported by clients")
	}
	if len(input.Metadata) > 0 {
		raw, err := json.Marshal(input.Metadata)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "metadata must be a JSON object")
		}
		if len(raw) > maxIngestMetadataBytes {
			return pkgerrors.New(pkgerrors.CodeValidation, "metadata too large").
				WithDetails(map[string]any{"max_bytes": maxIngestMetadataBytes})
		}
	}
	s.emitter.Emit(ctx, eventType, userID, input.Metadata)
	return nil
}
