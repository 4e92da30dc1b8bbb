package events

import (
	"context"
	"strings"
	"testing"

	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
)

type captureEmitter struct {
	types []enums.EventType
	users []string
}

func (c *captureEmitter) Emit(ctx context.Context, eventType enums.EventType, userID string, metadata map[string]any) {
	c.types = append(c.types, eventType)
	c.users = append(c.users, userID)
}

func TestIngestAcceptsClientTypes(t *testing.T) {
	emitter := &captureEmitter{}
	svc := NewIngestService(emitter)

	if err := svc.Ingest(context.Background(), "u1", IngestInput{Type: "page_view", Metadata: map[string]any{"path": "/books"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(emitter.types) != 1 || emitter.types[0] != enums.EventPageView || emitter.users[0] != "u1" {
		t.Fatalf("unexpected emitted events %v %v", emitter.types, emitter.users)
	}
}

func TestIngestRejectsUnknownAndServerTypes(t *testing.T) {
	emitter := &captureEmitter{}
	svc := NewIngestService(emitter)

	err := svc.Ingest(context.Background(), "", IngestInput{Type: "made_up"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	err = svc.Ingest(context.Background(), "", IngestInput{Type: "payment_success"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
	if len(emitter.types) != 0 {
		t.Fatal("rejected events must not be emitted")
	}
}

func TestIngestRejectsOversizedMetadata(t *testing.T) {
	svc := NewIngestService(&captureEmitter{})
	big := map[string]any{"blob": strings.Repeat("x", maxIngestMetadataBytes)}
	err := svc.Ingest(context.Background(), "", IngestInput{Type: "search_query", Metadata: big})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
