package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/angelmondragon/bookverse-backend/internal/events"
	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
)

const consumerName = "analytics"

type rowWriter interface {
	Write(ctx context.Context, row EventRow) error
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Release(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// WorkerParams bundles the analytics worker dependencies.
type WorkerParams struct {
	Subscription *gcppubsub.Subscriber
	Writer       rowWriter
	Idempotency  idempotencyChecker
	Logger       *logger.Logger
}

// Worker drains the analytics subscription into BigQuery. Deliveries are
// de-duplicated by event id so redelivered messages produce one row.
type Worker struct {
	subscription *gcppubsub.Subscriber
	writer       rowWriter
	manager      idempotencyChecker
	logg         *logger.Logger
	now          func() time.Time
}

func NewWorker(params WorkerParams) (*Worker, error) {
	if params.Subscription == nil {
		return nil, errors.New("analytics subscription is required")
	}
	if params.Writer == nil {
		return nil, errors.New("analytics writer is required")
	}
	if params.Idempotency == nil {
		return nil, errors.New("idempotency manager is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Worker{
		subscription: params.Subscription,
		writer:       params.Writer,
		manager:      params.Idempotency,
		logg:         params.Logger,
		now:          time.Now,
	}, nil
}

type processResult struct {
	nack bool
}

// Run receives messages until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	return w.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if w.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (w *Worker) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	logCtx := w.logg.WithField(ctx, "message_id", msg.ID)

	envelope, eventID, err := decodeEnvelope(msg)
	if err != nil {
		w.logg.Warn(w.logg.WithField(logCtx, "error", err.Error()), "invalid analytics envelope")
		return processResult{}
	}
	logCtx = w.logg.WithFields(logCtx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": envelope.EventType,
	})

	already, err := w.manager.CheckAndMarkProcessed(logCtx, consumerName, eventID)
	if err != nil {
		w.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		w.logg.Debug(logCtx, "event already processed")
		return processResult{}
	}

	row, err := RowFromEnvelope(*envelope, w.now())
	if err == nil {
		err = w.writer.Write(logCtx, row)
	}
	if err != nil {
		w.logg.Error(logCtx, "failed to write analytics row", err)
		if relErr := w.manager.Release(context.WithoutCancel(logCtx), consumerName, eventID); relErr != nil {
			w.logg.Error(logCtx, "failed to release idempotency claim", relErr)
		}
		return processResult{nack: true}
	}

	w.logg.Debug(logCtx, "analytics event written")
	return processResult{}
}

func decodeEnvelope(msg *gcppubsub.Message) (*events.Envelope, uuid.UUID, error) {
	var envelope events.Envelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		return nil, uuid.Nil, fmt.Errorf("decode envelope: %w", err)
	}

	envelope.EventID = strings.TrimSpace(envelope.EventID)
	if envelope.EventID == "" {
		envelope.EventID = strings.TrimSpace(msg.Attributes["event_id"])
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("event_id: %w", err)
	}

	if envelope.EventType == "" {
		envelope.EventType = strings.TrimSpace(msg.Attributes["event_type"])
	}
	if _, err := enums.ParseEventType(envelope.EventType); err != nil {
		return nil, uuid.Nil, fmt.Errorf("event_type: %w", err)
	}

	if envelope.OccurredAt.IsZero() {
		if raw := strings.TrimSpace(msg.Attributes["occurred_at"]); raw != "" {
			if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
				envelope.OccurredAt = parsed
			}
		}
	}
	if envelope.OccurredAt.IsZero() {
		return nil, uuid.Nil, errors.New("occurred_at missing")
	}
	return &envelope, eventID, nil
}
