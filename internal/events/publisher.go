package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
)

type publishFunc func(ctx context.Context, data []byte, attrs map[string]string) (string, error)

// PublishSink forwards events to the analytics Pub/Sub topic.
type PublishSink struct {
	publish publishFunc
}

// NewPublishSink wraps a Pub/Sub publisher and waits for each server ack.
func NewPublishSink(publisher *gcppubsub.Publisher) (*PublishSink, error) {
	if publisher == nil {
		return nil, fmt.Errorf("analytics publisher required")
	}
	return newPublishSink(func(ctx context.Context, data []byte, attrs map[string]string) (string, error) {
		result := publisher.Publish(ctx, &gcppubsub.Message{Data: data, Attributes: attrs})
		return result.Get(ctx)
	}), nil
}

func newPublishSink(fn publishFunc) *PublishSink {
	return &PublishSink{publish: fn}
}

func (s *PublishSink) Name() string { return "pubsub" }

func (s *PublishSink) Write(ctx context.Context, event Event) error {
	data, err := json.Marshal(EnvelopeFor(event))
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	attrs := map[string]string{
		"event_id":    event.ID.String(),
		"event_type":  event.Type.String(),
		"occurred_at": event.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
	if _, err := s.publish(ctx, data, attrs); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
