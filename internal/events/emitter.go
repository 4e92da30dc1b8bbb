package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
	"github.com/angelmondragon/bookverse-backend/pkg/metrics"
)

const (
	defaultQueueSize   = 1024
	defaultWorkers     = 2
	defaultSinkTimeout = 5 * time.Second
)

// AsyncEmitterParams configure the background dispatcher.
type AsyncEmitterParams struct {
	Logger      *logger.Logger
	Sinks       []Sink
	Metrics     *metrics.EventMetrics
	QueueSize   int
	Workers     int
	SinkTimeout time.Duration
	Now         func() time.Time
}

// AsyncEmitter queues events on a bounded channel drained by worker goroutines.
// A full queue drops the event; Emit never blocks.
type AsyncEmitter struct {
	logg        *logger.Logger
	sinks       []Sink
	metrics     *metrics.EventMetrics
	sinkTimeout time.Duration
	now         func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan queued
	wg     sync.WaitGroup
}

// queued keeps the emitting request's log fields without its cancellation.
type queued struct {
	event  Event
	logCtx context.Context
}

func NewAsyncEmitter(params AsyncEmitterParams) (*AsyncEmitter, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if len(params.Sinks) == 0 {
		return nil, fmt.Errorf("at least one sink required")
	}
	queueSize := params.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	workers := params.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	timeout := params.SinkTimeout
	if timeout <= 0 {
		timeout = defaultSinkTimeout
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}

	e := &AsyncEmitter{
		logg:        params.Logger,
		sinks:       params.Sinks,
		metrics:     params.Metrics,
		sinkTimeout: timeout,
		now:         now,
		queue:       make(chan queued, queueSize),
	}
	e.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go e.work()
	}
	return e, nil
}

// Emit enqueues the event and returns immediately.
func (e *AsyncEmitter) Emit(ctx context.Context, eventType enums.EventType, userID string, metadata map[string]any) {
	if ctx == nil {
		ctx = context.Background()
	}
	event := newEvent(ctx, eventType, userID, metadata, e.now())

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		e.drop(ctx, event, "emitter closed")
		return
	}
	select {
	case e.queue <- queued{event: event, logCtx: context.WithoutCancel(ctx)}:
	default:
		e.drop(ctx, event, "event queue full")
	}
}

// Close stops accepting events and waits for queued ones to flush or ctx to end.
func (e *AsyncEmitter) Close(ctx context.Context) error {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.queue)
	}
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain analytics queue: %w", ctx.Err())
	}
}

func (e *AsyncEmitter) work() {
	defer e.wg.Done()
	for item := range e.queue {
		e.deliver(item)
	}
}

func (e *AsyncEmitter) deliver(item queued) {
	ctx := e.logg.WithFields(item.logCtx, map[string]any{
		"event_id":   item.event.ID.String(),
		"event_type": item.event.Type.String(),
	})

	var errs error
	for _, sink := range e.sinks {
		if err := e.write(ctx, sink, item.event); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	if errs != nil {
		for range multierr.Errors(errs) {
			e.metrics.IncFailed(item.event.Type.String())
		}
		e.logg.Error(ctx, "analytics event not recorded", errs)
		return
	}
	e.metrics.IncEmitted(item.event.Type.String())
}

func (e *AsyncEmitter) write(ctx context.Context, sink Sink, event Event) (err error) {
	sinkCtx, cancel := context.WithTimeout(ctx, e.sinkTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panic: %v", r)
		}
	}()
	return sink.Write(sinkCtx, event)
}

func (e *AsyncEmitter) drop(ctx context.Context, event Event, reason string) {
	e.metrics.IncDropped(event.Type.String())
	ctx = e.logg.WithFields(ctx, map[string]any{
		"event_type": event.Type.String(),
		"reason":     reason,
	})
	e.logg.Warn(ctx, "analytics event dropped")
}
