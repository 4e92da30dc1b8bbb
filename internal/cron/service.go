package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/bookverse-backend/pkg/logger"
	"github.com/angelmondragon/bookverse-backend/pkg/metrics"
)

const defaultInterval = 15 * time.Minute

// Lock coordinates exclusive cycles across cron worker replicas.
// pkg/redis.Lock satisfies it.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
}

// Service executes registered jobs on a fixed cadence while holding a
// cluster-wide lock.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  *metrics.CronJobMetrics
	interval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: interval,
	}, nil
}

// Run starts a cycle immediately and then every interval until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	ctx = s.logg.WithField(ctx, "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.logg.Error(ctx, "cron.cycle_failed", err)
		}
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron.stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce runs every registered job once while holding the cluster lock. The
// cycle is skipped when another replica holds it. Job failures are logged and
// counted but never returned.
func (s *Service) RunOnce(ctx context.Context) error {
	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire cron lock: %w", err)
	}
	if !locked {
		s.logg.Info(ctx, "cron.lock_busy")
		return nil
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logg.Error(ctx, "cron.lock_release_failed", err)
		}
	}()

	jobs := s.registry.Jobs()
	failed := 0
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		if err := s.runJob(ctx, job); err != nil {
			failed++
		}
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"jobs": len(jobs), "failed": failed}), "cron.cycle_finished")
	return nil
}

func (s *Service) runJob(ctx context.Context, job Job) (err error) {
	ctx = s.logg.WithField(ctx, "job", job.Name())
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("job panicked: %v", rec)
		}
		took := time.Since(start)
		s.metrics.Observe(job.Name(), took, err)

		ctx = s.logg.WithField(ctx, "duration_ms", took.Milliseconds())
		if err != nil {
			s.logg.Error(ctx, "cron.job_failed", err)
			return
		}
		s.logg.Info(ctx, "cron.job_finished")
	}()
	return job.Run(ctx)
}
