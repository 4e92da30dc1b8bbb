package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/bookverse-backend/pkg/logger"
	"github.com/angelmondragon/bookverse-backend/pkg/metrics"
)

type fakeLock struct {
	held       bool
	acquireErr error
	releases   int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.acquireErr != nil {
		return false, f.acquireErr
	}
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.releases++
	return nil
}

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func TestRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	success := &testJob{name: "success"}
	failure := &testJob{name: "fail", err: errors.New("boom")}
	lock := &fakeLock{}
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(success, failure),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if success.runs != 1 || failure.runs != 1 {
		t.Fatalf("expected each job once, got success=%d fail=%d", success.runs, failure.runs)
	}
	if lock.held || lock.releases != 1 {
		t.Fatalf("expected lock released once, held=%v releases=%d", lock.held, lock.releases)
	}
	if got := runsValue(t, reg, "fail", "failure"); got != 1 {
		t.Fatalf("expected one failure recorded, got %v", got)
	}
	if got := runsValue(t, reg, "success", "success"); got != 1 {
		t.Fatalf("expected one success recorded, got %v", got)
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "job"}
	service, _ := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(job),
		Lock:     &fakeLock{held: true},
	})
	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected job skipped, ran %d", job.runs)
	}
}

func TestRunOnceSurfacesLockErrors(t *testing.T) {
	service, _ := NewService(ServiceParams{
		Logger: logger.Nop(),
		Lock:   &fakeLock{acquireErr: errors.New("redis down")},
	})
	if err := service.RunOnce(context.Background()); err == nil {
		t.Fatal("expected lock acquire error")
	}
}

func TestNewServiceRequiresLock(t *testing.T) {
	if _, err := NewService(ServiceParams{Logger: logger.Nop()}); err == nil {
		t.Fatal("expected error without lock")
	}
	service, err := NewService(ServiceParams{Logger: logger.Nop(), Lock: &fakeLock{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if service.interval != defaultInterval {
		t.Fatalf("expected default interval, got %s", service.interval)
	}
}

func runsValue(t *testing.T, reg *prometheus.Registry, job, outcome string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "bookverse_cron_job_runs_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, label := range metric.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}
			if labels["job"] == job && labels["outcome"] == outcome {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

type panickingJob struct{}

func (panickingJob) Name() string              { return "explodes" }
func (panickingJob) Run(context.Context) error { panic("nil map") }

func TestRunOnceContainsJobPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	after := &testJob{name: "after"}
	service, _ := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(panickingJob{}, after),
		Lock:     &fakeLock{},
		Metrics:  metrics.NewCronJobMetrics(reg),
	})
	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if after.runs != 1 {
		t.Fatal("jobs after a panic should still run")
	}
	if got := runsValue(t, reg, "explodes", "failure"); got != 1 {
		t.Fatalf("expected panic counted as failure, got %v", got)
	}
}
