package cron

import (
	"context"
	"fmt"
	"strings"
)

// Job is a scheduled task run by the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds jobs by unique name and runs them in registration order.
type Registry struct {
	names  []string
	byName map[string]Job
}

// NewRegistry registers jobs in order. Nil jobs and repeated names are skipped.
func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{byName: make(map[string]Job, len(jobs))}
	for _, job := range jobs {
		_ = r.Register(job)
	}
	return r
}

// Register adds job. Registering nil is a no-op; a name already taken fails.
func (r *Registry) Register(job Job) error {
	if job == nil {
		return nil
	}
	name := job.Name()
	if _, taken := r.byName[name]; taken {
		return fmt.Errorf("cron job %q already registered", name)
	}
	r.names = append(r.names, name)
	r.byName[name] = job
	return nil
}

// Jobs returns the jobs in registration order.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, 0, len(r.names))
	for _, name := range r.names {
		jobs = append(jobs, r.byName[name])
	}
	return jobs
}

// Select narrows the registry to a comma-separated list of job names. An
// empty list keeps every job.
func (r *Registry) Select(list string) (*Registry, error) {
	if strings.TrimSpace(list) == "" {
		return r, nil
	}
	selected := NewRegistry()
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		job, ok := r.byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown cron job %q", name)
		}
		if err := selected.Register(job); err != nil {
			return nil, err
		}
	}
	return selected, nil
}
