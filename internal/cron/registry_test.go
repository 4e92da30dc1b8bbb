package cron

import (
	"context"
	"testing"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndSkipsNil(t *testing.T) {
	jobA := &stubJob{name: "a"}
	jobB := &stubJob{name: "b"}
	registry := NewRegistry(jobA, nil)
	if err := registry.Register(nil); err != nil {
		t.Fatalf("nil registration should be ignored: %v", err)
	}
	if err := registry.Register(jobB); err != nil {
		t.Fatalf("register b: %v", err)
	}

	jobs := registry.Jobs()
	if len(jobs) != 2 || jobs[0] != jobA || jobs[1] != jobB {
		t.Fatalf("unexpected jobs %v", jobs)
	}
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("internal state leaked")
	}
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	registry := NewRegistry(&stubJob{name: "orphan-orders"})
	if err := registry.Register(&stubJob{name: "orphan-orders"}); err == nil {
		t.Fatal("expected duplicate name to fail")
	}
	if len(registry.Jobs()) != 1 {
		t.Fatalf("duplicate must not be added")
	}
}

func TestRegistrySelect(t *testing.T) {
	registry := NewRegistry(&stubJob{name: "a"}, &stubJob{name: "b"}, &stubJob{name: "c"})

	all, err := registry.Select(" ")
	if err != nil || len(all.Jobs()) != 3 {
		t.Fatalf("blank selection should keep every job, got %v err=%v", all, err)
	}

	picked, err := registry.Select("c, a")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	jobs := picked.Jobs()
	if len(jobs) != 2 || jobs[0].Name() != "c" || jobs[1].Name() != "a" {
		t.Fatalf("unexpected selection %v", jobs)
	}

	if _, err := registry.Select("a,missing"); err == nil {
		t.Fatal("expected unknown job to fail")
	}
}
