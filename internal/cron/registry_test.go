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

func TestRegistryKeepsOrderAndCopies(t *testing.T) {
	expiry := &stubJob{name: "discount-expiry"}
	retention := &stubJob{name: "outbox-retention"}
	registry, err := NewRegistry(expiry, nil, retention)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	jobs := registry.Jobs()
	if len(jobs) != 2 || jobs[0] != expiry || jobs[1] != retention {
		t.Fatalf("unexpected jobs %v", registry.Names())
	}
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatal("internal slice leaked")
	}
}

func TestRegistryRejectsDuplicateAndBlankNames(t *testing.T) {
	if _, err := NewRegistry(&stubJob{name: "discount-expiry"}, &stubJob{name: "discount-expiry"}); err == nil {
		t.Fatal("expected duplicate name to be rejected")
	}
	var registry Registry
	if err := registry.Register(&stubJob{name: "  "}); err == nil {
		t.Fatal("expected blank name to be rejected")
	}
}
