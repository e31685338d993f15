package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/elarose/storefront/pkg/logger"
)

type fakeDiscountDeactivator struct {
	at   time.Time
	rows int64
	err  error
}

func (f *fakeDiscountDeactivator) DeactivateExhausted(_ context.Context, now time.Time) (int64, error) {
	f.at = now
	return f.rows, f.err
}

func TestDiscountExpiryJobPassesClock(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeDiscountDeactivator{rows: 3}
	job, err := NewDiscountExpiryJob(DiscountExpiryJobParams{
		Logger:    logger.Nop(),
		Discounts: repo,
		Now:       func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewDiscountExpiryJob: %v", err)
	}
	if job.Name() != "discount-expiry" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !repo.at.Equal(now) {
		t.Fatalf("expected sweep at %s, got %s", now, repo.at)
	}
}

func TestDiscountExpiryJobWrapsError(t *testing.T) {
	cause := errors.New("db down")
	job, err := NewDiscountExpiryJob(DiscountExpiryJobParams{
		Logger:    logger.Nop(),
		Discounts: &fakeDiscountDeactivator{err: cause},
	})
	if err != nil {
		t.Fatalf("NewDiscountExpiryJob: %v", err)
	}
	if err := job.Run(context.Background()); !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestDiscountExpiryJobRequiresRepository(t *testing.T) {
	if _, err := NewDiscountExpiryJob(DiscountExpiryJobParams{Logger: logger.Nop()}); err == nil {
		t.Fatal("expected error without repository")
	}
}
