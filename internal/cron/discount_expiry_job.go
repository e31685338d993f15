package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/elarose/storefront/pkg/logger"
)

type discountDeactivator interface {
	DeactivateExhausted(ctx context.Context, now time.Time) (int64, error)
}

type DiscountExpiryJobParams struct {
	Logger    *logger.Logger
	Discounts discountDeactivator
	Now       func() time.Time
}

// NewDiscountExpiryJob switches off codes past their expiry or usage limit
// so admin listings of active codes stay accurate.
func NewDiscountExpiryJob(params DiscountExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Discounts == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &discountExpiryJob{logg: params.Logger, repo: params.Discounts, now: now}, nil
}

type discountExpiryJob struct {
	logg *logger.Logger
	repo discountDeactivator
	now  func() time.Time
}

func (j *discountExpiryJob) Name() string { return "discount-expiry" }

func (j *discountExpiryJob) Run(ctx context.Context) error {
	rows, err := j.repo.DeactivateExhausted(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("discount expiry: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "rows_deactivated", rows), "discount expiry sweep complete")
	return nil
}
