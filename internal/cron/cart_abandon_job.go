package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/dmendezdev/partsmarket-backend/pkg/logger"
)

const cartIdleDays = 7

// CartAbandonJobParams configure the stale cart sweep.
type CartAbandonJobParams struct {
	Logger   *logger.Logger
	Carts    cartAbandoner
	IdleDays int
}

type cartAbandoner interface {
	MarkAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewCartAbandonJob builds the job that flags active carts untouched for
// the idle window as abandoned.
func NewCartAbandonJob(params CartAbandonJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	idle := params.IdleDays
	if idle <= 0 {
		idle = cartIdleDays
	}
	return &cartAbandonJob{
		logg: params.Logger,
		repo: params.Carts,
		idle: idle,
		now:  time.Now,
	}, nil
}

type cartAbandonJob struct {
	logg *logger.Logger
	repo cartAbandoner
	idle int
	now  func() time.Time
}

func (j *cartAbandonJob) Name() string { return "cart-abandon" }

func (j *cartAbandonJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.idle) * 24 * time.Hour)
	abandoned, err := j.repo.MarkAbandonedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cart abandon: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":          cutoff,
		"idle_days":       j.idle,
		"carts_abandoned": abandoned,
	})
	j.logg.Info(logCtx, "stale cart sweep complete")
	return nil
}
