package cron

import (
	"context"
	"fmt"

	"github.com/dmendezdev/partsmarket-backend/pkg/logger"
)

const quoteExpiryBatchLimit = 200

// QuoteExpiryJobParams configure the quote expiration sweep.
type QuoteExpiryJobParams struct {
	Logger     *logger.Logger
	Quotes     quoteExpirer
	BatchLimit int
}

type quoteExpirer interface {
	ExpireDue(ctx context.Context, limit int) (int, error)
}

// NewQuoteExpiryJob builds the job that moves sent quotes past their
// expiration date to expired.
func NewQuoteExpiryJob(params QuoteExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Quotes == nil {
		return nil, fmt.Errorf("quotes service required")
	}
	limit := params.BatchLimit
	if limit <= 0 {
		limit = quoteExpiryBatchLimit
	}
	return &quoteExpiryJob{
		logg:   params.Logger,
		quotes: params.Quotes,
		limit:  limit,
	}, nil
}

type quoteExpiryJob struct {
	logg   *logger.Logger
	quotes quoteExpirer
	limit  int
}

func (j *quoteExpiryJob) Name() string { return "quote-expiry" }

func (j *quoteExpiryJob) Run(ctx context.Context) error {
	expired, err := j.quotes.ExpireDue(ctx, j.limit)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"batch_limit":   j.limit,
		"quotes_closed": expired,
	})
	if err != nil {
		return fmt.Errorf("quote expiry: %w", err)
	}
	j.logg.Info(logCtx, "quote expiry sweep complete")
	return nil
}
