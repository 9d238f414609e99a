package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/dmendezdev/partsmarket-backend/pkg/db"
	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
	pkgerrors "github.com/dmendezdev/partsmarket-backend/pkg/errors"
	"github.com/dmendezdev/partsmarket-backend/pkg/outbox"
	"github.com/dmendezdev/partsmarket-backend/pkg/outbox/payloads"
	"github.com/dmendezdev/partsmarket-backend/pkg/pricing"
)

// maxQuoteNumberAttempts bounds the regenerate-on-conflict retry at build.
const maxQuoteNumberAttempts = 3

// Service owns quotation building and the quote lifecycle.
type Service interface {
	BuildQuote(ctx context.Context, storeID uuid.UUID, input BuildQuoteInput) (*QuoteDTO, error)
	GetQuote(ctx context.Context, storeID, quoteID uuid.UUID) (*QuoteDTO, error)
	GetQuoteByNumber(ctx context.Context, storeID uuid.UUID, number string) (*QuoteDTO, error)
	ListQuotes(ctx context.Context, storeID uuid.UUID, query ListQuery) (*QuoteListResult, error)
	Send(ctx context.Context, storeID, quoteID uuid.UUID) (*QuoteDTO, error)
	Approve(ctx context.Context, storeID, quoteID uuid.UUID) (*QuoteDTO, error)
	Reject(ctx context.Context, storeID, quoteID uuid.UUID) (*QuoteDTO, error)
	ExpireDue(ctx context.Context, limit int) (int, error)
}

// QuoteItemInput is one requested line. The unit price is never taken from
// the caller; it is derived from the store's current pricing at build time.
type QuoteItemInput struct {
	SKU         string
	Quantity    int
	DiscountPct *decimal.Decimal
	ItemNotes   *string
}

// BuildQuoteInput captures the prospective client and the requested lines.
type BuildQuoteInput struct {
	ClientName   string
	ClientEmail  string
	ClientPhone  *string
	CompanyName  *string
	CompanyTaxID *string
	Notes        *string
	Items        []QuoteItemInput
}

type service struct {
	repo       Repository
	storefront storefrontFinder
	tx         txRunner
	outbox     outboxEmitter
	seq        sequencer
	expiryDays int
	now        func() time.Time
}

// NewService constructs a quotes service instance.
func NewService(repo Repository, storefront storefrontFinder, tx txRunner, emitter outboxEmitter, seq sequencer, expiryDays int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quotes repository required")
	}
	if storefront == nil {
		return nil, fmt.Errorf("storefront finder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if seq == nil {
		return nil, fmt.Errorf("sequencer required")
	}
	if expiryDays < 1 {
		return nil, fmt.Errorf("quote expiry must be at least one day")
	}
	return &service{
		repo:       repo,
		storefront: storefront,
		tx:         tx,
		outbox:     emitter,
		seq:        seq,
		expiryDays: expiryDays,
		now:        time.Now,
	}, nil
}

// BuildQuote prices the requested lines against the store's current catalog
// and persists a draft quotation with a fresh QT number.
func (s *service) BuildQuote(ctx context.Context, storeID uuid.UUID, input BuildQuoteInput) (*QuoteDTO, error) {
	input.ClientName = strings.TrimSpace(input.ClientName)
	input.ClientEmail = strings.TrimSpace(input.ClientEmail)
	if input.ClientName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client name is required")
	}
	if input.ClientEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client email is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a quote needs at least one line")
	}

	lines, snapshots, err := s.priceLines(ctx, storeID, input.Items)
	if err != nil {
		return nil, err
	}
	totals := pricing.Aggregate(lines, decimal.Zero)

	now := s.now().UTC()
	var created *models.Quote
	for attempt := 0; attempt < maxQuoteNumberAttempts; attempt++ {
		seq, seqErr := s.seq.NextInSequence(ctx, quoteSequenceName(storeID, now), sequenceTTL)
		if seqErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, seqErr, "redis: quote sequence")
		}
		number := quoteNumber(now, seq)

		txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			quote := &models.Quote{
				StoreID:        storeID,
				QuoteNumber:    number,
				ClientName:     input.ClientName,
				ClientEmail:    input.ClientEmail,
				ClientPhone:    input.ClientPhone,
				CompanyName:    input.CompanyName,
				CompanyTaxID:   input.CompanyTaxID,
				Status:         enums.QuoteStatusDraft,
				Subtotal:       totals.Subtotal,
				TaxAmount:      totals.TaxTotal,
				DiscountAmount: totals.DiscountTotal,
				TotalAmount:    totals.GrandTotal,
				Currency:       enums.DefaultCurrency,
				QuoteDate:      now,
				ExpirationDate: now.AddDate(0, 0, s.expiryDays),
				Notes:          input.Notes,
			}
			if _, createErr := repo.CreateQuote(ctx, quote); createErr != nil {
				return createErr
			}
			items := buildQuoteLines(quote.ID, lines, snapshots, input.Items)
			if lineErr := repo.CreateLineItems(ctx, items); lineErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, lineErr, "db: insert quote lines")
			}
			quote.Items = items

			if emitErr := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventQuoteCreated,
				AggregateType: enums.AggregateQuote,
				AggregateID:   quote.ID,
				Actor:         &outbox.ActorRef{StoreID: storeID},
				Data: payloads.QuoteCreatedEvent{
					QuoteID:     quote.ID,
					StoreID:     storeID,
					QuoteNumber: quote.QuoteNumber,
					TotalAmount: quote.TotalAmount,
					ItemCount:   len(items),
				},
			}); emitErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, emitErr, "emit quote_created")
			}

			created = quote
			return nil
		})
		if txErr == nil {
			return NewQuoteDTO(created), nil
		}
		if db.IsUniqueViolation(txErr, "ux_quotes_store_number") {
			continue
		}
		var typed *pkgerrors.Error
		if errors.As(txErr, &typed) {
			return nil, txErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "build quote transaction")
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a quote number")
}

// GetQuote loads one quote with its lines.
func (s *service) GetQuote(ctx context.Context, storeID, quoteID uuid.UUID) (*QuoteDTO, error) {
	quote, err := s.findQuote(ctx, storeID, quoteID)
	if err != nil {
		return nil, err
	}
	return NewQuoteDTO(quote), nil
}

// GetQuoteByNumber loads one quote by its customer-facing number.
func (s *service) GetQuoteByNumber(ctx context.Context, storeID uuid.UUID, number string) (*QuoteDTO, error) {
	quote, err := s.repo.FindQuoteByNumber(ctx, storeID, strings.TrimSpace(number))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
	}
	return NewQuoteDTO(quote), nil
}

// ListQuotes returns one page of the store's quotes.
func (s *service) ListQuotes(ctx context.Context, storeID uuid.UUID, query ListQuery) (*QuoteListResult, error) {
	rows, next, err := s.repo.List(ctx, storeID, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quotes")
	}
	dtos := make([]QuoteDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewQuoteDTO(&rows[i]))
	}
	return &QuoteListResult{Quotes: dtos, NextCursor: next}, nil
}

// Send moves a draft to sent and stamps sent_at. Sending an already-sent
// quote is a no-op.
func (s *service) Send(ctx context.Context, storeID, quoteID uuid.UUID) (*QuoteDTO, error) {
	return s.transition(ctx, storeID, quoteID, enums.QuoteStatusDraft, enums.QuoteStatusSent, "sent_at")
}

// Approve records the client's acceptance of a sent quote.
func (s *service) Approve(ctx context.Context, storeID, quoteID uuid.UUID) (*QuoteDTO, error) {
	return s.transition(ctx, storeID, quoteID, enums.QuoteStatusSent, enums.QuoteStatusApproved, "decided_at")
}

// Reject records the client's refusal of a sent quote.
func (s *service) Reject(ctx context.Context, storeID, quoteID uuid.UUID) (*QuoteDTO, error) {
	return s.transition(ctx, storeID, quoteID, enums.QuoteStatusSent, enums.QuoteStatusRejected, "decided_at")
}

// ExpireDue sweeps sent quotes whose expiration date has passed, moving each
// to expired and emitting quote_expired. It returns how many quotes it
// expired; rows another writer decided concurrently are skipped, not errors.
func (s *service) ExpireDue(ctx context.Context, limit int) (int, error) {
	if limit < 1 {
		limit = 100
	}
	now := s.now().UTC()
	due, err := s.repo.ListExpirable(ctx, now, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expirable quotes")
	}

	var expired int
	var errs error
	for i := range due {
		quote := &due[i]
		txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			if updErr := s.repo.WithTx(tx).UpdateQuoteIfStatus(ctx, quote.ID, enums.QuoteStatusSent,
				map[string]any{"status": enums.QuoteStatusExpired}); updErr != nil {
				return updErr
			}
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventQuoteExpired,
				AggregateType: enums.AggregateQuote,
				AggregateID:   quote.ID,
				Actor:         &outbox.ActorRef{StoreID: quote.StoreID},
				Data: payloads.QuoteStatusChangedEvent{
					QuoteID:     quote.ID,
					StoreID:     quote.StoreID,
					QuoteNumber: quote.QuoteNumber,
					FromStatus:  enums.QuoteStatusSent,
					ToStatus:    enums.QuoteStatusExpired,
					ChangedAt:   now,
				},
			})
		})
		switch {
		case txErr == nil:
			expired++
		case errors.Is(txErr, gorm.ErrRecordNotFound):
			// Decided between the sweep query and this write.
		default:
			errs = multierr.Append(errs, fmt.Errorf("expire quote %s: %w", quote.QuoteNumber, txErr))
		}
	}
	return expired, errs
}

func (s *service) transition(ctx context.Context, storeID, quoteID uuid.UUID, from, to enums.QuoteStatus, stampColumn string) (*QuoteDTO, error) {
	quote, err := s.findQuote(ctx, storeID, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Status == to {
		return NewQuoteDTO(quote), nil
	}
	if quote.Status != from {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move quote from %s to %s", quote.Status, to))
	}

	now := s.now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if updErr := s.repo.WithTx(tx).UpdateQuoteIfStatus(ctx, quote.ID, from,
			map[string]any{"status": to, stampColumn: now}); updErr != nil {
			if errors.Is(updErr, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeConflict, "quote was modified by another request")
			}
			return updErr
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQuoteStatusChanged,
			AggregateType: enums.AggregateQuote,
			AggregateID:   quote.ID,
			Actor:         &outbox.ActorRef{StoreID: storeID},
			Data: payloads.QuoteStatusChangedEvent{
				QuoteID:     quote.ID,
				StoreID:     storeID,
				QuoteNumber: quote.QuoteNumber,
				FromStatus:  quote.Status,
				ToStatus:    to,
				ChangedAt:   now,
			},
		})
	})
	if err != nil {
		var typed *pkgerrors.Error
		if errors.As(err, &typed) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update quote status")
	}
	return s.GetQuote(ctx, storeID, quoteID)
}

func (s *service) findQuote(ctx context.Context, storeID, quoteID uuid.UUID) (*models.Quote, error) {
	quote, err := s.repo.FindQuote(ctx, storeID, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
	}
	return quote, nil
}

// priceLines resolves each requested SKU against the store's storefront and
// derives the line amounts from the effective price.
func (s *service) priceLines(ctx context.Context, storeID uuid.UUID, items []QuoteItemInput) ([]pricing.LineAmounts, []models.Product, error) {
	lines := make([]pricing.LineAmounts, 0, len(items))
	snapshots := make([]models.Product, 0, len(items))
	seen := make(map[string]bool, len(items))

	for _, item := range items {
		sku := strings.TrimSpace(item.SKU)
		if sku == "" {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "line sku is required")
		}
		if seen[sku] {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("duplicate line for %s", sku))
		}
		seen[sku] = true

		row, err := s.storefront.FindStorefrontProduct(ctx, storeID, sku)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound,
					fmt.Sprintf("product %s not available in store", sku))
			}
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load storefront product")
		}

		unit := pricing.EffectivePrice(row.Product.BasePrice, &pricing.Overlay{
			CustomPrice:     row.Config.CustomPrice,
			CustomProfitPct: row.Config.CustomProfitPct,
		})
		var line pricing.LineAmounts
		if item.DiscountPct != nil {
			line, err = pricing.ComputeLinePct(unit, item.Quantity, *item.DiscountPct)
		} else {
			line, err = pricing.ComputeLine(unit, item.Quantity, decimal.Zero)
		}
		if err != nil {
			return nil, nil, err
		}
		lines = append(lines, line)
		snapshots = append(snapshots, row.Product)
	}
	return lines, snapshots, nil
}

func buildQuoteLines(quoteID uuid.UUID, lines []pricing.LineAmounts, snapshots []models.Product, inputs []QuoteItemInput) []models.QuoteLineItem {
	items := make([]models.QuoteLineItem, 0, len(lines))
	for i, line := range lines {
		items = append(items, models.QuoteLineItem{
			QuoteID:        quoteID,
			ProductSKU:     snapshots[i].SKU,
			ProductName:    snapshots[i].Name,
			ProductBrand:   snapshots[i].Brand,
			UnitPrice:      line.UnitPrice,
			Quantity:       line.Quantity,
			DiscountAmount: line.DiscountAmount,
			TaxRate:        line.TaxRate,
			TaxAmount:      line.TaxAmount,
			TotalPrice:     line.TotalPrice,
			ItemNotes:      inputs[i].ItemNotes,
		})
	}
	return items
}
