// Package insights recomputes the per-user spending snapshots and derives
// the dashboard summary from them.
package insights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/catalog/internal/calculator"
	"github.com/mmynk/catalog/internal/errs"
	"github.com/mmynk/catalog/internal/metrics"
	"github.com/mmynk/catalog/internal/models"
	"github.com/mmynk/catalog/internal/storage"
)

// Converter supplies display currencies and exchange rates. Implementations
// never fail; they fall back to USD and a rate of 1.
type Converter interface {
	DisplayCurrency(ctx context.Context, ip string) string
	Rate(ctx context.Context, from, to string) decimal.Decimal
}

// Aggregator recomputes spending snapshots from scratch on every refresh.
type Aggregator struct {
	store     storage.Store
	converter Converter
	now       func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock overrides the clock used to decide what "today" is.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// NewAggregator creates an Aggregator.
func NewAggregator(store storage.Store, converter Converter, opts ...Option) *Aggregator {
	a := &Aggregator{store: store, converter: converter, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Today returns the aggregator's current date in UTC.
func (a *Aggregator) Today() time.Time {
	return models.DateOf(a.now())
}

// Refresh recomputes and upserts the Weekly, Monthly, Quarterly and Yearly
// snapshots of a user's personal receipts for today. clientIP picks the
// display currency; an empty IP means USD. Unknown users are ignored.
func (a *Aggregator) Refresh(ctx context.Context, userID, clientIP string) error {
	start := time.Now()
	err := a.refresh(ctx, userID, clientIP)
	metrics.InsightRefreshDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.InsightRefreshes.WithLabelValues("error").Inc()
		return err
	}
	metrics.InsightRefreshes.WithLabelValues("ok").Inc()
	return nil
}

func (a *Aggregator) refresh(ctx context.Context, userID, clientIP string) error {
	if _, err := a.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			slog.Debug("Skipping insights refresh for unknown user", "user_id", userID)
			return nil
		}
		return err
	}

	display := models.DefaultCurrency
	if clientIP != "" {
		display = a.converter.DisplayCurrency(ctx, clientIP)
	}
	today := a.Today()
	windows := calculator.SpendingPeriods(today)

	entries, err := a.loadEntries(ctx, userID, display, calculator.EarliestStart(windows))
	if err != nil {
		return err
	}

	snapshots := make([]*models.Insight, 0, len(windows))
	for _, w := range windows {
		s := calculator.Summarize(entries, w.Start, today)
		snapshots = append(snapshots, &models.Insight{
			UserID:                userID,
			Period:                w.Period,
			Date:                  today,
			Currency:              display,
			TotalSpent:            s.Total,
			DailySpending:         s.Daily,
			FolderSpending:        s.Folders,
			MerchantSpending:      s.Merchants,
			PaymentMethodSpending: s.PaymentMethods,
			CurrencyDistribution:  s.Currencies,
		})
	}

	err = a.store.WithTx(ctx, func(q storage.Querier) error {
		for _, in := range snapshots {
			if err := q.UpsertInsight(ctx, in); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save insights: %w", err)
	}

	slog.Info("Insights refreshed", "user_id", userID, "currency", display, "receipts", len(entries))
	return nil
}

// loadEntries reads personal receipts dated on or after since, future dates
// included, and converts each amount into the display currency, rounded to
// cents.
func (a *Aggregator) loadEntries(ctx context.Context, userID, display string, since time.Time) ([]calculator.Entry, error) {
	receipts, err := a.store.ListUserReceipts(ctx, userID, storage.ReceiptFilter{Since: since})
	if err != nil {
		return nil, fmt.Errorf("failed to load receipts: %w", err)
	}
	folders, err := a.store.ListFolders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load folders: %w", err)
	}
	colors := make(map[string]string, len(folders))
	for _, f := range folders {
		colors[f.ID] = f.Color
	}

	rates, err := a.rates(ctx, receipts, display)
	if err != nil {
		return nil, err
	}

	entries := make([]calculator.Entry, 0, len(receipts))
	for _, r := range receipts {
		amount := r.TotalAmount
		if rate, ok := rates[r.Currency]; ok {
			amount = models.RoundMoney(amount.Mul(rate))
		}
		entries = append(entries, calculator.Entry{
			Date:          r.Date,
			Merchant:      r.Merchant,
			Folder:        r.FolderName,
			FolderColor:   colors[r.FolderID],
			PaymentMethod: string(r.PaymentMethod),
			Currency:      r.Currency,
			Amount:        amount,
		})
	}
	return entries, nil
}

// rates looks up every foreign currency once, concurrently. Currencies equal
// to display are left out and need no conversion. Lookups never fail on their
// own, but a canceled context aborts the refresh instead of saving snapshots
// built from fallback rates.
func (a *Aggregator) rates(ctx context.Context, receipts []*models.Receipt, display string) (map[string]decimal.Decimal, error) {
	var mu sync.Mutex
	rates := make(map[string]decimal.Decimal)
	seen := make(map[string]bool)

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range receipts {
		code := r.Currency
		if code == display || seen[code] {
			continue
		}
		seen[code] = true
		g.Go(func() error {
			rate := a.converter.Rate(gctx, code, display)
			if err := gctx.Err(); err != nil {
				return err
			}
			mu.Lock()
			rates[code] = rate
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to resolve exchange rates: %w", err)
	}
	return rates, nil
}

// Snapshot returns today's snapshot for a period, refreshing first when none
// has been computed today.
func (a *Aggregator) Snapshot(ctx context.Context, userID, clientIP string, period models.Period) (*models.Insight, error) {
	today := a.Today()
	in, err := a.store.LatestInsight(ctx, userID, period, today)
	if err == nil && in.Date.Equal(today) {
		return in, nil
	}
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	if err := a.Refresh(ctx, userID, clientIP); err != nil {
		return nil, err
	}
	return a.store.LatestInsight(ctx, userID, period, today)
}
