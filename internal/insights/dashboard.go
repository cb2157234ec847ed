package insights

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/catalog/internal/errs"
	"github.com/mmynk/catalog/internal/models"
	"github.com/mmynk/catalog/internal/storage"
)

const (
	recentReceiptsLimit   = 5
	upcomingRenewalsLimit = 5
)

// Dashboard is the home screen summary for one user.
type Dashboard struct {
	Currency             string
	TotalSpent           decimal.Decimal
	DailySpending        map[string]decimal.Decimal
	CurrencyDistribution map[string]decimal.Decimal
	// PercentChange compares this month's total with the snapshot taken one
	// month earlier, formatted like "+12.5%".
	PercentChange    string
	RecentReceipts   []*models.Receipt
	UpcomingRenewals []*models.Subscription
}

// Dashboard builds the summary from the Monthly snapshot.
func (a *Aggregator) Dashboard(ctx context.Context, userID, clientIP string) (*Dashboard, error) {
	current, err := a.Snapshot(ctx, userID, clientIP, models.PeriodMonthly)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly insights: %w", err)
	}

	today := a.Today()
	change := PercentChange(current.TotalSpent, decimal.Zero)
	baseline, err := a.store.LatestInsight(ctx, userID, models.PeriodMonthly, models.AddMonths(today, -1))
	switch {
	case err == nil:
		change = PercentChange(current.TotalSpent, baseline.TotalSpent)
	case !errors.Is(err, errs.ErrNotFound):
		return nil, err
	}

	recent, err := a.store.ListUserReceipts(ctx, userID, storage.ReceiptFilter{Limit: recentReceiptsLimit})
	if err != nil {
		return nil, err
	}
	upcoming, err := a.store.ListUpcomingRenewals(ctx, userID, today, upcomingRenewalsLimit)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Currency:             current.Currency,
		TotalSpent:           current.TotalSpent,
		DailySpending:        current.DailySpending,
		CurrencyDistribution: current.CurrencyDistribution,
		PercentChange:        change,
		RecentReceipts:       recent,
		UpcomingRenewals:     upcoming,
	}, nil
}

// PercentChange formats the relative change from previous to current with
// one decimal and an explicit sign. A zero baseline yields "0%".
func PercentChange(current, previous decimal.Decimal) string {
	if previous.IsZero() {
		return "0%"
	}
	pct := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100))
	return fmt.Sprintf("%+.1f%%", pct.InexactFloat64())
}
