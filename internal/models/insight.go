package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/catalog/internal/errs"
)

// Period names a lookback window for spending snapshots.
type Period string

const (
	PeriodWeekly    Period = "Weekly"
	PeriodMonthly   Period = "Monthly"
	PeriodQuarterly Period = "Quarterly"
	PeriodYearly    Period = "Yearly"
)

// Periods lists every snapshot period in refresh order.
var Periods = []Period{PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly}

// ParsePeriod accepts any casing of the period names.
func ParsePeriod(s string) (Period, error) {
	for _, p := range Periods {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", errs.NewValidationError("invalid period %q: must be Weekly, Monthly, Quarterly or Yearly", s)
}

// FolderAmount is a folder's spend with the color used to render it.
type FolderAmount struct {
	Amount decimal.Decimal `json:"amount"`
	Color  string          `json:"color"`
}

// Insight is a spending snapshot for one user, period and day.
// (UserID, Period, Date) is unique; refreshing the same day overwrites it.
type Insight struct {
	ID       string
	UserID   string
	Period   Period
	Date     time.Time
	Currency string

	TotalSpent decimal.Decimal

	// DailySpending has one entry per date in the window, keyed YYYY-MM-DD.
	DailySpending map[string]decimal.Decimal

	// FolderSpending excludes the All folder.
	FolderSpending map[string]FolderAmount

	MerchantSpending      map[string]decimal.Decimal
	PaymentMethodSpending map[string]decimal.Decimal

	// CurrencyDistribution is the percentage of receipts per currency code.
	CurrencyDistribution map[string]decimal.Decimal

	UpdatedAt int64
}
