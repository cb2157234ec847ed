package calculator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/catalog/internal/models"
)

// UnspecifiedPaymentMethod keys receipts saved without a payment method.
const UnspecifiedPaymentMethod = "Unspecified"

// Entry is one personal receipt with its amount already converted to the
// display currency and rounded to cents.
type Entry struct {
	Date          time.Time
	Merchant      string
	Folder        string
	FolderColor   string
	PaymentMethod string
	Currency      string // native currency, used for distribution
	Amount        decimal.Decimal
}

// Summary is every breakdown of one window.
type Summary struct {
	Total          decimal.Decimal
	Daily          map[string]decimal.Decimal
	Folders        map[string]models.FolderAmount
	Merchants      map[string]decimal.Decimal
	PaymentMethods map[string]decimal.Decimal
	Currencies     map[string]decimal.Decimal
}

// Summarize computes every breakdown of the window starting at start. The
// daily series, and with it Total, covers [start, end]; the other breakdowns
// include every entry dated on or after start, future-dated ones too.
func Summarize(entries []Entry, start, end time.Time) Summary {
	daily := TotalSpending(entries, start, end)
	total := decimal.Zero
	for _, amount := range daily {
		total = total.Add(amount)
	}
	in := OnOrAfter(entries, start)
	return Summary{
		Total:          total,
		Daily:          daily,
		Folders:        FolderSpending(in),
		Merchants:      MerchantSpending(in),
		PaymentMethods: PaymentMethodSpending(in),
		Currencies:     CurrencyDistribution(in),
	}
}

// OnOrAfter returns the entries dated on or after start.
func OnOrAfter(entries []Entry, start time.Time) []Entry {
	start = models.DateOf(start)
	var out []Entry
	for _, e := range entries {
		if models.DateOf(e.Date).Before(start) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// TotalSpending returns one entry per calendar date in [start, end], keyed
// YYYY-MM-DD, with zero for dates without receipts.
func TotalSpending(entries []Entry, start, end time.Time) map[string]decimal.Decimal {
	start, end = models.DateOf(start), models.DateOf(end)
	daily := make(map[string]decimal.Decimal)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		daily[models.FormatDate(d)] = decimal.Zero
	}
	for _, e := range entries {
		key := models.FormatDate(models.DateOf(e.Date))
		if current, ok := daily[key]; ok {
			daily[key] = current.Add(e.Amount)
		}
	}
	return daily
}

// FolderSpending sums amounts per folder name, skipping the All folder.
func FolderSpending(entries []Entry) map[string]models.FolderAmount {
	folders := make(map[string]models.FolderAmount)
	for _, e := range entries {
		if e.Folder == "" || e.Folder == models.DefaultFolderName {
			continue
		}
		fa := folders[e.Folder]
		fa.Amount = fa.Amount.Add(e.Amount)
		fa.Color = e.FolderColor
		folders[e.Folder] = fa
	}
	return folders
}

// MerchantSpending sums amounts per merchant name. Names are matched exactly.
func MerchantSpending(entries []Entry) map[string]decimal.Decimal {
	return sumBy(entries, func(e Entry) string { return e.Merchant })
}

// PaymentMethodSpending sums amounts per payment method.
func PaymentMethodSpending(entries []Entry) map[string]decimal.Decimal {
	return sumBy(entries, func(e Entry) string {
		if e.PaymentMethod == "" {
			return UnspecifiedPaymentMethod
		}
		return e.PaymentMethod
	})
}

// CurrencyDistribution returns the percentage of entries per native currency,
// by count rather than amount, rounded to 2 places.
func CurrencyDistribution(entries []Entry) map[string]decimal.Decimal {
	dist := make(map[string]decimal.Decimal)
	if len(entries) == 0 {
		return dist
	}
	counts := make(map[string]int64)
	for _, e := range entries {
		counts[e.Currency]++
	}
	n := decimal.NewFromInt(int64(len(entries)))
	for code, c := range counts {
		dist[code] = Percentage(decimal.NewFromInt(c), n)
	}
	return dist
}

func sumBy(entries []Entry, key func(Entry) string) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, e := range entries {
		k := key(e)
		sums[k] = sums[k].Add(e.Amount)
	}
	return sums
}
