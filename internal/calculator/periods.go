package calculator

import (
	"time"

	"github.com/mmynk/catalog/internal/models"
)

// Window is a snapshot period with its first day. Every window ends today.
type Window struct {
	Period models.Period
	Start  time.Time
}

// SpendingPeriods returns the four lookback windows anchored to today.
// Quarterly starts on the first day of the current calendar quarter rather
// than three months back.
func SpendingPeriods(today time.Time) []Window {
	today = models.DateOf(today)
	quarterMonth := time.Month((int(today.Month())-1)/3*3 + 1)
	return []Window{
		{Period: models.PeriodWeekly, Start: today.AddDate(0, 0, -7)},
		{Period: models.PeriodMonthly, Start: models.AddMonths(today, -1)},
		{Period: models.PeriodQuarterly, Start: time.Date(today.Year(), quarterMonth, 1, 0, 0, 0, 0, time.UTC)},
		{Period: models.PeriodYearly, Start: models.AddMonths(today, -12)},
	}
}

// EarliestStart returns the earliest start among windows.
func EarliestStart(windows []Window) time.Time {
	var earliest time.Time
	for i, w := range windows {
		if i == 0 || w.Start.Before(earliest) {
			earliest = w.Start
		}
	}
	return earliest
}
