package calculator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/catalog/internal/models"
)

func date(s string) time.Time {
	t, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestTotalSpendingIsDense(t *testing.T) {
	start, end := date("2024-02-25"), date("2024-03-03")
	entries := []Entry{
		{Date: date("2024-02-29"), Amount: d("12.50")},
		{Date: date("2024-02-29"), Amount: d("7.50")},
		{Date: date("2024-03-05"), Amount: d("99.00")}, // outside window
	}

	daily := TotalSpending(entries, start, end)
	if len(daily) != 8 {
		t.Fatalf("got %d days, want 8", len(daily))
	}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if _, ok := daily[models.FormatDate(day)]; !ok {
			t.Errorf("missing date %s", models.FormatDate(day))
		}
	}
	if !daily["2024-02-29"].Equal(d("20.00")) {
		t.Errorf("2024-02-29 = %s, want 20.00", daily["2024-02-29"])
	}
	if !daily["2024-03-01"].IsZero() {
		t.Errorf("2024-03-01 = %s, want 0", daily["2024-03-01"])
	}
}

func TestSummarize(t *testing.T) {
	today := date("2024-05-10")
	entries := []Entry{
		{Date: date("2024-05-09"), Merchant: "Cafe", Folder: "Food", FolderColor: "#FF0000", PaymentMethod: "Credit", Currency: "USD", Amount: d("50.00")},
		{Date: date("2024-05-10"), Merchant: "cafe", Folder: models.DefaultFolderName, FolderColor: models.DefaultFolderColor, PaymentMethod: "Cash", Currency: "CAD", Amount: d("36.50")},
		{Date: date("2024-05-08"), Merchant: "Cafe", Folder: "Food", FolderColor: "#FF0000", Currency: "EUR", Amount: d("10.00")},
		{Date: date("2024-01-01"), Merchant: "Old", Currency: "USD", Amount: d("1000.00")},
	}

	s := Summarize(entries, today.AddDate(0, 0, -7), today)

	if !s.Total.Equal(d("96.50")) {
		t.Errorf("Total = %s, want 96.50", s.Total)
	}
	if _, ok := s.Folders[models.DefaultFolderName]; ok {
		t.Error("All folder must not appear in folder spending")
	}
	if food := s.Folders["Food"]; !food.Amount.Equal(d("60.00")) || food.Color != "#FF0000" {
		t.Errorf("Food = %+v, want 60.00 #FF0000", food)
	}
	if !s.Merchants["Cafe"].Equal(d("60.00")) || !s.Merchants["cafe"].Equal(d("36.50")) {
		t.Errorf("merchants are matched case-sensitively, got %v", s.Merchants)
	}
	if !s.PaymentMethods[UnspecifiedPaymentMethod].Equal(d("10.00")) {
		t.Errorf("unspecified payment method = %s, want 10.00", s.PaymentMethods[UnspecifiedPaymentMethod])
	}
	if _, ok := s.Merchants["Old"]; ok {
		t.Error("entries outside the window must be excluded")
	}

	sum := decimal.Zero
	for _, pct := range s.Currencies {
		sum = sum.Add(pct)
	}
	if sum.Sub(hundred).Abs().GreaterThan(d("0.1")) {
		t.Errorf("currency distribution sums to %s, want ~100", sum)
	}
	if !s.Currencies["USD"].Equal(d("33.33")) {
		t.Errorf("USD share = %s, want 33.33", s.Currencies["USD"])
	}
}

func TestSummarizeFutureEntries(t *testing.T) {
	today := date("2024-05-10")
	entries := []Entry{
		{Date: date("2024-05-09"), Merchant: "Cafe", PaymentMethod: "Cash", Currency: "USD", Amount: d("5.00")},
		{Date: date("2024-05-13"), Merchant: "Preorder", Folder: "Games", FolderColor: "#00FF00", PaymentMethod: "Credit", Currency: "EUR", Amount: d("60.00")},
	}

	s := Summarize(entries, today.AddDate(0, 0, -7), today)

	if !s.Total.Equal(d("5.00")) {
		t.Errorf("Total = %s, want 5.00 (daily series stops at today)", s.Total)
	}
	if _, ok := s.Daily["2024-05-13"]; ok {
		t.Error("daily series must not extend past today")
	}
	if !s.Merchants["Preorder"].Equal(d("60.00")) {
		t.Errorf("Preorder = %s, want 60.00", s.Merchants["Preorder"])
	}
	if !s.PaymentMethods["Credit"].Equal(d("60.00")) {
		t.Errorf("Credit = %s, want 60.00", s.PaymentMethods["Credit"])
	}
	if games := s.Folders["Games"]; !games.Amount.Equal(d("60.00")) {
		t.Errorf("Games = %+v, want 60.00", games)
	}
	if !s.Currencies["EUR"].Equal(d("50")) {
		t.Errorf("EUR share = %s, want 50", s.Currencies["EUR"])
	}
}

func TestCurrencyDistributionEmpty(t *testing.T) {
	if got := CurrencyDistribution(nil); len(got) != 0 {
		t.Errorf("CurrencyDistribution(nil) = %v, want empty", got)
	}
}

func TestSpendingPeriods(t *testing.T) {
	tests := []struct {
		today string
		want  map[models.Period]string
	}{
		{
			today: "2024-05-15",
			want: map[models.Period]string{
				models.PeriodWeekly:    "2024-05-08",
				models.PeriodMonthly:   "2024-04-15",
				models.PeriodQuarterly: "2024-04-01",
				models.PeriodYearly:    "2023-05-15",
			},
		},
		{
			today: "2024-03-31",
			want: map[models.Period]string{
				models.PeriodWeekly:    "2024-03-24",
				models.PeriodMonthly:   "2024-02-29",
				models.PeriodQuarterly: "2024-01-01",
				models.PeriodYearly:    "2023-03-31",
			},
		},
		{
			today: "2024-02-29",
			want: map[models.Period]string{
				models.PeriodWeekly:    "2024-02-22",
				models.PeriodMonthly:   "2024-01-29",
				models.PeriodQuarterly: "2024-01-01",
				models.PeriodYearly:    "2023-02-28",
			},
		},
		{
			today: "2024-12-01",
			want: map[models.Period]string{
				models.PeriodWeekly:    "2024-11-24",
				models.PeriodMonthly:   "2024-11-01",
				models.PeriodQuarterly: "2024-10-01",
				models.PeriodYearly:    "2023-12-01",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.today, func(t *testing.T) {
			windows := SpendingPeriods(date(tt.today))
			if len(windows) != 4 {
				t.Fatalf("got %d windows, want 4", len(windows))
			}
			for _, w := range windows {
				if got := models.FormatDate(w.Start); got != tt.want[w.Period] {
					t.Errorf("%s start = %s, want %s", w.Period, got, tt.want[w.Period])
				}
			}
			if got := models.FormatDate(EarliestStart(windows)); got != tt.want[models.PeriodYearly] {
				t.Errorf("EarliestStart = %s, want %s", got, tt.want[models.PeriodYearly])
			}
		})
	}
}
