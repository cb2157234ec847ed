package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/catalog/internal/errs"
)

var today = time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

func TestNewReceiptOwner(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		groupID string
		total   string
		wantErr bool
	}{
		{name: "personal receipt", userID: "u1", total: "12.00"},
		{name: "group receipt", groupID: "g1", total: "12.00"},
		{name: "personal receipt may be zero", userID: "u1", total: "0"},
		{name: "both owners", userID: "u1", groupID: "g1", total: "12.00", wantErr: true},
		{name: "no owner", total: "12.00", wantErr: true},
		{name: "group receipt must be positive", groupID: "g1", total: "0", wantErr: true},
		{name: "negative total", userID: "u1", total: "-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReceipt(ReceiptParams{
				UserID:      tt.userID,
				GroupID:     tt.groupID,
				Merchant:    "Store",
				TotalAmount: decimal.RequireFromString(tt.total),
				Currency:    "usd",
				Date:        today,
			})
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewReceipt() expected error, got nil")
				}
				if !errs.IsValidation(err) {
					t.Errorf("NewReceipt() error = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewReceipt() unexpected error: %v", err)
			}
			if r.Currency != "USD" {
				t.Errorf("Currency = %q, want USD", r.Currency)
			}
		})
	}
}

func TestNewReceiptCollectsProblems(t *testing.T) {
	_, err := NewReceipt(ReceiptParams{
		UserID:        "u1",
		Currency:      "dollars",
		PaymentMethod: "cheque",
		Items:         []Item{{Name: "", Price: decimal.NewFromInt(1), Quantity: 0}},
	})
	ve, ok := err.(*errs.ValidationErrors)
	if !ok {
		t.Fatalf("error type = %T, want *errs.ValidationErrors", err)
	}
	// merchant, currency, date, payment method, item name, item quantity
	if len(ve.Errors) != 6 {
		t.Errorf("got %d problems, want 6: %v", len(ve.Errors), err)
	}
}

func TestParsePaymentMethod(t *testing.T) {
	for _, in := range []string{"credit", "CREDIT", " Credit "} {
		pm, err := ParsePaymentMethod(in)
		if err != nil || pm != PaymentCredit {
			t.Errorf("ParsePaymentMethod(%q) = %q, %v", in, pm, err)
		}
	}
	if _, err := ParsePaymentMethod("bitcoin"); err == nil {
		t.Error("ParsePaymentMethod(bitcoin) expected error")
	}
}

func TestReceiptUpdateApply(t *testing.T) {
	r, err := NewReceipt(ReceiptParams{
		UserID: "u1", Merchant: "Store", TotalAmount: decimal.NewFromInt(10),
		Currency: "USD", Date: today, Items: []Item{{Name: "a", Price: decimal.NewFromInt(10), Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("NewReceipt() unexpected error: %v", err)
	}

	bad := "X"
	if err := (ReceiptUpdate{Currency: &bad}).Apply(r); err == nil {
		t.Fatal("Apply() expected error for invalid currency")
	}
	if r.Currency != "USD" {
		t.Errorf("receipt mutated on failed update: currency = %q", r.Currency)
	}

	merchant := "Market"
	items := []Item{{Name: "b", Price: decimal.NewFromInt(3), Quantity: 2}}
	if err := (ReceiptUpdate{Merchant: &merchant, Items: &items}).Apply(r); err != nil {
		t.Fatalf("Apply() unexpected error: %v", err)
	}
	if r.Merchant != "Market" || len(r.Items) != 1 || r.Items[0].Name != "b" {
		t.Errorf("Apply() = %+v, want merchant Market with items replaced", r)
	}
}

func TestSubscription(t *testing.T) {
	_, err := NewSubscription(SubscriptionParams{
		UserID: "u1", GroupID: "g1", Merchant: "Netflix", TotalAmount: decimal.NewFromInt(15),
		Currency: "USD", RenewalDate: today, BillingPeriod: "Monthly",
	})
	if !errs.IsValidation(err) {
		t.Errorf("NewSubscription() with two owners error = %v, want validation error", err)
	}

	tests := []struct {
		period string
		from   string
		want   string
	}{
		{"Daily", "2024-05-31", "2024-06-01"},
		{"Weekly", "2024-05-31", "2024-06-07"},
		{"Monthly", "2024-01-31", "2024-02-29"},
		{"Yearly", "2024-02-29", "2025-02-28"},
		{"Custom", "2024-05-31", "2024-05-31"},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			from, _ := ParseDate(tt.from)
			s, err := NewSubscription(SubscriptionParams{
				UserID: "u1", Merchant: "Gym", TotalAmount: decimal.NewFromInt(30),
				Currency: "EUR", RenewalDate: from, BillingPeriod: tt.period,
			})
			if err != nil {
				t.Fatalf("NewSubscription() unexpected error: %v", err)
			}
			if got := FormatDate(s.NextRenewal()); got != tt.want {
				t.Errorf("NextRenewal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFolderRules(t *testing.T) {
	if _, err := NewFolder("u1", "all", ""); err == nil {
		t.Error("NewFolder(all) expected error")
	}
	f, err := NewFolder("u1", " Food ", "")
	if err != nil {
		t.Fatalf("NewFolder() unexpected error: %v", err)
	}
	if f.Name != "Food" || f.Color != DefaultFolderColor {
		t.Errorf("NewFolder() = %+v", f)
	}

	name := "Groceries"
	if err := (FolderUpdate{Name: &name}).Apply(DefaultFolder("u1")); err == nil {
		t.Error("renaming All expected error")
	}
	reserved := "All"
	if err := (FolderUpdate{Name: &reserved}).Apply(f); err == nil {
		t.Error("renaming to All expected error")
	}
	if err := (FolderUpdate{Name: &name}).Apply(f); err != nil || f.Name != "Groceries" {
		t.Errorf("Apply() = %v, name %q", err, f.Name)
	}
}

func TestSplitUpdateApply(t *testing.T) {
	s := &Split{Status: SplitPending, AmountOwed: decimal.NewFromInt(10)}
	paid := string(SplitPaid)
	amount := decimal.RequireFromString("4.005")
	if err := (SplitUpdate{Status: &paid, AmountPaid: &amount}).Apply(s, 1700000000); err != nil {
		t.Fatalf("Apply() unexpected error: %v", err)
	}
	if s.PaidAt != 1700000000 || !s.AmountPaid.Equal(decimal.RequireFromString("4.01")) {
		t.Errorf("Apply() = %+v", s)
	}
	if !s.Outstanding().Equal(decimal.RequireFromString("5.99")) {
		t.Errorf("Outstanding() = %s, want 5.99", s.Outstanding())
	}

	pending := string(SplitPending)
	if err := (SplitUpdate{Status: &pending}).Apply(s, 1700000100); err != nil || s.PaidAt != 0 {
		t.Errorf("moving back to Pending: err %v, paid_at %d", err, s.PaidAt)
	}
	bogus := "Lost"
	if err := (SplitUpdate{Status: &bogus}).Apply(s, 0); !errs.IsValidation(err) {
		t.Errorf("Apply(Lost) error = %v, want validation error", err)
	}
}

func TestAddMonths(t *testing.T) {
	from, _ := ParseDate("2023-03-31")
	if got := FormatDate(AddMonths(from, -1)); got != "2023-02-28" {
		t.Errorf("AddMonths(-1) = %s, want 2023-02-28", got)
	}
	if got := FormatDate(AddMonths(from, 11)); got != "2024-02-29" {
		t.Errorf("AddMonths(11) = %s, want 2024-02-29", got)
	}
}
