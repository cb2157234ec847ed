package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/catalog/internal/errs"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sharesByUser(shares []Share) map[string]Share {
	m := make(map[string]Share, len(shares))
	for _, s := range shares {
		m[s.UserID] = s
	}
	return m
}

func TestAllocateSplits(t *testing.T) {
	tests := []struct {
		name         string
		total        decimal.Decimal
		members      []string
		overrides    map[string]decimal.Decimal
		wantErr      bool
		validateFunc func(t *testing.T, shares []Share)
	}{
		{
			name:    "three members even split assigns remainder to lowest id",
			total:   d("100.00"),
			members: []string{"carol", "alice", "bob"},
			validateFunc: func(t *testing.T, shares []Share) {
				got := sharesByUser(shares)
				if !got["alice"].Amount.Equal(d("33.34")) {
					t.Errorf("alice = %s, want 33.34", got["alice"].Amount)
				}
				for _, id := range []string{"bob", "carol"} {
					if !got[id].Amount.Equal(d("33.33")) {
						t.Errorf("%s = %s, want 33.33", id, got[id].Amount)
					}
				}
				if shares[0].UserID != "carol" {
					t.Errorf("shares not in member order: first = %s", shares[0].UserID)
				}
			},
		},
		{
			name:      "custom override leaves remainder to the other member",
			total:     d("100.00"),
			members:   []string{"alice", "bob"},
			overrides: map[string]decimal.Decimal{"alice": d("30.00")},
			validateFunc: func(t *testing.T, shares []Share) {
				got := sharesByUser(shares)
				if !got["alice"].Custom || got["bob"].Custom {
					t.Errorf("custom flags = %v/%v, want true/false", got["alice"].Custom, got["bob"].Custom)
				}
				if !got["bob"].Amount.Equal(d("70.00")) {
					t.Errorf("bob amount = %s, want 70.00", got["bob"].Amount)
				}
				if !got["bob"].Percentage.Equal(d("70.00")) {
					t.Errorf("bob percentage = %s, want 70.00", got["bob"].Percentage)
				}
				if !got["alice"].Percentage.Equal(d("30.00")) {
					t.Errorf("alice percentage = %s, want 30.00", got["alice"].Percentage)
				}
			},
		},
		{
			name:    "two regular members split evenly",
			total:   d("100.00"),
			members: []string{"alice", "bob"},
			validateFunc: func(t *testing.T, shares []Share) {
				for _, s := range shares {
					if !s.Amount.Equal(d("50.00")) {
						t.Errorf("%s = %s, want 50.00", s.UserID, s.Amount)
					}
				}
			},
		},
		{
			name:      "every member custom and summing to total",
			total:     d("10.00"),
			members:   []string{"alice", "bob"},
			overrides: map[string]decimal.Decimal{"alice": d("4.00"), "bob": d("6.00")},
			validateFunc: func(t *testing.T, shares []Share) {
				got := sharesByUser(shares)
				if !got["bob"].Amount.Equal(d("6.00")) {
					t.Errorf("bob = %s, want 6.00", got["bob"].Amount)
				}
			},
		},
		{
			name:    "no members is a no-op",
			total:   d("10.00"),
			members: nil,
			validateFunc: func(t *testing.T, shares []Share) {
				if len(shares) != 0 {
					t.Errorf("got %d shares, want 0", len(shares))
				}
			},
		},
		{
			name:    "duplicate member ids are ignored",
			total:   d("9.00"),
			members: []string{"alice", "alice", "bob"},
			validateFunc: func(t *testing.T, shares []Share) {
				if len(shares) != 2 {
					t.Errorf("got %d shares, want 2", len(shares))
				}
			},
		},
		{name: "zero total", total: d("0"), members: []string{"alice"}, wantErr: true},
		{name: "negative total", total: d("-5"), members: []string{"alice"}, wantErr: true},
		{
			name: "override for non-member", total: d("10"), members: []string{"alice"},
			overrides: map[string]decimal.Decimal{"mallory": d("1")}, wantErr: true,
		},
		{
			name: "negative override", total: d("10"), members: []string{"alice", "bob"},
			overrides: map[string]decimal.Decimal{"alice": d("-1")}, wantErr: true,
		},
		{
			name: "overrides exceed total", total: d("10"), members: []string{"alice", "bob"},
			overrides: map[string]decimal.Decimal{"alice": d("11")}, wantErr: true,
		},
		{
			name: "all custom but short of total", total: d("10"), members: []string{"alice", "bob"},
			overrides: map[string]decimal.Decimal{"alice": d("2"), "bob": d("3")}, wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := AllocateSplits(tt.total, tt.members, tt.overrides)
			if tt.wantErr {
				if err == nil {
					t.Fatal("AllocateSplits() expected error, got nil")
				}
				if !errs.IsValidation(err) {
					t.Errorf("AllocateSplits() error = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("AllocateSplits() unexpected error: %v", err)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, shares)
			}
		})
	}
}

func TestAllocateSplitsInvariants(t *testing.T) {
	members := []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7"}
	totals := []string{"0.01", "1.00", "10.00", "99.99", "100.00", "1234.56"}
	overrideSets := []map[string]decimal.Decimal{
		nil,
		{"u3": d("0.01")},
		{"u1": d("0.50"), "u7": d("0.25")},
	}

	for _, total := range totals {
		for _, overrides := range overrideSets {
			tot := d(total)
			sumOverrides := decimal.Zero
			for _, v := range overrides {
				sumOverrides = sumOverrides.Add(v)
			}
			if sumOverrides.GreaterThan(tot) {
				continue
			}
			shares, err := AllocateSplits(tot, members, overrides)
			if err != nil {
				t.Fatalf("AllocateSplits(%s, %v) unexpected error: %v", total, overrides, err)
			}

			sum, pct := decimal.Zero, decimal.Zero
			for _, s := range shares {
				sum = sum.Add(s.Amount)
				pct = pct.Add(s.Percentage)
			}
			if !sum.Equal(tot) {
				t.Errorf("total %s overrides %v: shares sum to %s", total, overrides, sum)
			}
			tolerance := d("0.01").Mul(decimal.NewFromInt(int64(len(members))))
			if pct.Sub(hundred).Abs().GreaterThan(tolerance) {
				t.Errorf("total %s overrides %v: percentages sum to %s", total, overrides, pct)
			}

			again, _ := AllocateSplits(tot, members, overrides)
			for i := range shares {
				if !shares[i].Amount.Equal(again[i].Amount) || !shares[i].Percentage.Equal(again[i].Percentage) {
					t.Errorf("total %s: allocation not idempotent for %s", total, shares[i].UserID)
				}
			}
		}
	}
}

func TestCalculateGroupBalances(t *testing.T) {
	splits := []SplitForBalance{
		{UserID: "alice", AmountOwed: d("33.34"), AmountPaid: d("33.34")},
		{UserID: "bob", AmountOwed: d("33.33"), AmountPaid: d("10.00")},
		{UserID: "alice", AmountOwed: d("20.00")},
		{UserID: "dave", AmountOwed: d("5.00"), AmountPaid: d("5.00")},
	}

	balances := CalculateGroupBalances([]string{"alice", "bob", "carol"}, splits)
	if len(balances) != 4 {
		t.Fatalf("got %d balances, want 4", len(balances))
	}

	want := map[string]struct{ owed, paid, outstanding string }{
		"alice": {"53.34", "33.34", "20.00"},
		"bob":   {"33.33", "10.00", "23.33"},
		"carol": {"0", "0", "0"},
		"dave":  {"5.00", "5.00", "0"},
	}
	for i, b := range balances {
		if i > 0 && balances[i-1].UserID > b.UserID {
			t.Errorf("balances not sorted: %s before %s", balances[i-1].UserID, b.UserID)
		}
		w := want[b.UserID]
		if !b.TotalOwed.Equal(d(w.owed)) || !b.TotalPaid.Equal(d(w.paid)) || !b.Outstanding.Equal(d(w.outstanding)) {
			t.Errorf("%s = owed %s paid %s outstanding %s, want %s/%s/%s",
				b.UserID, b.TotalOwed, b.TotalPaid, b.Outstanding, w.owed, w.paid, w.outstanding)
		}
	}
}
