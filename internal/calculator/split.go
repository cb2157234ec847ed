package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/catalog/internal/errs"
)

var hundred = decimal.NewFromInt(100)

// Share is the calculated split for one member.
type Share struct {
	UserID     string
	Amount     decimal.Decimal
	Percentage decimal.Decimal
	Custom     bool
}

// AllocateSplits divides total between members. Members present in overrides
// owe exactly their override; the rest split the remainder evenly.
//
// The even share is computed in whole cents. Leftover cents go one each to
// regular members in ascending user id order, so 100.00 across three members
// is 33.34, 33.33, 33.33. Shares are returned in memberIDs order.
func AllocateSplits(total decimal.Decimal, memberIDs []string, overrides map[string]decimal.Decimal) ([]Share, error) {
	if !total.IsPositive() {
		return nil, errs.NewValidationError("receipt total must be greater than zero to split, got %s", total.StringFixed(2))
	}
	members := dedupe(memberIDs)
	if len(members) == 0 {
		return nil, nil
	}
	total = total.Round(2)

	isMember := make(map[string]bool, len(members))
	for _, id := range members {
		isMember[id] = true
	}

	totalCustom := decimal.Zero
	for userID, amount := range overrides {
		if !isMember[userID] {
			return nil, errs.NewValidationError("custom split for %s: not a member of the group", userID)
		}
		if amount.IsNegative() {
			return nil, errs.NewValidationError("custom split for %s cannot be negative", userID)
		}
		totalCustom = totalCustom.Add(amount.Round(2))
	}
	if totalCustom.GreaterThan(total) {
		return nil, errs.NewValidationError("custom splits (%s) exceed receipt total (%s)", totalCustom.StringFixed(2), total.StringFixed(2))
	}

	var regular []string
	for _, id := range members {
		if _, ok := overrides[id]; !ok {
			regular = append(regular, id)
		}
	}
	if len(regular) == 0 && !totalCustom.Equal(total) {
		return nil, errs.NewValidationError("every member has a custom split but they sum to %s, not %s", totalCustom.StringFixed(2), total.StringFixed(2))
	}

	even := make(map[string]decimal.Decimal, len(regular))
	if len(regular) > 0 {
		cents := total.Sub(totalCustom).Shift(2).IntPart()
		base := cents / int64(len(regular))
		extra := cents % int64(len(regular))
		sorted := append([]string(nil), regular...)
		sort.Strings(sorted)
		for i, id := range sorted {
			c := base
			if int64(i) < extra {
				c++
			}
			even[id] = decimal.New(c, -2)
		}
	}

	shares := make([]Share, 0, len(members))
	for _, id := range members {
		share := Share{UserID: id}
		if amount, ok := overrides[id]; ok {
			share.Amount = amount.Round(2)
			share.Custom = true
		} else {
			share.Amount = even[id]
		}
		share.Percentage = Percentage(share.Amount, total)
		shares = append(shares, share)
	}
	return shares, nil
}

// Percentage returns part/total*100 rounded to 2 places, or 0 for a zero total.
func Percentage(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred).Round(2)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
