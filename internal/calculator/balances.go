package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SplitForBalance represents a split with the minimal information needed for balance calculations.
type SplitForBalance struct {
	UserID     string
	AmountOwed decimal.Decimal
	AmountPaid decimal.Decimal
}

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	UserID      string
	TotalOwed   decimal.Decimal // Total share across all group receipts
	TotalPaid   decimal.Decimal // Total recorded as paid
	Outstanding decimal.Decimal // TotalOwed - TotalPaid; negative means overpaid
}

// CalculateGroupBalances aggregates owed and paid amounts per member across
// every split of a group. Members without splits are reported with zero
// balances. The result is sorted by user id.
func CalculateGroupBalances(memberIDs []string, splits []SplitForBalance) []MemberBalance {
	balances := make(map[string]*MemberBalance)
	for _, id := range memberIDs {
		balances[id] = &MemberBalance{UserID: id}
	}

	for _, s := range splits {
		bal, exists := balances[s.UserID]
		if !exists {
			// Former members can still carry history.
			bal = &MemberBalance{UserID: s.UserID}
			balances[s.UserID] = bal
		}
		bal.TotalOwed = bal.TotalOwed.Add(s.AmountOwed)
		bal.TotalPaid = bal.TotalPaid.Add(s.AmountPaid)
	}

	result := make([]MemberBalance, 0, len(balances))
	for _, bal := range balances {
		bal.Outstanding = bal.TotalOwed.Sub(bal.TotalPaid)
		result = append(result, *bal)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result
}
