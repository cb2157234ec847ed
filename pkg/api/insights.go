package api

import "github.com/shopspring/decimal"

type FolderAmount struct {
	Amount decimal.Decimal `json:"amount"`
	Color  string          `json:"color"`
}

// Insight is one spending snapshot. All amounts are in Currency.
type Insight struct {
	Period                string                     `json:"period"`
	Date                  string                     `json:"date"`
	Currency              string                     `json:"currency"`
	TotalSpent            decimal.Decimal            `json:"totalSpent"`
	DailySpending         map[string]decimal.Decimal `json:"dailySpending"`
	FolderSpending        map[string]FolderAmount    `json:"folderSpending"`
	MerchantSpending      map[string]decimal.Decimal `json:"merchantSpending"`
	PaymentMethodSpending map[string]decimal.Decimal `json:"paymentMethodSpending"`
	CurrencyDistribution  map[string]decimal.Decimal `json:"currencyDistribution"`
	UpdatedAt             int64                      `json:"updatedAt"`
}

type Dashboard struct {
	Currency             string                     `json:"currency"`
	TotalSpent           decimal.Decimal            `json:"totalSpent"`
	DailySpending        map[string]decimal.Decimal `json:"dailySpending"`
	CurrencyDistribution map[string]decimal.Decimal `json:"currencyDistribution"`
	PercentChange        string                     `json:"percentChange"`
	RecentReceipts       []*Receipt                 `json:"recentReceipts"`
	UpcomingRenewals     []*Subscription            `json:"upcomingRenewals"`
}

type GetInsightsRequest struct {
	Period string `json:"period"`
}

type GetInsightsResponse struct {
	Insight *Insight `json:"insight"`
}

type RefreshInsightsRequest struct{}

type RefreshInsightsResponse struct {
	Insights []*Insight `json:"insights"`
}

type GetDashboardRequest struct{}

type GetDashboardResponse struct {
	Dashboard *Dashboard `json:"dashboard"`
}
