package api

import "github.com/shopspring/decimal"

type Subscription struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId,omitempty"`
	GroupID       string          `json:"groupId,omitempty"`
	Merchant      string          `json:"merchant"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Currency      string          `json:"currency"`
	RenewalDate   string          `json:"renewalDate"`
	BillingPeriod string          `json:"billingPeriod"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	CreatedAt     int64           `json:"createdAt"`
}

type CreateSubscriptionRequest struct {
	GroupID       string          `json:"groupId,omitempty"`
	Merchant      string          `json:"merchant"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Currency      string          `json:"currency"`
	RenewalDate   string          `json:"renewalDate"`
	BillingPeriod string          `json:"billingPeriod"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
}

type CreateSubscriptionResponse struct {
	Subscription *Subscription `json:"subscription"`
}

type ListSubscriptionsRequest struct{}

type ListSubscriptionsResponse struct {
	Subscriptions []*Subscription `json:"subscriptions"`
}

type UpdateSubscriptionRequest struct {
	SubscriptionID string           `json:"subscriptionId"`
	Merchant       *string          `json:"merchant,omitempty"`
	TotalAmount    *decimal.Decimal `json:"totalAmount,omitempty"`
	Currency       *string          `json:"currency,omitempty"`
	RenewalDate    *string          `json:"renewalDate,omitempty"`
	BillingPeriod  *string          `json:"billingPeriod,omitempty"`
	PaymentMethod  *string          `json:"paymentMethod,omitempty"`
}

type UpdateSubscriptionResponse struct {
	Subscription *Subscription `json:"subscription"`
}

type DeleteSubscriptionRequest struct {
	SubscriptionID string `json:"subscriptionId"`
}

type DeleteSubscriptionResponse struct{}

type ListUpcomingRenewalsRequest struct{}

type ListUpcomingRenewalsResponse struct {
	Subscriptions []*Subscription `json:"subscriptions"`
}

// AdvanceRenewalRequest moves a subscription to its next renewal date.
type AdvanceRenewalRequest struct {
	SubscriptionID string `json:"subscriptionId"`
}

type AdvanceRenewalResponse struct {
	Subscription *Subscription `json:"subscription"`
}
