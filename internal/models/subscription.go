package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/catalog/internal/errs"
)

// BillingPeriod is how often a subscription renews.
type BillingPeriod string

const (
	BillingDaily   BillingPeriod = "Daily"
	BillingWeekly  BillingPeriod = "Weekly"
	BillingMonthly BillingPeriod = "Monthly"
	BillingYearly  BillingPeriod = "Yearly"
	BillingCustom  BillingPeriod = "Custom"
)

// ParseBillingPeriod accepts any casing of the billing period names.
func ParseBillingPeriod(s string) (BillingPeriod, error) {
	for _, p := range []BillingPeriod{BillingDaily, BillingWeekly, BillingMonthly, BillingYearly, BillingCustom} {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", errs.NewValidationError("invalid billing period %q: must be Daily, Weekly, Monthly, Yearly or Custom", s)
}

// Subscription is a recurring charge owned by a user or a group.
type Subscription struct {
	ID            string
	UserID        string
	GroupID       string
	Merchant      string
	TotalAmount   decimal.Decimal
	Currency      string
	RenewalDate   time.Time
	BillingPeriod BillingPeriod
	PaymentMethod PaymentMethod
	CreatedAt     int64
}

// SubscriptionParams carries the fields needed to create a subscription.
type SubscriptionParams struct {
	UserID        string
	GroupID       string
	Merchant      string
	TotalAmount   decimal.Decimal
	Currency      string
	RenewalDate   time.Time
	BillingPeriod string
	PaymentMethod string
}

// NewSubscription validates params and builds a subscription.
func NewSubscription(p SubscriptionParams) (*Subscription, error) {
	s := &Subscription{
		UserID:      p.UserID,
		GroupID:     p.GroupID,
		Merchant:    strings.TrimSpace(p.Merchant),
		TotalAmount: RoundMoney(p.TotalAmount),
		RenewalDate: DateOf(p.RenewalDate),
	}

	var ve errs.ValidationErrors
	checkOwner(&ve, "subscription", p.UserID, p.GroupID)
	s.Currency = checkCommon(&ve, s.Merchant, s.TotalAmount, p.Currency, p.RenewalDate)
	bp, err := ParseBillingPeriod(p.BillingPeriod)
	if err != nil {
		ve.Errors = append(ve.Errors, err)
	}
	s.BillingPeriod = bp
	if p.PaymentMethod != "" {
		pm, err := ParsePaymentMethod(p.PaymentMethod)
		if err != nil {
			ve.Errors = append(ve.Errors, err)
		}
		s.PaymentMethod = pm
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// NextRenewal returns the renewal date after the current one. Custom periods
// have no rule and are returned unchanged.
func (s *Subscription) NextRenewal() time.Time {
	d := s.RenewalDate
	switch s.BillingPeriod {
	case BillingDaily:
		return d.AddDate(0, 0, 1)
	case BillingWeekly:
		return d.AddDate(0, 0, 7)
	case BillingMonthly:
		return AddMonths(d, 1)
	case BillingYearly:
		return AddMonths(d, 12)
	}
	return d
}

// AddMonths shifts a date by n calendar months, clamping the day to the last
// day of the target month (Jan 31 + 1 month is Feb 28 or 29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// SubscriptionUpdate lists the mutable fields of a subscription.
type SubscriptionUpdate struct {
	Merchant      *string
	TotalAmount   *decimal.Decimal
	Currency      *string
	RenewalDate   *time.Time
	BillingPeriod *string
	PaymentMethod *string
}

// Apply validates and applies the update; s is unchanged on error.
func (u SubscriptionUpdate) Apply(s *Subscription) error {
	next := *s
	if u.Merchant != nil {
		next.Merchant = strings.TrimSpace(*u.Merchant)
	}
	if u.TotalAmount != nil {
		next.TotalAmount = RoundMoney(*u.TotalAmount)
	}
	currency := next.Currency
	if u.Currency != nil {
		currency = *u.Currency
	}
	if u.RenewalDate != nil {
		next.RenewalDate = DateOf(*u.RenewalDate)
	}

	var ve errs.ValidationErrors
	next.Currency = checkCommon(&ve, next.Merchant, next.TotalAmount, currency, next.RenewalDate)
	if u.BillingPeriod != nil {
		bp, err := ParseBillingPeriod(*u.BillingPeriod)
		if err != nil {
			ve.Errors = append(ve.Errors, err)
		}
		next.BillingPeriod = bp
	}
	if u.PaymentMethod != nil && *u.PaymentMethod != "" {
		pm, err := ParsePaymentMethod(*u.PaymentMethod)
		if err != nil {
			ve.Errors = append(ve.Errors, err)
		}
		next.PaymentMethod = pm
	}
	if err := ve.Err(); err != nil {
		return err
	}
	*s = next
	return nil
}
