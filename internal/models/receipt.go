package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/catalog/internal/errs"
)

// PaymentMethod is how a receipt or subscription was paid.
type PaymentMethod string

const (
	PaymentDebit  PaymentMethod = "Debit"
	PaymentCredit PaymentMethod = "Credit"
	PaymentCash   PaymentMethod = "Cash"
)

// ParsePaymentMethod accepts any casing of Debit, Credit or Cash.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debit":
		return PaymentDebit, nil
	case "credit":
		return PaymentCredit, nil
	case "cash":
		return PaymentCash, nil
	}
	return "", errs.NewValidationError("invalid payment method %q: must be Debit, Credit or Cash", s)
}

// Receipt is the central record: a purchase owned by a user or a group.
type Receipt struct {
	// ID is the unique identifier for the receipt (UUID format).
	ID string

	// UserID is set for personal receipts. Exactly one of UserID and GroupID is set.
	UserID string

	// GroupID is set for group receipts, which carry Splits.
	GroupID string

	Merchant      string
	TotalAmount   decimal.Decimal
	Currency      string
	Date          time.Time
	PaymentMethod PaymentMethod

	// Tax and Tip are optional.
	Tax decimal.NullDecimal
	Tip decimal.NullDecimal

	// TaxLast records whether tax was applied after the tip.
	TaxLast bool

	ImageURL string

	// FolderID defaults to the owner's All folder when empty on save.
	FolderID string

	// FolderName is read-only, populated by the store for display and analytics.
	FolderName string

	// Color is copied from the folder unless overridden.
	Color string

	// Items are the receipt's line items in order. They are replaced, never merged.
	Items []Item

	// Splits holds one row per group member for group receipts.
	Splits []Split

	// CreatedAt is the Unix timestamp when the receipt was created.
	CreatedAt int64
}

// Item is a line item on a receipt.
type Item struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// IsGroup reports whether the receipt is owned by a group.
func (r *Receipt) IsGroup() bool {
	return r.GroupID != ""
}

// OwnerID returns the owning user or group id.
func (r *Receipt) OwnerID() string {
	if r.GroupID != "" {
		return r.GroupID
	}
	return r.UserID
}

// ReceiptParams carries the fields needed to create a receipt.
type ReceiptParams struct {
	UserID        string
	GroupID       string
	Merchant      string
	TotalAmount   decimal.Decimal
	Currency      string
	Date          time.Time
	PaymentMethod string
	Tax           decimal.NullDecimal
	Tip           decimal.NullDecimal
	TaxLast       bool
	ImageURL      string
	FolderID      string
	Color         string
	Items         []Item
}

// NewReceipt validates params and builds a receipt.
func NewReceipt(p ReceiptParams) (*Receipt, error) {
	r := &Receipt{
		UserID:   p.UserID,
		GroupID:  p.GroupID,
		Merchant: strings.TrimSpace(p.Merchant),
		Date:     DateOf(p.Date),
		Tax:      p.Tax,
		Tip:      p.Tip,
		TaxLast:  p.TaxLast,
		ImageURL: p.ImageURL,
		FolderID: p.FolderID,
		Color:    p.Color,
		Items:    p.Items,
	}

	var ve errs.ValidationErrors
	checkOwner(&ve, "receipt", p.UserID, p.GroupID)
	r.TotalAmount = RoundMoney(p.TotalAmount)
	r.Currency = checkCommon(&ve, r.Merchant, r.TotalAmount, p.Currency, p.Date)
	if r.IsGroup() && !r.TotalAmount.IsPositive() {
		ve.Add("group receipt total must be greater than zero")
	}
	if p.PaymentMethod != "" {
		pm, err := ParsePaymentMethod(p.PaymentMethod)
		if err != nil {
			ve.Errors = append(ve.Errors, err)
		}
		r.PaymentMethod = pm
	}
	checkItems(&ve, p.Items)
	if err := ve.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// ReceiptUpdate lists exactly the mutable fields of a receipt. Nil fields are
// left unchanged. Items, when non-nil, replace the full item list. The owner
// cannot be changed.
type ReceiptUpdate struct {
	Merchant      *string
	TotalAmount   *decimal.Decimal
	Currency      *string
	Date          *time.Time
	PaymentMethod *string
	Tax           *decimal.NullDecimal
	Tip           *decimal.NullDecimal
	TaxLast       *bool
	ImageURL      *string
	FolderID      *string
	Color         *string
	Items         *[]Item
}

// Apply validates the update against r and mutates r on success.
// r is left untouched when a validation error is returned.
func (u ReceiptUpdate) Apply(r *Receipt) error {
	next := *r
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
	if u.Date != nil {
		next.Date = DateOf(*u.Date)
	}
	if u.Tax != nil {
		next.Tax = *u.Tax
	}
	if u.Tip != nil {
		next.Tip = *u.Tip
	}
	if u.TaxLast != nil {
		next.TaxLast = *u.TaxLast
	}
	if u.ImageURL != nil {
		next.ImageURL = *u.ImageURL
	}
	if u.FolderID != nil {
		next.FolderID = *u.FolderID
	}
	if u.Color != nil {
		next.Color = *u.Color
	}
	if u.Items != nil {
		next.Items = *u.Items
	}

	var ve errs.ValidationErrors
	next.Currency = checkCommon(&ve, next.Merchant, next.TotalAmount, currency, next.Date)
	if next.IsGroup() && !next.TotalAmount.IsPositive() {
		ve.Add("group receipt total must be greater than zero")
	}
	if u.PaymentMethod != nil {
		if *u.PaymentMethod == "" {
			next.PaymentMethod = ""
		} else {
			pm, err := ParsePaymentMethod(*u.PaymentMethod)
			if err != nil {
				ve.Errors = append(ve.Errors, err)
			}
			next.PaymentMethod = pm
		}
	}
	checkItems(&ve, next.Items)
	if err := ve.Err(); err != nil {
		return err
	}
	*r = next
	return nil
}

func checkOwner(ve *errs.ValidationErrors, kind, userID, groupID string) {
	if userID != "" && groupID != "" {
		ve.Add("a %s can only be linked to either a user or a group", kind)
	}
	if userID == "" && groupID == "" {
		ve.Add("a %s must be linked to either a user or a group", kind)
	}
}

func checkCommon(ve *errs.ValidationErrors, merchant string, total decimal.Decimal, currency string, date time.Time) string {
	if merchant == "" {
		ve.Add("merchant is required")
	}
	if total.IsNegative() {
		ve.Add("total amount cannot be negative")
	}
	code, ok := NormalizeCurrency(currency)
	if !ok {
		ve.Add("invalid currency %q: expected a 3-letter code", currency)
	}
	if date.IsZero() {
		ve.Add("date is required")
	}
	return code
}

func checkItems(ve *errs.ValidationErrors, items []Item) {
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			ve.Add("item %d: name is required", i+1)
		}
		if item.Price.IsNegative() {
			ve.Add("item %d: price cannot be negative", i+1)
		}
		if item.Quantity <= 0 {
			ve.Add("item %d: quantity must be positive", i+1)
		}
	}
}
