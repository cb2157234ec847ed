package models

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/catalog/internal/errs"
)

// SplitStatus tracks whether a member has settled their share.
type SplitStatus string

const (
	SplitPending  SplitStatus = "Pending"
	SplitPaid     SplitStatus = "Paid"
	SplitDisputed SplitStatus = "Disputed"
)

// ParseSplitStatus validates a status string.
func ParseSplitStatus(s string) (SplitStatus, error) {
	switch SplitStatus(s) {
	case SplitPending, SplitPaid, SplitDisputed:
		return SplitStatus(s), nil
	}
	return "", errs.NewValidationError("invalid split status %q: must be Pending, Paid or Disputed", s)
}

// Split is one group member's share of a group receipt.
// It is regenerated by the allocator; AmountPaid, Status, Notes, PaidAt and
// CreatedAt survive regeneration.
type Split struct {
	// ID is the unique identifier for the split row (UUID format).
	ID string

	ReceiptID     string
	GroupMemberID string

	// UserID is the member's user, read from the membership row.
	UserID string

	// AmountOwed is this member's share of the receipt total.
	AmountOwed decimal.Decimal

	// PercentageOwed is AmountOwed relative to the current receipt total (0-100).
	PercentageOwed decimal.Decimal

	AmountPaid decimal.Decimal

	// IsCustom marks a fixed amount chosen by a caller rather than the even split.
	IsCustom bool

	Status SplitStatus

	// PaidAt is the Unix timestamp when the split was marked paid, 0 if never.
	PaidAt int64

	Notes     string
	CreatedAt int64
}

// Outstanding is what the member still owes on this split.
func (s *Split) Outstanding() decimal.Decimal {
	return s.AmountOwed.Sub(s.AmountPaid)
}

// SplitUpdate lists the bookkeeping fields a member may edit directly.
type SplitUpdate struct {
	Status     *string
	AmountPaid *decimal.Decimal
	Notes      *string
}

// Apply validates and applies the update. Marking a split Paid stamps PaidAt
// with now when it was not set; moving away from Paid clears it.
func (u SplitUpdate) Apply(s *Split, now int64) error {
	next := *s
	if u.Status != nil {
		status, err := ParseSplitStatus(*u.Status)
		if err != nil {
			return err
		}
		next.Status = status
		if status == SplitPaid && next.PaidAt == 0 {
			next.PaidAt = now
		}
		if status != SplitPaid {
			next.PaidAt = 0
		}
	}
	if u.AmountPaid != nil {
		if u.AmountPaid.IsNegative() {
			return errs.NewValidationError("amount paid cannot be negative")
		}
		next.AmountPaid = RoundMoney(*u.AmountPaid)
	}
	if u.Notes != nil {
		next.Notes = *u.Notes
	}
	*s = next
	return nil
}
