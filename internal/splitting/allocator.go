// Package splitting keeps the split rows of group receipts in step with
// receipt totals, group membership and custom amounts.
package splitting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/catalog/internal/calculator"
	"github.com/mmynk/catalog/internal/errs"
	"github.com/mmynk/catalog/internal/metrics"
	"github.com/mmynk/catalog/internal/models"
	"github.com/mmynk/catalog/internal/storage"
)

// Trigger labels why a recompute ran.
const (
	TriggerReceipt     = "receipt"
	TriggerMembership  = "membership"
	TriggerCustomSplit = "custom_split"
)

// Allocator regenerates split rows. Every method expects q to be bound to the
// caller's transaction; a returned validation error means the caller must
// roll back.
type Allocator struct{}

// NewAllocator creates an Allocator.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Recompute replaces the splits of a receipt. Members in overrides owe the
// given amount; the rest share the remainder. Missing or personal receipts
// and empty groups are no-ops.
func (a *Allocator) Recompute(ctx context.Context, q storage.Querier, receiptID string, overrides map[string]decimal.Decimal) error {
	return a.recompute(ctx, q, receiptID, overrides, TriggerReceipt)
}

func (a *Allocator) recompute(ctx context.Context, q storage.Querier, receiptID string, overrides map[string]decimal.Decimal, trigger string) error {
	receipt, err := q.GetReceipt(ctx, receiptID)
	if errors.Is(err, errs.ErrNotFound) {
		slog.Debug("Skipping split recompute for missing receipt", "receipt_id", receiptID)
		return nil
	}
	if err != nil {
		return err
	}
	if !receipt.IsGroup() {
		return nil
	}

	group, err := q.GetGroup(ctx, receipt.GroupID)
	if errors.Is(err, errs.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(group.Members) == 0 {
		return nil
	}

	shares, err := calculator.AllocateSplits(receipt.TotalAmount, group.MemberIDs(), overrides)
	if err != nil {
		return err
	}

	previous := make(map[string]models.Split, len(receipt.Splits))
	for _, s := range receipt.Splits {
		previous[s.UserID] = s
	}
	memberByUser := make(map[string]models.GroupMember, len(group.Members))
	for _, m := range group.Members {
		memberByUser[m.UserID] = m
	}

	splits := make([]models.Split, 0, len(shares))
	for _, share := range shares {
		split := models.Split{
			GroupMemberID:  memberByUser[share.UserID].ID,
			UserID:         share.UserID,
			AmountOwed:     share.Amount,
			PercentageOwed: share.Percentage,
			IsCustom:       share.Custom,
			AmountPaid:     decimal.Zero,
			Status:         models.SplitPending,
		}
		if prev, ok := previous[share.UserID]; ok {
			split.AmountPaid = prev.AmountPaid
			split.Status = prev.Status
			split.Notes = prev.Notes
			split.PaidAt = prev.PaidAt
			split.CreatedAt = prev.CreatedAt
		}
		splits = append(splits, split)
	}

	if err := q.ReplaceSplits(ctx, receipt.ID, splits); err != nil {
		return fmt.Errorf("failed to replace splits: %w", err)
	}
	metrics.SplitRecomputes.WithLabelValues(trigger).Inc()
	slog.Debug("Splits recomputed", "receipt_id", receipt.ID, "members", len(splits), "custom", len(overrides), "trigger", trigger)
	return nil
}

// DeriveOverrides returns the custom amounts currently flagged on splits.
func DeriveOverrides(splits []models.Split) map[string]decimal.Decimal {
	overrides := make(map[string]decimal.Decimal)
	for _, s := range splits {
		if s.IsCustom {
			overrides[s.UserID] = s.AmountOwed
		}
	}
	return overrides
}

// RecomputeGroup recomputes every receipt of a group after a membership
// change, keeping the custom amounts of members who are still present.
func (a *Allocator) RecomputeGroup(ctx context.Context, q storage.Querier, groupID string) error {
	group, err := q.GetGroup(ctx, groupID)
	if errors.Is(err, errs.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	receipts, err := q.ListGroupReceipts(ctx, groupID)
	if err != nil {
		return err
	}

	for _, r := range receipts {
		splits, err := q.ListSplits(ctx, r.ID)
		if err != nil {
			return err
		}
		overrides := make(map[string]decimal.Decimal)
		for userID, amount := range DeriveOverrides(splits) {
			if group.HasMember(userID) {
				overrides[userID] = amount
			}
		}
		if len(overrides) > 0 && len(overrides) == len(group.Members) && !sum(overrides).Equal(r.TotalAmount) {
			// Every remaining member is custom and nobody can absorb the difference.
			slog.Info("Custom splits no longer cover the total, reverting to an even split",
				"receipt_id", r.ID, "group_id", groupID)
			overrides = nil
		}
		if err := a.recompute(ctx, q, r.ID, overrides, TriggerMembership); err != nil {
			return fmt.Errorf("receipt %s: %w", r.ID, err)
		}
	}
	return nil
}

// SetCustomSplit fixes what one member owes on a receipt and recomputes the
// rest from all custom amounts on that receipt.
func (a *Allocator) SetCustomSplit(ctx context.Context, q storage.Querier, receiptID, userID string, amount decimal.Decimal) error {
	overrides, err := a.currentOverrides(ctx, q, receiptID)
	if err != nil {
		return err
	}
	overrides[userID] = amount
	return a.recompute(ctx, q, receiptID, overrides, TriggerCustomSplit)
}

// ClearCustomSplit returns one member to the even split.
func (a *Allocator) ClearCustomSplit(ctx context.Context, q storage.Querier, receiptID, userID string) error {
	overrides, err := a.currentOverrides(ctx, q, receiptID)
	if err != nil {
		return err
	}
	delete(overrides, userID)
	return a.recompute(ctx, q, receiptID, overrides, TriggerCustomSplit)
}

func (a *Allocator) currentOverrides(ctx context.Context, q storage.Querier, receiptID string) (map[string]decimal.Decimal, error) {
	receipt, err := q.GetReceipt(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if !receipt.IsGroup() {
		return nil, errs.NewValidationError("receipt %s is not a group receipt", receiptID)
	}
	return DeriveOverrides(receipt.Splits), nil
}

func sum(amounts map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range amounts {
		total = total.Add(v)
	}
	return total
}
