package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/catalog/internal/models"
)

const splitSelect = `
	SELECT s.id, s.receipt_id, s.group_member_id, m.user_id, s.amount_owed, s.percentage_owed,
	       s.amount_paid, s.is_custom, s.status, s.paid_at, s.notes, s.created_at
	FROM splits s
	JOIN group_members m ON m.id = s.group_member_id
`

// ListSplits returns the splits of a receipt in member join order.
func (q *queries) ListSplits(ctx context.Context, receiptID string) ([]models.Split, error) {
	return q.listSplits(ctx, splitSelect+" WHERE s.receipt_id = ? ORDER BY m.joined_at, m.user_id", receiptID)
}

// ListGroupSplits returns every split on every receipt of a group.
func (q *queries) ListGroupSplits(ctx context.Context, groupID string) ([]models.Split, error) {
	return q.listSplits(ctx,
		splitSelect+" JOIN receipts r ON r.id = s.receipt_id WHERE r.group_id = ? ORDER BY s.receipt_id, m.user_id",
		groupID,
	)
}

func (q *queries) listSplits(ctx context.Context, query string, args ...any) ([]models.Split, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []models.Split
	for rows.Next() {
		var s models.Split
		var status string
		err := rows.Scan(
			&s.ID, &s.ReceiptID, &s.GroupMemberID, &s.UserID, &s.AmountOwed, &s.PercentageOwed,
			&s.AmountPaid, &s.IsCustom, &status, &s.PaidAt, &s.Notes, &s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		s.Status = models.SplitStatus(status)
		splits = append(splits, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return splits, nil
}

// ReplaceSplits deletes every split of the receipt and inserts the new rows
// in one transaction.
func (q *queries) ReplaceSplits(ctx context.Context, receiptID string, splits []models.Split) error {
	return q.atomic(ctx, func(q *queries) error {
		if _, err := q.db.ExecContext(ctx, "DELETE FROM splits WHERE receipt_id = ?", receiptID); err != nil {
			return fmt.Errorf("failed to delete splits: %w", err)
		}

		now := q.unix()
		for i := range splits {
			s := &splits[i]
			if s.ID == "" {
				s.ID = uuid.New().String()
			}
			if s.CreatedAt == 0 {
				s.CreatedAt = now
			}
			s.ReceiptID = receiptID
			_, err := q.db.ExecContext(ctx, `
				INSERT INTO splits (id, receipt_id, group_member_id, amount_owed, percentage_owed,
					amount_paid, is_custom, status, paid_at, notes, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				s.ID, receiptID, s.GroupMemberID, s.AmountOwed, s.PercentageOwed,
				s.AmountPaid, s.IsCustom, string(s.Status), s.PaidAt, s.Notes, s.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert split: %w", err)
			}
		}
		return nil
	})
}

// UpdateSplit saves the bookkeeping fields of one split.
func (q *queries) UpdateSplit(ctx context.Context, split *models.Split) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE splits SET amount_paid = ?, status = ?, paid_at = ?, notes = ? WHERE id = ?",
		split.AmountPaid, string(split.Status), split.PaidAt, split.Notes, split.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update split: %w", err)
	}
	return checkAffected(res, "split", split.ID)
}
