package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/catalog/internal/models"
	"github.com/mmynk/catalog/internal/storage"
)

const receiptSelect = `
	SELECT r.id, r.user_id, r.group_id, r.merchant, r.total_amount, r.currency, r.receipt_date,
	       r.payment_method, r.tax, r.tip, r.tax_last, r.image_url, r.folder_id,
	       COALESCE(f.name, ''), r.color, r.created_at
	FROM receipts r
	LEFT JOIN folders f ON f.id = r.folder_id
`

func scanReceipt(row interface{ Scan(...any) error }) (*models.Receipt, error) {
	r := &models.Receipt{}
	var userID, groupID, folderID sql.NullString
	var date, paymentMethod string
	err := row.Scan(
		&r.ID, &userID, &groupID, &r.Merchant, &r.TotalAmount, &r.Currency, &date,
		&paymentMethod, &r.Tax, &r.Tip, &r.TaxLast, &r.ImageURL, &folderID,
		&r.FolderName, &r.Color, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.UserID, r.GroupID, r.FolderID = userID.String, groupID.String, folderID.String
	r.PaymentMethod = models.PaymentMethod(paymentMethod)
	if r.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	return r, nil
}

// CreateReceipt persists a new receipt with its items.
// The receipt.ID field will be populated by the store.
func (q *queries) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	if receipt.ID == "" {
		receipt.ID = uuid.New().String()
	}
	if receipt.CreatedAt == 0 {
		receipt.CreatedAt = q.unix()
	}

	return q.atomic(ctx, func(q *queries) error {
		_, err := q.db.ExecContext(ctx, `
			INSERT INTO receipts (id, user_id, group_id, merchant, total_amount, currency, receipt_date,
				payment_method, tax, tip, tax_last, image_url, folder_id, color, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			receipt.ID, nullString(receipt.UserID), nullString(receipt.GroupID), receipt.Merchant,
			receipt.TotalAmount, receipt.Currency, formatDate(receipt.Date), string(receipt.PaymentMethod),
			receipt.Tax, receipt.Tip, receipt.TaxLast, receipt.ImageURL, nullString(receipt.FolderID),
			receipt.Color, receipt.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert receipt: %w", err)
		}
		return q.insertItems(ctx, receipt.ID, receipt.Items)
	})
}

func (q *queries) insertItems(ctx context.Context, receiptID string, items []models.Item) error {
	for i := range items {
		item := &items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		_, err := q.db.ExecContext(ctx,
			"INSERT INTO items (id, receipt_id, position, name, price, quantity) VALUES (?, ?, ?, ?, ?, ?)",
			item.ID, receiptID, i, item.Name, item.Price, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}
	return nil
}

// GetReceipt retrieves a receipt by ID, including its items and splits.
func (q *queries) GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error) {
	r, err := scanReceipt(q.db.QueryRowContext(ctx, receiptSelect+" WHERE r.id = ?", receiptID))
	if err == sql.ErrNoRows {
		return nil, notFound("receipt", receiptID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	if r.Items, err = q.listItems(ctx, receiptID); err != nil {
		return nil, err
	}
	if r.IsGroup() {
		if r.Splits, err = q.ListSplits(ctx, receiptID); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (q *queries) listItems(ctx context.Context, receiptID string) ([]models.Item, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, name, price, quantity FROM items WHERE receipt_id = ? ORDER BY position",
		receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// UpdateReceipt overwrites the mutable columns and replaces all items.
// Owner columns are never updated.
func (q *queries) UpdateReceipt(ctx context.Context, receipt *models.Receipt) error {
	return q.atomic(ctx, func(q *queries) error {
		res, err := q.db.ExecContext(ctx, `
			UPDATE receipts SET merchant = ?, total_amount = ?, currency = ?, receipt_date = ?,
				payment_method = ?, tax = ?, tip = ?, tax_last = ?, image_url = ?, folder_id = ?, color = ?
			WHERE id = ?
		`,
			receipt.Merchant, receipt.TotalAmount, receipt.Currency, formatDate(receipt.Date),
			string(receipt.PaymentMethod), receipt.Tax, receipt.Tip, receipt.TaxLast, receipt.ImageURL,
			nullString(receipt.FolderID), receipt.Color, receipt.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update receipt: %w", err)
		}
		if err := checkAffected(res, "receipt", receipt.ID); err != nil {
			return err
		}

		if _, err := q.db.ExecContext(ctx, "DELETE FROM items WHERE receipt_id = ?", receipt.ID); err != nil {
			return fmt.Errorf("failed to delete items: %w", err)
		}
		return q.insertItems(ctx, receipt.ID, receipt.Items)
	})
}

// DeleteReceipt deletes a receipt; items and splits cascade.
func (q *queries) DeleteReceipt(ctx context.Context, receiptID string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM receipts WHERE id = ?", receiptID)
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	return checkAffected(res, "receipt", receiptID)
}

// ListUserReceipts returns personal receipts newest first.
func (q *queries) ListUserReceipts(ctx context.Context, userID string, filter storage.ReceiptFilter) ([]*models.Receipt, error) {
	where := []string{"r.user_id = ?"}
	args := []any{userID}
	if filter.FolderID != "" {
		where = append(where, "r.folder_id = ?")
		args = append(args, filter.FolderID)
	}
	if !filter.Since.IsZero() {
		where = append(where, "r.receipt_date >= ?")
		args = append(args, formatDate(filter.Since))
	}
	if !filter.Until.IsZero() {
		where = append(where, "r.receipt_date <= ?")
		args = append(args, formatDate(filter.Until))
	}
	query := receiptSelect + " WHERE " + strings.Join(where, " AND ") + " ORDER BY r.receipt_date DESC, r.created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	return q.listReceipts(ctx, query, args...)
}

// ListGroupReceipts returns a group's receipts newest first.
func (q *queries) ListGroupReceipts(ctx context.Context, groupID string) ([]*models.Receipt, error) {
	return q.listReceipts(ctx,
		receiptSelect+" WHERE r.group_id = ? ORDER BY r.receipt_date DESC, r.created_at DESC",
		groupID,
	)
}

func (q *queries) listReceipts(ctx context.Context, query string, args ...any) ([]*models.Receipt, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []*models.Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}
	return receipts, nil
}
