package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/catalog/internal/models"
)

const subscriptionColumns = `id, user_id, group_id, merchant, total_amount, currency, renewal_date,
	billing_period, payment_method, created_at`

// visibleTo restricts subscriptions to the user's own and those of the user's groups.
const visibleTo = `(user_id = ? OR group_id IN (SELECT group_id FROM group_members WHERE user_id = ?))`

func scanSubscription(row interface{ Scan(...any) error }) (*models.Subscription, error) {
	s := &models.Subscription{}
	var userID, groupID sql.NullString
	var date, period, paymentMethod string
	err := row.Scan(&s.ID, &userID, &groupID, &s.Merchant, &s.TotalAmount, &s.Currency, &date,
		&period, &paymentMethod, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.UserID, s.GroupID = userID.String, groupID.String
	s.BillingPeriod = models.BillingPeriod(period)
	s.PaymentMethod = models.PaymentMethod(paymentMethod)
	if s.RenewalDate, err = parseDate(date); err != nil {
		return nil, err
	}
	return s, nil
}

// CreateSubscription inserts a subscription.
func (q *queries) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.CreatedAt == 0 {
		sub.CreatedAt = q.unix()
	}
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO subscriptions ("+subscriptionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		sub.ID, nullString(sub.UserID), nullString(sub.GroupID), sub.Merchant, sub.TotalAmount,
		sub.Currency, formatDate(sub.RenewalDate), string(sub.BillingPeriod), string(sub.PaymentMethod),
		sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// GetSubscription retrieves a subscription by ID.
func (q *queries) GetSubscription(ctx context.Context, subID string) (*models.Subscription, error) {
	s, err := scanSubscription(q.db.QueryRowContext(ctx,
		"SELECT "+subscriptionColumns+" FROM subscriptions WHERE id = ?", subID))
	if err == sql.ErrNoRows {
		return nil, notFound("subscription", subID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return s, nil
}

// UpdateSubscription saves the mutable columns of a subscription.
func (q *queries) UpdateSubscription(ctx context.Context, sub *models.Subscription) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE subscriptions SET merchant = ?, total_amount = ?, currency = ?, renewal_date = ?,
			billing_period = ?, payment_method = ?
		WHERE id = ?
	`,
		sub.Merchant, sub.TotalAmount, sub.Currency, formatDate(sub.RenewalDate),
		string(sub.BillingPeriod), string(sub.PaymentMethod), sub.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return checkAffected(res, "subscription", sub.ID)
}

// DeleteSubscription deletes a subscription.
func (q *queries) DeleteSubscription(ctx context.Context, subID string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM subscriptions WHERE id = ?", subID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return checkAffected(res, "subscription", subID)
}

// ListSubscriptions returns subscriptions visible to the user by renewal date.
func (q *queries) ListSubscriptions(ctx context.Context, userID string) ([]*models.Subscription, error) {
	return q.listSubscriptions(ctx,
		"SELECT "+subscriptionColumns+" FROM subscriptions WHERE "+visibleTo+" ORDER BY renewal_date, merchant",
		userID, userID,
	)
}

// ListUpcomingRenewals returns at most limit subscriptions renewing on or after from.
func (q *queries) ListUpcomingRenewals(ctx context.Context, userID string, from time.Time, limit int) ([]*models.Subscription, error) {
	return q.listSubscriptions(ctx,
		"SELECT "+subscriptionColumns+" FROM subscriptions WHERE "+visibleTo+
			" AND renewal_date >= ? ORDER BY renewal_date, merchant LIMIT ?",
		userID, userID, formatDate(from), limit,
	)
}

// ListRenewalsOn returns every subscription renewing on date.
func (q *queries) ListRenewalsOn(ctx context.Context, date time.Time) ([]*models.Subscription, error) {
	return q.listSubscriptions(ctx,
		"SELECT "+subscriptionColumns+" FROM subscriptions WHERE renewal_date = ? ORDER BY id",
		formatDate(date),
	)
}

func (q *queries) listSubscriptions(ctx context.Context, query string, args ...any) ([]*models.Subscription, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}
	return subs, nil
}
