package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/catalog/internal/models"
)

// UpsertInsight inserts a snapshot or overwrites the one with the same user,
// period and date. The row id of an existing snapshot is kept.
func (q *queries) UpsertInsight(ctx context.Context, in *models.Insight) error {
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	in.UpdatedAt = q.unix()

	encoded := make([]string, 0, 5)
	for _, v := range []any{in.DailySpending, in.FolderSpending, in.MerchantSpending, in.PaymentMethodSpending, in.CurrencyDistribution} {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode insight breakdown: %w", err)
		}
		encoded = append(encoded, string(b))
	}

	err := q.db.QueryRowContext(ctx, `
		INSERT INTO insights (id, user_id, period, snapshot_date, currency, total_spent, daily_spending,
			folder_spending, merchant_spending, payment_method_spending, currency_distribution, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, period, snapshot_date) DO UPDATE SET
			currency = excluded.currency,
			total_spent = excluded.total_spent,
			daily_spending = excluded.daily_spending,
			folder_spending = excluded.folder_spending,
			merchant_spending = excluded.merchant_spending,
			payment_method_spending = excluded.payment_method_spending,
			currency_distribution = excluded.currency_distribution,
			updated_at = excluded.updated_at
		RETURNING id
	`,
		in.ID, in.UserID, string(in.Period), formatDate(in.Date), in.Currency, in.TotalSpent,
		encoded[0], encoded[1], encoded[2], encoded[3], encoded[4], in.UpdatedAt,
	).Scan(&in.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert insight: %w", err)
	}
	return nil
}

// LatestInsight returns the most recent snapshot dated on or before onOrBefore.
func (q *queries) LatestInsight(ctx context.Context, userID string, period models.Period, onOrBefore time.Time) (*models.Insight, error) {
	in := &models.Insight{}
	var periodName, date string
	var daily, folders, merchants, methods, currencies string
	err := q.db.QueryRowContext(ctx, `
		SELECT id, user_id, period, snapshot_date, currency, total_spent, daily_spending, folder_spending,
			merchant_spending, payment_method_spending, currency_distribution, updated_at
		FROM insights
		WHERE user_id = ? AND period = ? AND snapshot_date <= ?
		ORDER BY snapshot_date DESC
		LIMIT 1
	`, userID, string(period), formatDate(onOrBefore)).Scan(
		&in.ID, &in.UserID, &periodName, &date, &in.Currency, &in.TotalSpent,
		&daily, &folders, &merchants, &methods, &currencies, &in.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, notFound("insight", fmt.Sprintf("%s/%s", userID, period))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get insight: %w", err)
	}

	in.Period = models.Period(periodName)
	if in.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	targets := []struct {
		raw string
		dst any
	}{
		{daily, &in.DailySpending},
		{folders, &in.FolderSpending},
		{merchants, &in.MerchantSpending},
		{methods, &in.PaymentMethodSpending},
		{currencies, &in.CurrencyDistribution},
	}
	for _, t := range targets {
		if err := json.Unmarshal([]byte(t.raw), t.dst); err != nil {
			return nil, fmt.Errorf("failed to decode insight breakdown: %w", err)
		}
	}
	return in, nil
}
