package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/catalog/internal/models"
)

// CreateNotification inserts a notification for one user.
func (q *queries) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = q.unix()
	}
	data := n.Data
	if data == nil {
		data = map[string]string{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode notification data: %w", err)
	}

	_, err = q.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, data, is_read, is_dismissed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.UserID, string(n.Type), n.Title, n.Message, string(raw), n.IsRead, n.IsDismissed, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListNotifications returns the user's notifications newest first.
func (q *queries) ListNotifications(ctx context.Context, userID string, includeDismissed bool) ([]*models.Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, data, is_read, is_dismissed, created_at
		FROM notifications WHERE user_id = ?`
	if !includeDismissed {
		query += " AND is_dismissed = 0"
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := q.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		var typ, data string
		if err := rows.Scan(&n.ID, &n.UserID, &typ, &n.Title, &n.Message, &data, &n.IsRead, &n.IsDismissed, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Type = models.NotificationType(typ)
		if err := json.Unmarshal([]byte(data), &n.Data); err != nil {
			return nil, fmt.Errorf("failed to decode notification data: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return out, nil
}

// MarkNotificationRead marks one of the user's notifications as read.
func (q *queries) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?",
		notificationID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return checkAffected(res, "notification", notificationID)
}

// DismissNotification hides one of the user's notifications.
func (q *queries) DismissNotification(ctx context.Context, userID, notificationID string) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE notifications SET is_dismissed = 1, is_read = 1 WHERE id = ? AND user_id = ?",
		notificationID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to dismiss notification: %w", err)
	}
	return checkAffected(res, "notification", notificationID)
}
