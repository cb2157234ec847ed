package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mmynk/catalog/internal/errs"
	"github.com/mmynk/catalog/internal/models"
)

const userColumns = "id, email, display_name, created_at"

// UpsertUser inserts a user or refreshes the email and display name of an
// existing one. CreatedAt is kept from the first insert.
func (q *queries) UpsertUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt == 0 {
		user.CreatedAt = q.unix()
	}
	query := `
		INSERT INTO users (id, email, display_name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET email = excluded.email, display_name = excluded.display_name
	`
	_, err := q.db.ExecContext(ctx, query, user.ID, user.Email, user.DisplayName, user.CreatedAt)
	if isUniqueViolation(err) {
		return errs.NewValidationError("email %q or display name %q is already taken", user.Email, user.DisplayName)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (q *queries) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return q.getUserWhere(ctx, "id = ?", userID)
}

// FindUserByEmail retrieves a user by email address, ignoring case.
func (q *queries) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return q.getUserWhere(ctx, "lower(email) = ?", strings.ToLower(strings.TrimSpace(email)))
}

// FindUserByDisplayName retrieves a user by exact display name.
func (q *queries) FindUserByDisplayName(ctx context.Context, displayName string) (*models.User, error) {
	return q.getUserWhere(ctx, "display_name = ?", strings.TrimSpace(displayName))
}

func (q *queries) getUserWhere(ctx context.Context, where string, arg string) (*models.User, error) {
	user := &models.User{}
	err := q.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where, arg,
	).Scan(&user.ID, &user.Email, &user.DisplayName, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, notFound("user", arg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
