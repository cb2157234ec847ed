package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/catalog/internal/errs"
	"github.com/mmynk/catalog/internal/models"
)

const folderColumns = "id, user_id, name, color, created_at"

func scanFolder(row interface{ Scan(...any) error }) (*models.Folder, error) {
	f := &models.Folder{}
	if err := row.Scan(&f.ID, &f.UserID, &f.Name, &f.Color, &f.CreatedAt); err != nil {
		return nil, err
	}
	return f, nil
}

// CreateFolder inserts a folder. A duplicate name for the same user is a
// validation error.
func (q *queries) CreateFolder(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.New().String()
	}
	if folder.CreatedAt == 0 {
		folder.CreatedAt = q.unix()
	}

	_, err := q.db.ExecContext(ctx,
		"INSERT INTO folders ("+folderColumns+") VALUES (?, ?, ?, ?, ?)",
		folder.ID, folder.UserID, folder.Name, folder.Color, folder.CreatedAt,
	)
	if isUniqueViolation(err) {
		return errs.NewValidationError("folder %q already exists", folder.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}
	return nil
}

// GetFolder retrieves a folder by ID.
func (q *queries) GetFolder(ctx context.Context, folderID string) (*models.Folder, error) {
	f, err := scanFolder(q.db.QueryRowContext(ctx,
		"SELECT "+folderColumns+" FROM folders WHERE id = ?", folderID))
	if err == sql.ErrNoRows {
		return nil, notFound("folder", folderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}
	return f, nil
}

// ListFolders returns the user's folders with All first, then by name.
func (q *queries) ListFolders(ctx context.Context, userID string) ([]*models.Folder, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+folderColumns+" FROM folders WHERE user_id = ? ORDER BY name <> ?, name",
		userID, models.DefaultFolderName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer rows.Close()

	var folders []*models.Folder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate folders: %w", err)
	}
	return folders, nil
}

// EnsureDefaultFolder returns the user's All folder, creating it on first use.
func (q *queries) EnsureDefaultFolder(ctx context.Context, userID string) (*models.Folder, error) {
	def := models.DefaultFolder(userID)
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO folders (id, user_id, name, color, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, name) DO NOTHING
	`, uuid.New().String(), userID, def.Name, def.Color, q.unix())
	if err != nil {
		return nil, fmt.Errorf("failed to ensure default folder: %w", err)
	}

	f, err := scanFolder(q.db.QueryRowContext(ctx,
		"SELECT "+folderColumns+" FROM folders WHERE user_id = ? AND name = ?",
		userID, models.DefaultFolderName))
	if err != nil {
		return nil, fmt.Errorf("failed to get default folder: %w", err)
	}
	return f, nil
}

// UpdateFolder saves a folder's name and color.
func (q *queries) UpdateFolder(ctx context.Context, folder *models.Folder) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE folders SET name = ?, color = ? WHERE id = ?",
		folder.Name, folder.Color, folder.ID,
	)
	if isUniqueViolation(err) {
		return errs.NewValidationError("folder %q already exists", folder.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to update folder: %w", err)
	}
	return checkAffected(res, "folder", folder.ID)
}

// ReassignFolderReceipts moves receipts to another folder and adopts its color.
func (q *queries) ReassignFolderReceipts(ctx context.Context, fromFolderID string, to *models.Folder) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		"UPDATE receipts SET folder_id = ?, color = ? WHERE folder_id = ?",
		to.ID, to.Color, fromFolderID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign receipts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

// DeleteFolder deletes a folder row. Callers reassign its receipts first.
func (q *queries) DeleteFolder(ctx context.Context, folderID string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM folders WHERE id = ?", folderID)
	if err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	return checkAffected(res, "folder", folderID)
}
