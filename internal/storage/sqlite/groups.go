package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/catalog/internal/errs"
	"github.com/mmynk/catalog/internal/models"
)

// CreateGroup persists a new group and adds the creator as a member.
func (q *queries) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = q.unix()
	}

	return q.atomic(ctx, func(q *queries) error {
		_, err := q.db.ExecContext(ctx,
			"INSERT INTO groups (id, creator_id, name, created_at) VALUES (?, ?, ?, ?)",
			group.ID, group.CreatorID, group.Name, group.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}

		creator := models.GroupMember{GroupID: group.ID, UserID: group.CreatorID, JoinedAt: group.CreatedAt}
		if err := q.AddGroupMember(ctx, &creator); err != nil {
			return err
		}
		group.Members = []models.GroupMember{creator}
		return nil
	})
}

// GetGroup retrieves a group by ID, including its members.
func (q *queries) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := q.db.QueryRowContext(ctx,
		"SELECT id, creator_id, name, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.CreatorID, &group.Name, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, notFound("group", groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := q.listMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.Members = members
	return group, nil
}

func (q *queries) listMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, group_id, user_id, joined_at FROM group_members WHERE group_id = ? ORDER BY joined_at, user_id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	var members []models.GroupMember
	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return members, nil
}

// ListGroupsForUser returns every group the user belongs to, newest first.
func (q *queries) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT g.id, g.creator_id, g.name, g.created_at
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = ?
		ORDER BY g.created_at DESC, g.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	var groups []*models.Group
	for rows.Next() {
		g := &models.Group{}
		if err := rows.Scan(&g.ID, &g.CreatorID, &g.Name, &g.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	// Members are loaded after the cursor closes; a transaction has one connection.
	for _, g := range groups {
		if g.Members, err = q.listMembers(ctx, g.ID); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// RenameGroup updates a group's display name.
func (q *queries) RenameGroup(ctx context.Context, groupID, name string) error {
	res, err := q.db.ExecContext(ctx, "UPDATE groups SET name = ? WHERE id = ?", name, groupID)
	if err != nil {
		return fmt.Errorf("failed to rename group: %w", err)
	}
	return checkAffected(res, "group", groupID)
}

// DeleteGroup deletes a group. Memberships, receipts, splits and
// subscriptions cascade.
func (q *queries) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return checkAffected(res, "group", groupID)
}

// AddGroupMember inserts a membership. Adding an existing member is a
// validation error.
func (q *queries) AddGroupMember(ctx context.Context, member *models.GroupMember) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.JoinedAt == 0 {
		member.JoinedAt = q.unix()
	}

	_, err := q.db.ExecContext(ctx,
		"INSERT INTO group_members (id, group_id, user_id, joined_at) VALUES (?, ?, ?, ?)",
		member.ID, member.GroupID, member.UserID, member.JoinedAt,
	)
	if isUniqueViolation(err) {
		return errs.NewValidationError("user %s is already a member of group %s", member.UserID, member.GroupID)
	}
	if err != nil {
		return fmt.Errorf("failed to add group member: %w", err)
	}
	return nil
}

// RemoveGroupMember deletes a membership; the member's splits cascade.
func (q *queries) RemoveGroupMember(ctx context.Context, groupID, userID string) error {
	res, err := q.db.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove group member: %w", err)
	}
	return checkAffected(res, "group member", userID)
}
