package models

import (
	"strings"

	"github.com/mmynk/catalog/internal/errs"
)

// Group is a set of users sharing receipts and subscriptions.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// CreatorID is the user who created the group. It never changes and the
	// creator cannot leave without deleting the group.
	CreatorID string

	// Name is the display name of the group (e.g., "Roommates").
	Name string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64

	// Members is the current membership, creator included.
	Members []GroupMember
}

// GroupMember joins a user to a group. (GroupID, UserID) is unique.
type GroupMember struct {
	ID       string
	GroupID  string
	UserID   string
	JoinedAt int64
}

// NewGroup validates and builds a group owned by creatorID.
func NewGroup(creatorID, name string) (*Group, error) {
	name = strings.TrimSpace(name)
	if creatorID == "" {
		return nil, errs.NewValidationError("group creator is required")
	}
	if name == "" {
		return nil, errs.NewValidationError("group name is required")
	}
	return &Group{CreatorID: creatorID, Name: name}, nil
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberIDs returns the user ids of all members.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.UserID
	}
	return ids
}
