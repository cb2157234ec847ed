// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"time"

	"github.com/mmynk/catalog/internal/models"
)

// ReceiptFilter narrows personal receipt listings. Zero fields do not filter.
type ReceiptFilter struct {
	FolderID string
	Since    time.Time
	Until    time.Time
	Limit    int
}

// Querier is every read and write the domain performs. It is satisfied both
// by the store itself and by the transaction handle passed to WithTx.
//
// Lookups of a single row return an error wrapping errs.ErrNotFound when the
// row does not exist.
type Querier interface {
	// UpsertUser inserts the user or refreshes its email and display name.
	UpsertUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByDisplayName(ctx context.Context, displayName string) (*models.User, error)

	// CreateGroup persists the group and adds the creator as its first member.
	CreateGroup(ctx context.Context, group *models.Group) error
	// GetGroup returns the group with its members ordered by join time.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)
	RenameGroup(ctx context.Context, groupID, name string) error
	DeleteGroup(ctx context.Context, groupID string) error
	AddGroupMember(ctx context.Context, member *models.GroupMember) error
	RemoveGroupMember(ctx context.Context, groupID, userID string) error

	CreateFolder(ctx context.Context, folder *models.Folder) error
	GetFolder(ctx context.Context, folderID string) (*models.Folder, error)
	ListFolders(ctx context.Context, userID string) ([]*models.Folder, error)
	// EnsureDefaultFolder returns the user's All folder, creating it if needed.
	EnsureDefaultFolder(ctx context.Context, userID string) (*models.Folder, error)
	UpdateFolder(ctx context.Context, folder *models.Folder) error
	// ReassignFolderReceipts moves every receipt in fromFolderID to the target
	// folder and resets their color to the target's color.
	ReassignFolderReceipts(ctx context.Context, fromFolderID string, to *models.Folder) (int64, error)
	DeleteFolder(ctx context.Context, folderID string) error

	// CreateReceipt persists the receipt and its items. Splits are written
	// separately through ReplaceSplits.
	CreateReceipt(ctx context.Context, receipt *models.Receipt) error
	// GetReceipt returns the receipt with its items and splits.
	GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error)
	// UpdateReceipt overwrites the receipt row and replaces all of its items.
	UpdateReceipt(ctx context.Context, receipt *models.Receipt) error
	DeleteReceipt(ctx context.Context, receiptID string) error
	// ListUserReceipts returns personal receipts newest first, without items
	// or splits.
	ListUserReceipts(ctx context.Context, userID string, filter ReceiptFilter) ([]*models.Receipt, error)
	ListGroupReceipts(ctx context.Context, groupID string) ([]*models.Receipt, error)

	// ListSplits returns the splits of one receipt with member user ids.
	ListSplits(ctx context.Context, receiptID string) ([]models.Split, error)
	ListGroupSplits(ctx context.Context, groupID string) ([]models.Split, error)
	// ReplaceSplits deletes all splits of a receipt and inserts the given rows.
	ReplaceSplits(ctx context.Context, receiptID string, splits []models.Split) error
	UpdateSplit(ctx context.Context, split *models.Split) error

	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	GetSubscription(ctx context.Context, subID string) (*models.Subscription, error)
	UpdateSubscription(ctx context.Context, sub *models.Subscription) error
	DeleteSubscription(ctx context.Context, subID string) error
	// ListSubscriptions returns the user's personal subscriptions and those of
	// every group the user belongs to, ordered by renewal date.
	ListSubscriptions(ctx context.Context, userID string) ([]*models.Subscription, error)
	// ListUpcomingRenewals is ListSubscriptions restricted to renewals on or
	// after from.
	ListUpcomingRenewals(ctx context.Context, userID string, from time.Time, limit int) ([]*models.Subscription, error)
	ListRenewalsOn(ctx context.Context, date time.Time) ([]*models.Subscription, error)

	// UpsertInsight writes the snapshot, replacing any row with the same
	// user, period and date.
	UpsertInsight(ctx context.Context, insight *models.Insight) error
	// LatestInsight returns the newest snapshot dated on or before onOrBefore.
	LatestInsight(ctx context.Context, userID string, period models.Period, onOrBefore time.Time) (*models.Insight, error)

	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID string, includeDismissed bool) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
	DismissNotification(ctx context.Context, userID, notificationID string) error
}

// Store defines the interface for catalog storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	Querier

	// WithTx runs fn in a single transaction, committing when fn returns nil.
	// Conflicts are retried once; a second conflict returns errs.ErrTransient.
	WithTx(ctx context.Context, fn func(q Querier) error) error

	// Close releases any resources held by the store.
	Close() error
}
