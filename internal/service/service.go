// Package service implements the catalog.v1 Connect services on top of the
// store, the split allocator and the insights aggregator.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"connectrpc.com/connect"

	"github.com/mmynk/catalog/internal/auth"
	"github.com/mmynk/catalog/internal/errs"
	"github.com/mmynk/catalog/internal/middleware"
	"github.com/mmynk/catalog/internal/models"
	"github.com/mmynk/catalog/internal/notify"
	"github.com/mmynk/catalog/internal/storage"
)

// connectError maps domain errors onto Connect codes. Errors that already
// carry a code pass through.
func connectError(err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return err
	case errs.IsValidation(err):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, errs.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, errs.ErrPermissionDenied):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, errs.ErrTransient):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func requireField(name, value string) error {
	if value == "" {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s required", name))
	}
	return nil
}

// accounts provisions the caller's user row and All folder the first time a
// process sees them, so every service can rely on both existing.
type accounts struct {
	store       storage.Store
	provisioned sync.Map
}

func newAccounts(store storage.Store) *accounts {
	return &accounts{store: store}
}

// caller returns the authenticated user id, provisioning the account when
// needed.
func (a *accounts) caller(ctx context.Context) (string, error) {
	id, ok := middleware.GetIdentity(ctx)
	if !ok || id.UserID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	if _, done := a.provisioned.Load(id.UserID); done {
		return id.UserID, nil
	}
	if _, err := a.provision(ctx, id); err != nil {
		return "", err
	}
	return id.UserID, nil
}

func (a *accounts) provision(ctx context.Context, id middleware.Identity) (*models.User, error) {
	user := &models.User{ID: id.UserID, Email: id.Email, DisplayName: id.DisplayName}
	err := a.store.WithTx(ctx, func(q storage.Querier) error {
		if err := q.UpsertUser(ctx, user); err != nil {
			return err
		}
		_, err := q.EnsureDefaultFolder(ctx, user.ID)
		return err
	})
	if err != nil {
		slog.Error("Account provisioning failed", "user_id", id.UserID, "error", err)
		return nil, connectError(err)
	}
	a.provisioned.Store(id.UserID, true)
	return user, nil
}

// memberGroup loads a group and checks that userID belongs to it.
func memberGroup(ctx context.Context, q storage.Querier, groupID, userID string) (*models.Group, error) {
	group, err := q.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, fmt.Errorf("%w: user %s is not a member of group %s", errs.ErrPermissionDenied, userID, groupID)
	}
	return group, nil
}

// checkReceiptAccess allows the owner of a personal receipt and the members
// of a group receipt's group.
func checkReceiptAccess(ctx context.Context, q storage.Querier, receipt *models.Receipt, userID string) error {
	if receipt.IsGroup() {
		_, err := memberGroup(ctx, q, receipt.GroupID, userID)
		return err
	}
	if receipt.UserID != userID {
		return fmt.Errorf("%w: receipt %s belongs to another user", errs.ErrPermissionDenied, receipt.ID)
	}
	return nil
}

func checkSubscriptionAccess(ctx context.Context, q storage.Querier, sub *models.Subscription, userID string) error {
	if sub.GroupID != "" {
		_, err := memberGroup(ctx, q, sub.GroupID, userID)
		return err
	}
	if sub.UserID != userID {
		return fmt.Errorf("%w: subscription %s belongs to another user", errs.ErrPermissionDenied, sub.ID)
	}
	return nil
}

// ownedFolder loads a folder of userID. An empty id selects the All folder.
func ownedFolder(ctx context.Context, q storage.Querier, folderID, userID string) (*models.Folder, error) {
	if folderID == "" {
		return q.EnsureDefaultFolder(ctx, userID)
	}
	folder, err := q.GetFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder.UserID != userID {
		return nil, fmt.Errorf("%w: folder %s belongs to another user", errs.ErrPermissionDenied, folderID)
	}
	return folder, nil
}

// publish sends an event after the write committed. Delivery failures never
// fail the request.
func publish(ctx context.Context, publisher notify.Publisher, e *notify.Event) {
	if publisher == nil || e == nil || len(e.Recipients) == 0 {
		return
	}
	if err := publisher.Publish(ctx, e); err != nil {
		slog.Warn("Failed to publish notification", "type", e.Type, "error", err)
	}
}

// Refresher recomputes a user's spending snapshots.
type Refresher interface {
	Refresh(ctx context.Context, userID, clientIP string) error
}

// refreshInsights runs after a personal write has committed. The write
// stands even when the refresh fails.
func refreshInsights(ctx context.Context, r Refresher, userID string) {
	if r == nil {
		return
	}
	if err := r.Refresh(ctx, userID, middleware.GetClientIP(ctx)); err != nil {
		slog.Error("Insights refresh failed", "user_id", userID, "error", err)
	}
}
