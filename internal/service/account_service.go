package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/catalog/internal/auth"
	"github.com/mmynk/catalog/internal/middleware"
	"github.com/mmynk/catalog/internal/storage"
	"github.com/mmynk/catalog/pkg/api"
	"github.com/mmynk/catalog/pkg/api/apiconnect"
)

var _ apiconnect.AccountServiceHandler = (*AccountService)(nil)

// AccountService implements the Connect AccountService.
type AccountService struct {
	store    storage.Store
	accounts *accounts
}

// NewAccountService creates a new AccountService with the given storage backend.
func NewAccountService(store storage.Store) *AccountService {
	return &AccountService{store: store, accounts: newAccounts(store)}
}

// EnsureAccount creates or refreshes the caller's user row from the token
// claims and makes sure the All folder exists.
func (s *AccountService) EnsureAccount(ctx context.Context, req *connect.Request[api.EnsureAccountRequest]) (*connect.Response[api.EnsureAccountResponse], error) {
	id, ok := middleware.GetIdentity(ctx)
	if !ok || id.UserID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	slog.Info("EnsureAccount request received", "user_id", id.UserID)

	if _, err := s.accounts.provision(ctx, id); err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, id.UserID)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.EnsureAccountResponse{User: toAPIUser(user)}), nil
}

// GetMe returns the caller's account.
func (s *AccountService) GetMe(ctx context.Context, req *connect.Request[api.GetMeRequest]) (*connect.Response[api.GetMeResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.GetMeResponse{User: toAPIUser(user)}), nil
}

// ListNotifications returns the caller's notifications newest first.
func (s *AccountService) ListNotifications(ctx context.Context, req *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}

	notifications, err := s.store.ListNotifications(ctx, userID, req.Msg.IncludeDismissed)
	if err != nil {
		slog.Error("ListNotifications failed", "user_id", userID, "error", err)
		return nil, connectError(err)
	}

	out := make([]*api.Notification, len(notifications))
	for i, n := range notifications {
		out[i] = toAPINotification(n)
	}
	return connect.NewResponse(&api.ListNotificationsResponse{Notifications: out}), nil
}

// MarkNotificationRead marks one of the caller's notifications as read.
func (s *AccountService) MarkNotificationRead(ctx context.Context, req *connect.Request[api.MarkNotificationReadRequest]) (*connect.Response[api.MarkNotificationReadResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("notification_id", req.Msg.NotificationID); err != nil {
		return nil, err
	}

	if err := s.store.MarkNotificationRead(ctx, userID, req.Msg.NotificationID); err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.MarkNotificationReadResponse{}), nil
}

// DismissNotification hides one of the caller's notifications.
func (s *AccountService) DismissNotification(ctx context.Context, req *connect.Request[api.DismissNotificationRequest]) (*connect.Response[api.DismissNotificationResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("notification_id", req.Msg.NotificationID); err != nil {
		return nil, err
	}

	if err := s.store.DismissNotification(ctx, userID, req.Msg.NotificationID); err != nil {
		return nil, connectError(err)
	}
	slog.Info("Notification dismissed", "user_id", userID, "notification_id", req.Msg.NotificationID)
	return connect.NewResponse(&api.DismissNotificationResponse{}), nil
}
