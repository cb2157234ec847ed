package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/catalog/internal/errs"
	"github.com/mmynk/catalog/internal/models"
	"github.com/mmynk/catalog/internal/storage"
	"github.com/mmynk/catalog/pkg/api"
	"github.com/mmynk/catalog/pkg/api/apiconnect"
)

const upcomingRenewalsLimit = 5

var _ apiconnect.SubscriptionServiceHandler = (*SubscriptionService)(nil)

// SubscriptionService implements the Connect SubscriptionService.
type SubscriptionService struct {
	store    storage.Store
	accounts *accounts
	now      func() time.Time
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(store storage.Store) *SubscriptionService {
	return &SubscriptionService{store: store, accounts: newAccounts(store), now: time.Now}
}

// CreateSubscription creates a personal subscription, or a group one when
// GroupID is set.
func (s *SubscriptionService) CreateSubscription(ctx context.Context, req *connect.Request[api.CreateSubscriptionRequest]) (*connect.Response[api.CreateSubscriptionResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	m := req.Msg
	slog.Info("CreateSubscription request received", "merchant", m.Merchant, "group_id", m.GroupID)

	renewal, err := parseOptionalDate("renewal date", m.RenewalDate)
	if err != nil {
		return nil, connectError(err)
	}
	params := models.SubscriptionParams{
		Merchant:      m.Merchant,
		TotalAmount:   m.TotalAmount,
		Currency:      m.Currency,
		RenewalDate:   renewal,
		BillingPeriod: m.BillingPeriod,
		PaymentMethod: m.PaymentMethod,
	}

	var sub *models.Subscription
	err = s.store.WithTx(ctx, func(q storage.Querier) error {
		if m.GroupID != "" {
			if _, err := memberGroup(ctx, q, m.GroupID, userID); err != nil {
				return err
			}
			params.GroupID = m.GroupID
		} else {
			params.UserID = userID
		}
		created, err := models.NewSubscription(params)
		if err != nil {
			return err
		}
		sub = created
		return q.CreateSubscription(ctx, created)
	})
	if err != nil {
		slog.Error("CreateSubscription failed", "error", err)
		return nil, connectError(err)
	}

	slog.Info("Subscription created", "subscription_id", sub.ID)
	return connect.NewResponse(&api.CreateSubscriptionResponse{Subscription: toAPISubscription(sub)}), nil
}

// ListSubscriptions lists the caller's personal and group subscriptions by
// renewal date.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, req *connect.Request[api.ListSubscriptionsRequest]) (*connect.Response[api.ListSubscriptionsResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}

	subs, err := s.store.ListSubscriptions(ctx, userID)
	if err != nil {
		slog.Error("ListSubscriptions failed", "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.ListSubscriptionsResponse{Subscriptions: toAPISubscriptions(subs)}), nil
}

// UpdateSubscription applies the present fields.
func (s *SubscriptionService) UpdateSubscription(ctx context.Context, req *connect.Request[api.UpdateSubscriptionRequest]) (*connect.Response[api.UpdateSubscriptionResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	m := req.Msg
	if err := requireField("subscription_id", m.SubscriptionID); err != nil {
		return nil, err
	}

	update := models.SubscriptionUpdate{
		Merchant:      m.Merchant,
		TotalAmount:   m.TotalAmount,
		Currency:      m.Currency,
		BillingPeriod: m.BillingPeriod,
		PaymentMethod: m.PaymentMethod,
	}
	if m.RenewalDate != nil {
		renewal, err := parseOptionalDate("renewal date", *m.RenewalDate)
		if err != nil {
			return nil, connectError(err)
		}
		update.RenewalDate = &renewal
	}

	var sub *models.Subscription
	err = s.store.WithTx(ctx, func(q storage.Querier) error {
		existing, err := q.GetSubscription(ctx, m.SubscriptionID)
		if err != nil {
			return err
		}
		if err := checkSubscriptionAccess(ctx, q, existing, userID); err != nil {
			return err
		}
		if err := update.Apply(existing); err != nil {
			return err
		}
		sub = existing
		return q.UpdateSubscription(ctx, existing)
	})
	if err != nil {
		slog.Error("UpdateSubscription failed", "subscription_id", m.SubscriptionID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Subscription updated", "subscription_id", sub.ID)
	return connect.NewResponse(&api.UpdateSubscriptionResponse{Subscription: toAPISubscription(sub)}), nil
}

// DeleteSubscription removes a subscription.
func (s *SubscriptionService) DeleteSubscription(ctx context.Context, req *connect.Request[api.DeleteSubscriptionRequest]) (*connect.Response[api.DeleteSubscriptionResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("subscription_id", req.Msg.SubscriptionID); err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(q storage.Querier) error {
		sub, err := q.GetSubscription(ctx, req.Msg.SubscriptionID)
		if err != nil {
			return err
		}
		if err := checkSubscriptionAccess(ctx, q, sub, userID); err != nil {
			return err
		}
		return q.DeleteSubscription(ctx, sub.ID)
	})
	if err != nil {
		slog.Error("DeleteSubscription failed", "subscription_id", req.Msg.SubscriptionID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Subscription deleted", "subscription_id", req.Msg.SubscriptionID)
	return connect.NewResponse(&api.DeleteSubscriptionResponse{}), nil
}

// ListUpcomingRenewals returns the next renewals on or after today.
func (s *SubscriptionService) ListUpcomingRenewals(ctx context.Context, req *connect.Request[api.ListUpcomingRenewalsRequest]) (*connect.Response[api.ListUpcomingRenewalsResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}

	subs, err := s.store.ListUpcomingRenewals(ctx, userID, models.DateOf(s.now()), upcomingRenewalsLimit)
	if err != nil {
		slog.Error("ListUpcomingRenewals failed", "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.ListUpcomingRenewalsResponse{Subscriptions: toAPISubscriptions(subs)}), nil
}

// AdvanceRenewal moves a subscription to the renewal after its current one.
func (s *SubscriptionService) AdvanceRenewal(ctx context.Context, req *connect.Request[api.AdvanceRenewalRequest]) (*connect.Response[api.AdvanceRenewalResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("subscription_id", req.Msg.SubscriptionID); err != nil {
		return nil, err
	}

	var sub *models.Subscription
	err = s.store.WithTx(ctx, func(q storage.Querier) error {
		existing, err := q.GetSubscription(ctx, req.Msg.SubscriptionID)
		if err != nil {
			return err
		}
		if err := checkSubscriptionAccess(ctx, q, existing, userID); err != nil {
			return err
		}
		if existing.BillingPeriod == models.BillingCustom {
			return errs.NewValidationError("custom billing periods have no next renewal; set the renewal date instead")
		}
		existing.RenewalDate = existing.NextRenewal()
		sub = existing
		return q.UpdateSubscription(ctx, existing)
	})
	if err != nil {
		slog.Error("AdvanceRenewal failed", "subscription_id", req.Msg.SubscriptionID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Subscription renewal advanced", "subscription_id", sub.ID, "renewal_date", models.FormatDate(sub.RenewalDate))
	return connect.NewResponse(&api.AdvanceRenewalResponse{Subscription: toAPISubscription(sub)}), nil
}
