package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/catalog/pkg/api"
)

func (e *testEnv) createSubscription(t *testing.T, userID string, req *api.CreateSubscriptionRequest) *api.Subscription {
	t.Helper()
	resp, err := e.subscriptionClient.CreateSubscription(context.Background(), as(userID, req))
	if err != nil {
		t.Fatalf("CreateSubscription failed: %v", err)
	}
	return resp.Msg.Subscription
}

func TestSubscriptionLifecycle(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	sub := env.createSubscription(t, "alice", &api.CreateSubscriptionRequest{
		Merchant:      "Streaming",
		TotalAmount:   decimal.RequireFromString("15.49"),
		Currency:      "usd",
		RenewalDate:   "2024-01-31",
		BillingPeriod: "monthly",
		PaymentMethod: "credit",
	})
	if sub.ID == "" || sub.UserID != "alice" {
		t.Fatalf("unexpected subscription %+v", sub)
	}
	if sub.Currency != "USD" || sub.BillingPeriod != "Monthly" || sub.PaymentMethod != "Credit" {
		t.Errorf("fields not normalized: %+v", sub)
	}

	advanced, err := env.subscriptionClient.AdvanceRenewal(ctx, as("alice", &api.AdvanceRenewalRequest{SubscriptionID: sub.ID}))
	if err != nil {
		t.Fatalf("AdvanceRenewal failed: %v", err)
	}
	if got := advanced.Msg.Subscription.RenewalDate; got != "2024-02-29" {
		t.Errorf("renewal: expected 2024-02-29, got %s", got)
	}

	amount := decimal.RequireFromString("17.99")
	period := "Yearly"
	updated, err := env.subscriptionClient.UpdateSubscription(ctx, as("alice", &api.UpdateSubscriptionRequest{
		SubscriptionID: sub.ID, TotalAmount: &amount, BillingPeriod: &period,
	}))
	if err != nil {
		t.Fatalf("UpdateSubscription failed: %v", err)
	}
	assertAmount(t, "total", updated.Msg.Subscription.TotalAmount, "17.99")
	if updated.Msg.Subscription.BillingPeriod != "Yearly" || updated.Msg.Subscription.Merchant != "Streaming" {
		t.Errorf("unexpected update result %+v", updated.Msg.Subscription)
	}

	list, err := env.subscriptionClient.ListSubscriptions(ctx, as("alice", &api.ListSubscriptionsRequest{}))
	if err != nil {
		t.Fatalf("ListSubscriptions failed: %v", err)
	}
	if len(list.Msg.Subscriptions) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(list.Msg.Subscriptions))
	}

	_, err = env.subscriptionClient.DeleteSubscription(ctx, as("bob", &api.DeleteSubscriptionRequest{SubscriptionID: sub.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	if _, err := env.subscriptionClient.DeleteSubscription(ctx, as("alice", &api.DeleteSubscriptionRequest{SubscriptionID: sub.ID})); err != nil {
		t.Fatalf("DeleteSubscription failed: %v", err)
	}
	_, err = env.subscriptionClient.AdvanceRenewal(ctx, as("alice", &api.AdvanceRenewalRequest{SubscriptionID: sub.ID}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestCreateSubscription_Validation(t *testing.T) {
	env := setupTestServer(t)

	tests := []struct {
		name string
		req  *api.CreateSubscriptionRequest
	}{
		{"missing merchant", &api.CreateSubscriptionRequest{TotalAmount: decimal.NewFromInt(5), Currency: "USD", RenewalDate: "2024-01-01", BillingPeriod: "Monthly"}},
		{"bad period", &api.CreateSubscriptionRequest{Merchant: "Gym", TotalAmount: decimal.NewFromInt(5), Currency: "USD", RenewalDate: "2024-01-01", BillingPeriod: "Fortnightly"}},
		{"bad date", &api.CreateSubscriptionRequest{Merchant: "Gym", TotalAmount: decimal.NewFromInt(5), Currency: "USD", RenewalDate: "01/01/2024", BillingPeriod: "Monthly"}},
		{"missing date", &api.CreateSubscriptionRequest{Merchant: "Gym", TotalAmount: decimal.NewFromInt(5), Currency: "USD", BillingPeriod: "Monthly"}},
		{"negative total", &api.CreateSubscriptionRequest{Merchant: "Gym", TotalAmount: decimal.NewFromInt(-5), Currency: "USD", RenewalDate: "2024-01-01", BillingPeriod: "Monthly"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.subscriptionClient.CreateSubscription(context.Background(), as("alice", tt.req))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}
}

func TestAdvanceRenewal_Custom(t *testing.T) {
	env := setupTestServer(t)
	sub := env.createSubscription(t, "alice", &api.CreateSubscriptionRequest{
		Merchant: "Insurance", TotalAmount: decimal.NewFromInt(300), Currency: "USD",
		RenewalDate: "2024-06-15", BillingPeriod: "Custom",
	})

	_, err := env.subscriptionClient.AdvanceRenewal(context.Background(), as("alice", &api.AdvanceRenewalRequest{SubscriptionID: sub.ID}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestListUpcomingRenewals(t *testing.T) {
	env := setupTestServer(t)
	env.subscriptions.now = func() time.Time { return time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC) }

	dates := []string{"2024-05-09", "2024-05-10", "2024-05-20", "2024-06-01", "2024-05-12", "2024-07-01", "2024-05-11"}
	for i, date := range dates {
		env.createSubscription(t, "alice", &api.CreateSubscriptionRequest{
			Merchant:      fmt.Sprintf("Service %d", i),
			TotalAmount:   decimal.NewFromInt(10),
			Currency:      "USD",
			RenewalDate:   date,
			BillingPeriod: "Monthly",
		})
	}

	resp, err := env.subscriptionClient.ListUpcomingRenewals(context.Background(), as("alice", &api.ListUpcomingRenewalsRequest{}))
	if err != nil {
		t.Fatalf("ListUpcomingRenewals failed: %v", err)
	}

	want := []string{"2024-05-10", "2024-05-11", "2024-05-12", "2024-05-20", "2024-06-01"}
	if len(resp.Msg.Subscriptions) != len(want) {
		t.Fatalf("expected %d renewals, got %d", len(want), len(resp.Msg.Subscriptions))
	}
	for i, sub := range resp.Msg.Subscriptions {
		if sub.RenewalDate != want[i] {
			t.Errorf("renewal %d: expected %s, got %s", i, want[i], sub.RenewalDate)
		}
	}
}

func TestGroupSubscriptionAccess(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createGroup(t, "Flat", "alice", "bob")

	sub := env.createSubscription(t, "bob", &api.CreateSubscriptionRequest{
		GroupID: group.ID, Merchant: "Internet", TotalAmount: decimal.NewFromInt(60),
		Currency: "USD", RenewalDate: "2024-03-01", BillingPeriod: "Monthly",
	})
	if sub.GroupID != group.ID || sub.UserID != "" {
		t.Errorf("expected a group-owned subscription, got %+v", sub)
	}

	list, err := env.subscriptionClient.ListSubscriptions(ctx, as("alice", &api.ListSubscriptionsRequest{}))
	if err != nil {
		t.Fatalf("ListSubscriptions failed: %v", err)
	}
	if len(list.Msg.Subscriptions) != 1 {
		t.Errorf("alice should see the group subscription, got %d", len(list.Msg.Subscriptions))
	}

	merchant := "Fiber"
	_, err = env.subscriptionClient.UpdateSubscription(ctx, as("mallory", &api.UpdateSubscriptionRequest{SubscriptionID: sub.ID, Merchant: &merchant}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = env.subscriptionClient.CreateSubscription(ctx, as("mallory", &api.CreateSubscriptionRequest{
		GroupID: group.ID, Merchant: "Sneaky", TotalAmount: decimal.NewFromInt(1),
		Currency: "USD", RenewalDate: "2024-03-01", BillingPeriod: "Monthly",
	}))
	assertCode(t, err, connect.CodePermissionDenied)
}
