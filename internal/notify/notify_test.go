package notify

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/catalog/internal/models"
	"github.com/mmynk/catalog/internal/storage"
	"github.com/mmynk/catalog/internal/storage/sqlite"
)

func newStore(t *testing.T, userIDs ...string) storage.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	for _, id := range userIDs {
		require.NoError(t, store.UpsertUser(context.Background(), &models.User{ID: id, Email: id + "@example.com", DisplayName: id}))
	}
	return store
}

type recordingPublisher struct {
	events []*Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e *Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func TestEventFromJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"type":"group_member_added","recipients":["u1"],"title":"t"}`, false},
		{"missing type", `{"recipients":["u1"]}`, true},
		{"malformed", `{"type":`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := EventFromJSON([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"u1"}, e.Recipients)
		})
	}
}

func TestReceiptAddedSkipsActor(t *testing.T) {
	group := &models.Group{ID: "g1", Name: "Trip", Members: []models.GroupMember{{UserID: "u1"}, {UserID: "u2"}, {UserID: "u3"}}}
	receipt := &models.Receipt{ID: "r1", Merchant: "Dinner", TotalAmount: decimal.RequireFromString("42.5"), Currency: "USD"}

	e := ReceiptAdded(group, receipt, "u2")
	assert.Equal(t, models.NotificationReceiptAdded, e.Type)
	assert.Equal(t, []string{"u1", "u3"}, e.Recipients)
	assert.Equal(t, "Dinner added to Trip: 42.50 USD", e.Message)
	assert.Equal(t, "r1", e.Data["receipt_id"])
}

func TestHandlerStoresPerRecipient(t *testing.T) {
	store := newStore(t, "u1", "u2")
	ctx := context.Background()
	h := NewHandler(store)

	err := h.Handle(ctx, &Event{
		Type:       models.NotificationMemberAdded,
		Recipients: []string{"u1", "u2", "u1", "ghost"},
		Title:      "Group membership",
		Message:    "u3 joined Trip",
		Data:       map[string]string{"group_id": "g1"},
	})
	require.NoError(t, err)

	for _, id := range []string{"u1", "u2"} {
		got, err := store.ListNotifications(ctx, id, false)
		require.NoError(t, err)
		require.Len(t, got, 1, id)
		assert.Equal(t, "u3 joined Trip", got[0].Message)
		assert.Equal(t, "g1", got[0].Data["group_id"])
		assert.False(t, got[0].IsRead)
	}
}

func TestDirectPublisherWithoutRecipients(t *testing.T) {
	store := newStore(t, "u1")
	p := NewDirectPublisher(NewHandler(store))
	require.NoError(t, p.Publish(context.Background(), &Event{Type: models.NotificationMemberAdded}))

	got, err := store.ListNotifications(context.Background(), "u1", true)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRenewalReminder(t *testing.T) {
	store := newStore(t, "u1", "u2")
	ctx := context.Background()
	now := time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC)

	group := &models.Group{CreatorID: "u1", Name: "Flat"}
	require.NoError(t, store.CreateGroup(ctx, group))
	require.NoError(t, store.AddGroupMember(ctx, &models.GroupMember{GroupID: group.ID, UserID: "u2"}))

	subs := []*models.Subscription{
		{UserID: "u1", Merchant: "Music", RenewalDate: tomorrow},
		{GroupID: group.ID, Merchant: "Internet", RenewalDate: tomorrow},
		{UserID: "u2", Merchant: "Later", RenewalDate: tomorrow.AddDate(0, 0, 1)},
	}
	for _, s := range subs {
		s.TotalAmount = decimal.NewFromInt(10)
		s.Currency = "USD"
		s.BillingPeriod = models.BillingMonthly
		require.NoError(t, store.CreateSubscription(ctx, s))
	}

	pub := &recordingPublisher{}
	reminder := NewRenewalReminder(store, pub, func() time.Time { return now })

	sent, err := reminder.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	byMerchant := map[string][]string{}
	for _, e := range pub.events {
		assert.Equal(t, models.NotificationSubscriptionRenewal, e.Type)
		assert.Equal(t, "2024-05-16", e.Data["renewal_date"])
		byMerchant[e.Data["subscription_id"]] = e.Recipients
	}
	assert.Equal(t, []string{"u1"}, byMerchant[subs[0].ID])
	assert.ElementsMatch(t, []string{"u1", "u2"}, byMerchant[subs[1].ID])

	sent, err = reminder.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent, "a renewal date is swept once")
}

func TestRenewalReminderContinuesAfterPublishFailure(t *testing.T) {
	store := newStore(t, "u1")
	ctx := context.Background()
	require.NoError(t, store.CreateSubscription(ctx, &models.Subscription{
		UserID: "u1", Merchant: "Music", TotalAmount: decimal.NewFromInt(5), Currency: "USD",
		RenewalDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), BillingPeriod: models.BillingMonthly,
	}))

	pub := &recordingPublisher{err: errors.New("broker down")}
	reminder := NewRenewalReminder(store, pub, func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) })
	sent, err := reminder.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{40, 30 * time.Second},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}
