package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/catalog/internal/errs"
	"github.com/mmynk/catalog/internal/models"
	"github.com/mmynk/catalog/internal/storage"
)

// RenewalReminder publishes a reminder for every subscription renewing
// tomorrow. Each renewal date is swept at most once per process.
type RenewalReminder struct {
	store     storage.Querier
	publisher Publisher
	now       func() time.Time

	mu    sync.Mutex
	swept time.Time
}

// NewRenewalReminder creates a RenewalReminder. A nil clock means time.Now.
func NewRenewalReminder(store storage.Querier, publisher Publisher, now func() time.Time) *RenewalReminder {
	if now == nil {
		now = time.Now
	}
	return &RenewalReminder{store: store, publisher: publisher, now: now}
}

// Run sends tomorrow's reminders and returns how many were published.
func (r *RenewalReminder) Run(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tomorrow := models.DateOf(r.now()).AddDate(0, 0, 1)
	if r.swept.Equal(tomorrow) {
		return 0, nil
	}

	subs, err := r.store.ListRenewalsOn(ctx, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("failed to list renewals: %w", err)
	}

	sent := 0
	for _, sub := range subs {
		recipients, err := r.recipients(ctx, sub)
		if err != nil {
			return sent, err
		}
		if len(recipients) == 0 {
			continue
		}
		if err := r.publisher.Publish(ctx, RenewalDue(sub, recipients)); err != nil {
			slog.Error("Failed to publish renewal reminder", "error", err, "subscription_id", sub.ID)
			continue
		}
		sent++
	}

	r.swept = tomorrow
	slog.Info("Renewal reminders sent", "renewal_date", models.FormatDate(tomorrow), "count", sent)
	return sent, nil
}

func (r *RenewalReminder) recipients(ctx context.Context, sub *models.Subscription) ([]string, error) {
	if sub.GroupID == "" {
		return []string{sub.UserID}, nil
	}
	group, err := r.store.GetGroup(ctx, sub.GroupID)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return group.MemberIDs(), nil
}
