package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/catalog/internal/errs"
	"github.com/mmynk/catalog/internal/metrics"
	"github.com/mmynk/catalog/internal/models"
	"github.com/mmynk/catalog/internal/storage"
)

// Handler persists one Notification row per event recipient.
type Handler struct {
	store storage.Store
}

// NewHandler creates a Handler.
func NewHandler(store storage.Store) *Handler {
	return &Handler{store: store}
}

// Handle stores the event for every recipient that still exists. Either all
// rows are written or none.
func (h *Handler) Handle(ctx context.Context, e *Event) error {
	stored := 0
	err := h.store.WithTx(ctx, func(q storage.Querier) error {
		stored = 0
		for _, userID := range dedupe(e.Recipients) {
			if _, err := q.GetUser(ctx, userID); err != nil {
				if errors.Is(err, errs.ErrNotFound) {
					continue
				}
				return err
			}
			n := &models.Notification{
				UserID:  userID,
				Type:    e.Type,
				Title:   e.Title,
				Message: e.Message,
				Data:    e.Data,
			}
			if err := q.CreateNotification(ctx, n); err != nil {
				return err
			}
			stored++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store notifications: %w", err)
	}
	slog.Debug("Notifications stored", "type", e.Type, "count", stored)
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// DirectPublisher hands events straight to a Handler in the caller's process.
// It is used when no broker is configured.
type DirectPublisher struct {
	handler *Handler
}

// NewDirectPublisher creates a DirectPublisher.
func NewDirectPublisher(handler *Handler) *DirectPublisher {
	return &DirectPublisher{handler: handler}
}

// Publish stores the event immediately.
func (p *DirectPublisher) Publish(ctx context.Context, e *Event) error {
	if len(e.Recipients) == 0 {
		return nil
	}
	if err := p.handler.Handle(ctx, e); err != nil {
		metrics.NotificationsPublished.WithLabelValues(string(e.Type), "error").Inc()
		return err
	}
	metrics.NotificationsPublished.WithLabelValues(string(e.Type), "ok").Inc()
	return nil
}
