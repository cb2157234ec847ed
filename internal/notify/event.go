// Package notify turns domain events into per-user notifications. Events are
// published to AMQP when a broker is configured and persisted by a worker.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmynk/catalog/internal/models"
)

// Event is one notification fan-out: the same title and message go to every
// recipient.
type Event struct {
	Type       models.NotificationType `json:"type"`
	Recipients []string                `json:"recipients"`
	Title      string                  `json:"title"`
	Message    string                  `json:"message"`
	Data       map[string]string       `json:"data,omitempty"`
	Timestamp  time.Time               `json:"timestamp"`
}

// ToJSON converts the event to JSON bytes.
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes an event published by ToJSON.
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Type == "" {
		return nil, fmt.Errorf("event has no type")
	}
	return &e, nil
}

// Publisher delivers events. Publishing is best effort for callers: a failed
// publish never undoes the change that caused it.
type Publisher interface {
	Publish(ctx context.Context, e *Event) error
}

// ReceiptAdded notifies every group member except the one who added it.
func ReceiptAdded(group *models.Group, receipt *models.Receipt, actorID string) *Event {
	return &Event{
		Type:       models.NotificationReceiptAdded,
		Recipients: recipientsExcept(group.MemberIDs(), actorID),
		Title:      "New group receipt",
		Message: fmt.Sprintf("%s added to %s: %s %s",
			receipt.Merchant, group.Name, receipt.TotalAmount.StringFixed(2), receipt.Currency),
		Data: map[string]string{
			"group_id":   group.ID,
			"receipt_id": receipt.ID,
		},
		Timestamp: time.Now(),
	}
}

// MemberAdded notifies the new member and everyone already in the group.
func MemberAdded(group *models.Group, user *models.User, actorID string) *Event {
	return &Event{
		Type:       models.NotificationMemberAdded,
		Recipients: recipientsExcept(group.MemberIDs(), actorID),
		Title:      "Group membership",
		Message:    fmt.Sprintf("%s joined %s", user.DisplayName, group.Name),
		Data: map[string]string{
			"group_id": group.ID,
			"user_id":  user.ID,
		},
		Timestamp: time.Now(),
	}
}

// RenewalDue reminds recipients that a subscription renews on its renewal date.
func RenewalDue(sub *models.Subscription, recipients []string) *Event {
	data := map[string]string{
		"subscription_id": sub.ID,
		"renewal_date":    models.FormatDate(sub.RenewalDate),
	}
	if sub.GroupID != "" {
		data["group_id"] = sub.GroupID
	}
	return &Event{
		Type:       models.NotificationSubscriptionRenewal,
		Recipients: recipients,
		Title:      "Subscription renewing",
		Message: fmt.Sprintf("%s renews on %s for %s %s",
			sub.Merchant, models.FormatDate(sub.RenewalDate), sub.TotalAmount.StringFixed(2), sub.Currency),
		Data:      data,
		Timestamp: time.Now(),
	}
}

func recipientsExcept(ids []string, skip string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != skip {
			out = append(out, id)
		}
	}
	return out
}
