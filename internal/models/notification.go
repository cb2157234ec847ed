package models

// NotificationType classifies notifications shown to a user.
type NotificationType string

const (
	NotificationReceiptAdded        NotificationType = "group_receipt_added"
	NotificationMemberAdded         NotificationType = "group_member_added"
	NotificationSubscriptionRenewal NotificationType = "subscription_renewal"
)

// Notification is an in-app message for one user.
type Notification struct {
	ID      string
	UserID  string
	Type    NotificationType
	Title   string
	Message string

	// Data carries ids the client needs to deep-link, e.g. receipt_id.
	Data map[string]string

	IsRead      bool
	IsDismissed bool
	CreatedAt   int64
}
