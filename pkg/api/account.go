package api

// User is an account as other members see it.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt"`
}

// Notification is one stored notification.
type Notification struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Data        map[string]string `json:"data,omitempty"`
	IsRead      bool              `json:"isRead"`
	IsDismissed bool              `json:"isDismissed"`
	CreatedAt   int64             `json:"createdAt"`
}

type EnsureAccountRequest struct{}

type EnsureAccountResponse struct {
	User *User `json:"user"`
}

type GetMeRequest struct{}

type GetMeResponse struct {
	User *User `json:"user"`
}

type ListNotificationsRequest struct {
	IncludeDismissed bool `json:"includeDismissed"`
}

type ListNotificationsResponse struct {
	Notifications []*Notification `json:"notifications"`
}

type MarkNotificationReadRequest struct {
	NotificationID string `json:"notificationId"`
}

type MarkNotificationReadResponse struct{}

type DismissNotificationRequest struct {
	NotificationID string `json:"notificationId"`
}

type DismissNotificationResponse struct{}
