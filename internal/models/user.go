package models

// User represents a registered account.
// Credentials live with the identity provider; this row only mirrors the token
// claims so groups and receipts can reference the user.
type User struct {
	// ID is the unique identifier for the user (UUID format, from the token subject).
	ID string

	// Email is the user's email address (unique).
	Email string

	// DisplayName is the username other members use to add this user to a group.
	DisplayName string

	// CreatedAt is the Unix timestamp when the account was provisioned.
	CreatedAt int64
}
