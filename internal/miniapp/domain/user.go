package domain

import "time"

// User is the persistent identity for a Telegram account. TelegramID is kept
// as a string end to end: Telegram ids can exceed the safe integer range of
// some clients, and the exact value is the uniqueness key.
type User struct {
	ID         string
	TelegramID string
	Username   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
