package domain

import "time"

// Lead is an exchange request submitted from the Mini App by an
// authenticated user. Meta is an opaque JSON object supplied by the client;
// the backend stores and forwards it without interpreting it.
type Lead struct {
	ID            string
	TelegramID    string
	Username      string
	City          string
	ExchangeType  string
	ReceiveType   string
	Sum           string
	WalletAddress string
	Meta          map[string]any
	CreatedAt     time.Time
}
