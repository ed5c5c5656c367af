package chat

import "time"

// Session captures the recent history of one conversation. History is
// bounded; the store evicts the oldest message once the cap is reached.
type Session struct {
	ID           string    `json:"id"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}
