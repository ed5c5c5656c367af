package chat

import "time"

// Message kinds accepted by the gateway.
const (
	KindText  = "text"
	KindVoice = "voice"
)

// Message senders.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Message is a single conversation turn. Immutable once stored.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Kind      string    `json:"type"`
	Sender    string    `json:"sender"`
	CreatedAt time.Time `json:"timestamp"`
}

// ValidKind reports whether k names a supported message kind.
func ValidKind(k string) bool {
	return k == KindText || k == KindVoice
}
