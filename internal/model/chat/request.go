package chat

// Request carries one inbound chat exchange through the gateway.
// Audio is required for voice requests and must declare an audio/* media
// type; it is never populated for text requests.
type Request struct {
	Message   string
	Kind      string
	SessionID string
	UserID    string
	Username  string

	Audio          []byte
	AudioFilename  string
	AudioMediaType string
}

// Response is the unified reply envelope. The caller cannot tell from the
// shape alone whether the upstream backend or the local responder produced
// it. AudioURL is set only when a voice reply has synthesized audio.
type Response struct {
	Message  string  `json:"message"`
	Kind     string  `json:"type"`
	AudioURL *string `json:"audioUrl"`
}
