package chat

// BackendHealth reports a single reachability probe against the upstream
// processing backend. Available is recomputed on every health request, never
// cached: reachability can flip between a health check and the next chat.
type BackendHealth struct {
	URL       string `json:"url"`
	Available bool   `json:"available"`
}

// Health is the /health response envelope.
type Health struct {
	Status    string        `json:"status"`
	Timestamp string        `json:"timestamp"`
	Service   string        `json:"service"`
	Backend   BackendHealth `json:"backend"`
}
