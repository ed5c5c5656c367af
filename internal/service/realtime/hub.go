// Package realtime tracks live duplex channels keyed by client identity for
// out-of-band push delivery.
package realtime

import (
	"log"
	"sync"
)

// Sender delivers text over one live connection. Implementations belong to
// the connection's owning goroutine; the hub never closes them.
type Sender interface {
	SendText(text string) error
}

// Hub maps each identity to at most one active connection. A new connect
// for the same identity supersedes the old handle; the superseded owner is
// expected to shut its own connection down.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]Sender
}

// NewHub bootstraps an empty connection registry.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]Sender)}
}

// Connect registers sender for identity, replacing any prior handle.
func (h *Hub) Connect(identity string, sender Sender) {
	h.mu.Lock()
	h.conns[identity] = sender
	h.mu.Unlock()
	log.Printf("[realtime] connected user=%s", identity)
}

// Disconnect removes the registration for identity, but only while sender
// is still the registered handle, so a superseded connection's teardown
// cannot evict its replacement. No-op otherwise.
func (h *Hub) Disconnect(identity string, sender Sender) {
	h.mu.Lock()
	if current, ok := h.conns[identity]; ok && current == sender {
		delete(h.conns, identity)
		log.Printf("[realtime] disconnected user=%s", identity)
	}
	h.mu.Unlock()
}

// Send delivers text to identity's live connection. Without one the message
// is dropped silently: no error, no queuing.
func (h *Hub) Send(identity, text string) {
	h.mu.RLock()
	sender, ok := h.conns[identity]
	h.mu.RUnlock()
	if !ok {
		return
	}

	if err := sender.SendText(text); err != nil {
		log.Printf("[realtime] send failed user=%s: %v", identity, err)
	}
}

// Connected reports whether identity currently has a live handle.
func (h *Hub) Connected(identity string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[identity]
	return ok
}
