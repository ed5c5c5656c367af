// Package gateway orchestrates one chat exchange: validate, probe the
// upstream backend, proxy or generate locally, then record both turns.
package gateway

import (
	"context"
	"log"
	"strings"

	"github.com/sedanonpc/ddcore/internal/model/chat"
	"github.com/sedanonpc/ddcore/internal/service/session"
)

// ValidationError rejects a malformed request before any side effect. It is
// the only gateway error a caller sees as a client fault.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Upstream probes and proxies to the processing backend.
type Upstream interface {
	Probe(ctx context.Context) bool
	Forward(ctx context.Context, req chat.Request) (chat.Response, error)
}

// Responder produces local placeholder replies.
type Responder interface {
	RespondText(message string, history []chat.Message) string
	RespondVoice(audio []byte) string
	Synthesize(text string) (string, bool)
}

// Gateway routes each request to the upstream backend when reachable and to
// the local responder otherwise. Upstream faults after a successful probe
// also fall back: the probe is a hint, and a transient upstream fault must
// never surface as a caller-visible error when a local answer exists.
type Gateway struct {
	store     *session.Store
	upstream  Upstream
	responder Responder
}

// New wires the gateway to its collaborators.
func New(store *session.Store, upstream Upstream, responder Responder) *Gateway {
	return &Gateway{store: store, upstream: upstream, responder: responder}
}

// Handle runs one exchange end to end. On success exactly two messages are
// appended to the session, user turn first; a rejected request mutates
// nothing.
func (g *Gateway) Handle(ctx context.Context, req chat.Request) (chat.Response, error) {
	if err := validate(req); err != nil {
		return chat.Response{}, err
	}

	if g.upstream.Probe(ctx) {
		resp, err := g.upstream.Forward(ctx, req)
		if err == nil {
			g.record(req, req.Message, resp)
			return resp, nil
		}
		log.Printf("[gateway] forward failed, falling back to local responder: %v", err)
	} else {
		log.Printf("[gateway] upstream unavailable, using local responder")
	}

	return g.generate(req), nil
}

func validate(req chat.Request) error {
	if !chat.ValidKind(req.Kind) {
		return &ValidationError{Reason: "type must be 'text' or 'voice'"}
	}
	if req.Kind == chat.KindVoice {
		if len(req.Audio) == 0 {
			return &ValidationError{Reason: "audio file required for voice messages"}
		}
		if !strings.HasPrefix(req.AudioMediaType, "audio/") {
			return &ValidationError{Reason: "file must be an audio file"}
		}
	}
	return nil
}

// generate answers locally. For voice the transcription placeholder becomes
// the user turn fed into the classifier, and synthesis is attempted for the
// reply.
func (g *Gateway) generate(req chat.Request) chat.Response {
	userContent := req.Message
	if req.Kind == chat.KindVoice {
		userContent = g.responder.RespondVoice(req.Audio)
	}

	history := g.store.GetOrCreate(req.SessionID).Messages
	reply := g.responder.RespondText(userContent, history)

	resp := chat.Response{Message: reply, Kind: req.Kind}
	if req.Kind == chat.KindVoice {
		if ref, ok := g.responder.Synthesize(reply); ok {
			resp.AudioURL = &ref
		}
	}

	g.record(req, userContent, resp)
	return resp
}

// record appends the exchange to the session, inbound turn first.
func (g *Gateway) record(req chat.Request, userContent string, resp chat.Response) {
	g.store.Append(req.SessionID, chat.Message{
		Content: userContent,
		Kind:    req.Kind,
		Sender:  chat.SenderUser,
	})

	replyKind := resp.Kind
	if replyKind == "" {
		replyKind = chat.KindText
	}
	g.store.Append(req.SessionID, chat.Message{
		Content: resp.Message,
		Kind:    replyKind,
		Sender:  chat.SenderAssistant,
	})
}
