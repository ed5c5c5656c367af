package chat

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	chatModel "github.com/sedanonpc/ddcore/internal/model/chat"
	"github.com/sedanonpc/ddcore/internal/service/gateway"
	"github.com/sedanonpc/ddcore/internal/service/session"
	"github.com/sedanonpc/ddcore/pkg/utils"
)

const serviceName = "llm-chat-api"

// maxUploadMemory caps the in-memory portion of a multipart parse.
const maxUploadMemory = 32 << 20

// Backend is the slice of the upstream client the health endpoint needs.
type Backend interface {
	Probe(ctx context.Context) bool
	BaseURL() string
}

// Handler serves the chat, health, and session-inspection endpoints.
type Handler struct {
	gw      *gateway.Gateway
	store   *session.Store
	backend Backend
}

// New creates the chat handler.
func New(gw *gateway.Gateway, store *session.Store, backend Backend) *Handler {
	return &Handler{gw: gw, store: store, backend: backend}
}

// RegisterRoutes wires the chat endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/health", h.handleHealth)
	r.Get("/sessions/{sessionID}", h.handleGetSession)
}

// handleChat accepts a text or voice exchange as form fields plus an
// optional audio part and returns the unified reply envelope.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	req, err := parseChatRequest(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	log.Printf("[chat] request type=%s user=%s session=%s", req.Kind, req.Username, req.SessionID)

	resp, err := h.gw.Handle(r.Context(), req)
	if err != nil {
		var vErr *gateway.ValidationError
		if errors.As(err, &vErr) {
			utils.RespondError(w, http.StatusBadRequest, vErr.Reason)
			return
		}
		log.Printf("[chat] internal fault: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

// handleHealth reports service health with a fresh backend probe per call.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	available := h.backend.Probe(r.Context())
	utils.RespondJSON(w, http.StatusOK, chatModel.Health{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   serviceName,
		Backend: chatModel.BackendHealth{
			URL:       h.backend.BaseURL(),
			Available: available,
		},
	})
}

// handleGetSession looks a session up without creating it.
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sess, err := h.store.Get(sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, sess)
}

func parseChatRequest(r *http.Request) (chatModel.Request, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			return chatModel.Request{}, err
		}
		if err := r.ParseForm(); err != nil {
			return chatModel.Request{}, err
		}
	}

	req := chatModel.Request{
		Message:   r.FormValue("message"),
		Kind:      r.FormValue("type"),
		SessionID: r.FormValue("sessionId"),
		UserID:    r.FormValue("userId"),
		Username:  r.FormValue("username"),
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return req, nil
		}
		return chatModel.Request{}, err
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		return chatModel.Request{}, err
	}
	req.Audio = audio
	req.AudioFilename = header.Filename
	req.AudioMediaType = header.Header.Get("Content-Type")

	return req, nil
}
