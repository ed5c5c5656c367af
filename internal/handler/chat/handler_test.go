package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	chatModel "github.com/sedanonpc/ddcore/internal/model/chat"
	"github.com/sedanonpc/ddcore/internal/service/gateway"
	"github.com/sedanonpc/ddcore/internal/service/responder"
	"github.com/sedanonpc/ddcore/internal/service/session"
	"github.com/sedanonpc/ddcore/internal/service/upstream"
)

type stubBackend struct {
	available bool
}

func (s *stubBackend) Probe(_ context.Context) bool {
	return s.available
}

func (s *stubBackend) BaseURL() string {
	return "http://127.0.0.1:9000"
}

func (s *stubBackend) Forward(_ context.Context, _ chatModel.Request) (chatModel.Response, error) {
	return chatModel.Response{}, &upstream.Failure{Kind: upstream.FailureUnreachable}
}

func setupRouter(backend *stubBackend) (*chi.Mux, *session.Store) {
	store := session.NewStore()
	gw := gateway.New(store, backend, responder.New())
	handler := New(gw, store, backend)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, store
}

func textForm(message, sessionID string) *strings.Reader {
	form := url.Values{}
	form.Set("message", message)
	form.Set("type", "text")
	form.Set("sessionId", sessionID)
	form.Set("userId", "u1")
	form.Set("username", "tester")
	return strings.NewReader(form.Encode())
}

func TestChatTextFallback(t *testing.T) {
	r, _ := setupRouter(&stubBackend{})

	req := httptest.NewRequest(http.MethodPost, "/chat", textForm("Tell me about F1", "s1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	message, _ := body["message"].(string)
	if !strings.Contains(message, "F1 predictions") {
		t.Fatalf("expected motorsport fallback, got %q", message)
	}
	if body["type"] != "text" {
		t.Fatalf("expected type text, got %v", body["type"])
	}
	if audioURL, ok := body["audioUrl"]; !ok || audioURL != nil {
		t.Fatalf("expected audioUrl null, got %v present=%v", audioURL, ok)
	}
}

func TestChatInvalidType(t *testing.T) {
	r, store := setupRouter(&stubBackend{})

	form := url.Values{}
	form.Set("message", "hello")
	form.Set("type", "video")
	form.Set("sessionId", "s1")
	form.Set("userId", "u1")
	form.Set("username", "tester")

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if _, err := store.Get("s1"); err == nil {
		t.Fatal("rejected request must not create the session")
	}
}

func TestChatVoiceWithoutAudio(t *testing.T) {
	r, store := setupRouter(&stubBackend{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("message", "")
	mw.WriteField("type", "voice")
	mw.WriteField("sessionId", "s1")
	mw.WriteField("userId", "u1")
	mw.WriteField("username", "tester")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/chat", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if _, err := store.Get("s1"); err == nil {
		t.Fatal("rejected voice request must not create the session")
	}
}

func TestChatVoiceFallback(t *testing.T) {
	r, _ := setupRouter(&stubBackend{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("message", "")
	mw.WriteField("type", "voice")
	mw.WriteField("sessionId", "s1")
	mw.WriteField("userId", "u1")
	mw.WriteField("username", "tester")

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="audio"; filename="clip.webm"`)
	header.Set("Content-Type", "audio/webm")
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write([]byte{0x1a, 0x45, 0xdf, 0xa3})
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/chat", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["type"] != "voice" {
		t.Fatalf("expected type voice, got %v", body["type"])
	}
	message, _ := body["message"].(string)
	if !strings.Contains(message, "speech-to-text") {
		t.Fatalf("expected transcription placeholder reply, got %q", message)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	r, _ := setupRouter(&stubBackend{})

	req := httptest.NewRequest(http.MethodGet, "/sessions/unknown", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestGetSessionAfterChat(t *testing.T) {
	r, _ := setupRouter(&stubBackend{})

	chatReq := httptest.NewRequest(http.MethodPost, "/chat", textForm("hello", "s1"))
	chatReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(httptest.NewRecorder(), chatReq)

	req := httptest.NewRequest(http.MethodGet, "/sessions/s1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var sess chatModel.Session
	if err := json.Unmarshal(resp.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if len(sess.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(sess.Messages))
	}
	if sess.Messages[0].Sender != chatModel.SenderUser || sess.Messages[1].Sender != chatModel.SenderAssistant {
		t.Fatalf("unexpected message order: %s then %s", sess.Messages[0].Sender, sess.Messages[1].Sender)
	}
}

func TestHealthFreshProbe(t *testing.T) {
	backend := &stubBackend{available: false}
	r, _ := setupRouter(backend)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var health chatModel.Health
	if err := json.Unmarshal(resp.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "healthy" {
		t.Fatalf("unexpected status %q", health.Status)
	}
	if health.Backend.Available {
		t.Fatal("expected backend unavailable")
	}

	// Availability tracks the probe, not a cached value.
	backend.available = true
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	if err := json.Unmarshal(resp.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if !health.Backend.Available {
		t.Fatal("expected backend available after probe state change")
	}
}
