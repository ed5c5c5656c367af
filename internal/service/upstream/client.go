package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/sedanonpc/ddcore/internal/model/chat"
)

// Failure kinds for a forward call.
const (
	FailureTimeout     = "timeout"
	FailureUnreachable = "unreachable"
	FailureUpstream    = "upstream_error"
)

// Failure is the typed error Forward returns. The gateway inspects it to
// decide fallback; it never reaches the end caller.
type Failure struct {
	Kind   string
	Status int
	Body   string
}

func (f *Failure) Error() string {
	if f.Kind == FailureUpstream {
		return fmt.Sprintf("upstream error: status %d", f.Status)
	}
	return "upstream " + f.Kind
}

// maxErrorBody bounds how much of an upstream error body is retained.
const maxErrorBody = 4 << 10

// Client talks to the upstream processing backend. Probe and Forward are
// independent round-trips with independent deadlines: a probe success is a
// hint, not a guarantee, so Forward carries its own failure handling.
type Client struct {
	baseURL       string
	probeClient   *http.Client
	forwardClient *http.Client
}

// NewClient builds a client for the backend at baseURL.
func NewClient(baseURL string, probeTimeout, forwardTimeout time.Duration) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		probeClient:   &http.Client{Timeout: probeTimeout},
		forwardClient: &http.Client{Timeout: forwardTimeout},
	}
}

// BaseURL reports the configured backend endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Probe checks backend reachability. Any transport error, timeout, or
// non-2xx status yields false; Probe never returns an error.
func (c *Client) Probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.probeClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Forward proxies a chat request to the backend and returns its reply
// verbatim. On any fault it returns a *Failure; never partial data.
func (c *Client) Forward(ctx context.Context, chatReq chat.Request) (chat.Response, error) {
	body, contentType, err := encodeForm(chatReq)
	if err != nil {
		return chat.Response{}, &Failure{Kind: FailureUnreachable}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", body)
	if err != nil {
		return chat.Response{}, &Failure{Kind: FailureUnreachable}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.forwardClient.Do(req)
	if err != nil {
		return chat.Response{}, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return chat.Response{}, &Failure{
			Kind:   FailureUpstream,
			Status: resp.StatusCode,
			Body:   string(detail),
		}
	}

	var out chat.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return chat.Response{}, &Failure{
			Kind:   FailureUpstream,
			Status: resp.StatusCode,
			Body:   "invalid response payload",
		}
	}
	return out, nil
}

// encodeForm mirrors the form shape the backend accepts: plain fields plus
// an optional audio file part for voice requests.
func encodeForm(chatReq chat.Request) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"message":   chatReq.Message,
		"type":      chatReq.Kind,
		"sessionId": chatReq.SessionID,
		"userId":    chatReq.UserID,
		"username":  chatReq.Username,
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	if chatReq.Kind == chat.KindVoice && len(chatReq.Audio) > 0 {
		filename := chatReq.AudioFilename
		if filename == "" {
			filename = "audio.webm"
		}
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, filename))
		if chatReq.AudioMediaType != "" {
			header.Set("Content-Type", chatReq.AudioMediaType)
		}
		part, err := mw.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(chatReq.Audio); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func classifyTransportError(err error) *Failure {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Failure{Kind: FailureTimeout}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &Failure{Kind: FailureTimeout}
	}
	return &Failure{Kind: FailureUnreachable}
}
