package publishers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/referral-client/pkg/httpclient"
)

const (
	headerEventType = "X-Referral-Event"
	// HeaderWebhookSignature carries the hex HMAC-SHA256 of the request body.
	HeaderWebhookSignature = "X-Webhook-Signature"
)

// WebhookPayload is the body posted to HTTP sinks.
type WebhookPayload struct {
	Event     string `json:"event"`
	Data      Event  `json:"data"`
	Timestamp string `json:"timestamp"`
}

// SignPayload returns the hex HMAC-SHA256 of body keyed by secret.
func SignPayload(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature is the SignPayload of body. The
// comparison runs in constant time.
func VerifySignature(body []byte, signature, secret string) bool {
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

type httpPublisher struct {
	id      string
	method  string
	url     string
	headers map[string]string
	secret  string
	client  *resty.Client
	typ     string
	log     Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}

	return &httpPublisher{
		id:      cfg.ID,
		typ:     TypeHTTP,
		method:  cfg.HTTP.Method,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		secret:  cfg.HTTP.Secret,
		client:  httpclient.NewRestyHTTPClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second),
		log:     ensureLogger(log),
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return h.typ }

// Publish posts the event wrapped in a WebhookPayload. The body is encoded
// here so the signature covers the exact bytes sent.
func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(WebhookPayload{
		Event:     evt.Type,
		Data:      evt,
		Timestamp: evt.OccurredAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req := h.client.R().SetContext(ctx)
	if len(h.headers) > 0 {
		req.SetHeaders(h.headers)
	}
	req.SetHeader("Content-Type", "application/json")
	req.SetHeader(headerEventType, evt.Type)
	if h.secret != "" {
		req.SetHeader(HeaderWebhookSignature, SignPayload(body, h.secret))
	}
	req.SetBody(body)

	resp, err := req.Execute(h.method, h.url)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("http response status %d: %s", resp.StatusCode(), readBodySnippet(resp.Body()))
	}
	h.log.DebugObj("http publisher delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": h.id,
		"event_id":     evt.ID,
		"status":       resp.StatusCode(),
		"signed":       h.secret != "",
	})
	return nil
}

func readBodySnippet(body []byte) string {
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
