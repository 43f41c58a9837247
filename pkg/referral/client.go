// Package referral is a client for the referral-tracking HTTP API.
//
// A Client is safe for concurrent use: its configuration and default headers
// are fixed in New and only read afterwards.
package referral

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samvad-hq/referral-client/pkg/httpclient"
)

const (
	// DefaultBaseURL is used when WithBaseURL is not supplied.
	DefaultBaseURL = "https://api.your-domain.com"
	// DefaultTimeout bounds a single request on the default transport.
	DefaultTimeout = 30 * time.Second

	HeaderAPIKey      = "X-API-Key"
	HeaderContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

const (
	opCreateReferral   = "create referral"
	opTrackClick       = "track click"
	opRecordConversion = "record conversion"
	opGetStats         = "get stats"
)

const (
	pathReferrals  = "/v1/referrals"
	pathClick      = "/v1/referrals/{code}/click"
	pathConversion = "/v1/referrals/{code}/convert"
	pathStats      = "/v1/stats"
)

// Config is the immutable client configuration.
type Config struct {
	APIKey  string
	BaseURL string
}

// Client issues referral API calls against a fixed base URL.
type Client struct {
	cfg     Config
	timeout time.Duration
	debug   bool
	http    httpclient.Client
	log     Logger
}

// DefaultHeaders returns the headers every request carries.
func DefaultHeaders(apiKey string) map[string]string {
	return map[string]string{
		HeaderAPIKey:      apiKey,
		HeaderContentType: contentTypeJSON,
	}
}

// New builds a Client. The API key is not validated locally; an empty key is
// sent as-is and rejected by the service.
func New(apiKey string, opts ...Option) (*Client, error) {
	c := &Client{
		cfg:     Config{APIKey: apiKey, BaseURL: DefaultBaseURL},
		timeout: DefaultTimeout,
		log:     noopLogger{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(httpclient.Options{
			BaseURL: c.cfg.BaseURL,
			Timeout: c.timeout,
			Headers: DefaultHeaders(c.cfg.APIKey),
			Debug:   c.debug,
		})
	}
	return c, nil
}

// Config returns a copy of the client configuration.
func (c *Client) Config() Config { return c.cfg }

// CreateReferral registers a referral for a campaign and referrer.
func (c *Client) CreateReferral(ctx context.Context, in CreateReferralInput) (*Referral, error) {
	if strings.TrimSpace(in.CampaignID) == "" || strings.TrimSpace(in.ReferrerID) == "" {
		err := fmt.Errorf("%s: campaign id and referrer id are required: %w", opCreateReferral, ErrInvalidArgument)
		c.logFailure(opCreateReferral, err)
		return nil, err
	}

	body := createReferralBody{CampaignID: in.CampaignID, ReferrerID: in.ReferrerID}
	if in.RefereeID != "" {
		referee := in.RefereeID
		body.RefereeID = &referee
	}

	raw, err := c.send(ctx, opCreateReferral, httpclient.Request{
		Method: http.MethodPost,
		Path:   pathReferrals,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	return referralFrom(raw), nil
}

// TrackClick records a click on a referral link. A nil metadata map is sent as {}.
func (c *Client) TrackClick(ctx context.Context, code string, metadata Metadata) (*ClickResult, error) {
	raw, err := c.send(ctx, opTrackClick, httpclient.Request{
		Method:     http.MethodPost,
		Path:       pathClick,
		PathParams: map[string]string{"code": code},
		Body:       clickBody{Metadata: metadataOrEmpty(metadata)},
	})
	if err != nil {
		return nil, err
	}
	return clickResultFrom(raw), nil
}

// RecordConversion records a conversion for a referral. A nil amount is sent
// as null and a nil metadata map as {}.
func (c *Client) RecordConversion(ctx context.Context, code string, amount *float64, metadata Metadata) (*ConversionResult, error) {
	raw, err := c.send(ctx, opRecordConversion, httpclient.Request{
		Method:     http.MethodPost,
		Path:       pathConversion,
		PathParams: map[string]string{"code": code},
		Body:       conversionBody{Amount: amount, Metadata: metadataOrEmpty(metadata)},
	})
	if err != nil {
		return nil, err
	}
	return conversionResultFrom(raw), nil
}

// GetStats fetches referral statistics, filtered by campaign when campaignID is not empty.
func (c *Client) GetStats(ctx context.Context, campaignID string) (*Stats, error) {
	req := httpclient.Request{Method: http.MethodGet, Path: pathStats}
	if campaignID != "" {
		req.Query = map[string]string{"campaignId": campaignID}
	}

	raw, err := c.send(ctx, opGetStats, req)
	if err != nil {
		return nil, err
	}
	return statsFrom(raw), nil
}

// send runs one request, records metrics and logs a failure exactly once
// before handing the same error back to the caller.
func (c *Client) send(ctx context.Context, op string, req httpclient.Request) (json.RawMessage, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	raw, err := c.roundTrip(ctx, op, req)
	requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(op, outcomeError).Inc()
		c.logFailure(op, err)
		return nil, err
	}

	requestsTotal.WithLabelValues(op, outcomeOK).Inc()
	c.log.DebugObj("referral api request completed", "referral_request", map[string]any{
		"operation":  op,
		"method":     req.Method,
		"path":       req.Path,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return raw, nil
}

// roundTrip issues req and returns a copy of the 2xx body. Only a body that is
// not JSON at all is rejected; its shape is left to the caller.
func (c *Client) roundTrip(ctx context.Context, op string, req httpclient.Request) (json.RawMessage, error) {
	te := &TransportError{Op: op, Method: req.Method, URL: c.endpoint(req)}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		te.Err = err
		return nil, te
	}

	body := resp.Body()
	te.StatusCode = resp.StatusCode()
	if te.StatusCode < 200 || te.StatusCode > 299 {
		te.Body = readBodySnippet(body)
		te.Err = ErrUnexpectedStatus
		return nil, te
	}

	if !json.Valid(body) {
		te.Body = readBodySnippet(body)
		te.Err = ErrInvalidResponse
		return nil, te
	}
	return append(json.RawMessage(nil), body...), nil
}

func (c *Client) logFailure(op string, err error) {
	c.log.ErrorObj("referral api request failed", "referral_error", map[string]any{
		"operation":   op,
		"status_code": StatusCode(err),
		"error":       err.Error(),
	})
}

// endpoint renders the absolute URL of req for diagnostics.
func (c *Client) endpoint(req httpclient.Request) string {
	path := req.Path
	for k, v := range req.PathParams {
		path = strings.ReplaceAll(path, "{"+k+"}", url.PathEscape(v))
	}
	u := c.cfg.BaseURL + path
	if len(req.Query) > 0 {
		q := url.Values{}
		for k, v := range req.Query {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}
	return u
}
