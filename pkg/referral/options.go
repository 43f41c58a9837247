package referral

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/samvad-hq/referral-client/pkg/httpclient"
)

// Option configures a Client during construction in New.
type Option func(*Client) error

// WithBaseURL overrides DefaultBaseURL. The value must be an absolute http(s) URL.
func WithBaseURL(raw string) Option {
	return func(c *Client) error {
		raw = strings.TrimRight(strings.TrimSpace(raw), "/")
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("parse base url: %w", err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("base url %q must be an absolute http(s) url", raw)
		}
		c.cfg.BaseURL = raw
		return nil
	}
}

// WithTimeout bounds each request issued by the default transport.
// Prefer per-call context deadlines; this is a coarse safety net.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.timeout = d
		return nil
	}
}

// WithHTTPClient replaces the default resty transport. The supplied client
// must resolve request paths against the base URL and send DefaultHeaders.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client must not be nil")
		}
		c.http = hc
		return nil
	}
}

// WithLogger routes diagnostics to log instead of discarding them.
func WithLogger(log Logger) Option {
	return func(c *Client) error {
		c.log = ensureLogger(log)
		return nil
	}
}

// WithDebug makes the default transport dump requests and responses.
// Dumps include the API key header; keep it off outside development.
func WithDebug(enabled bool) Option {
	return func(c *Client) error {
		c.debug = enabled
		return nil
	}
}
