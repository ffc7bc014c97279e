package device

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Commander issues one-shot commands. Implemented by *Client and used by tests.
type Commander interface {
	Do(ctx context.Context, cmd Command) (Event, error)
}

// Ensure Client implements Commander at compile time.
var _ Commander = (*Client)(nil)

// Client talks to the device server's HTTP command channel.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPI       = "http://localhost:5000"
	defaultUserAgent = "ticontrol/0.1"
	requestTimeout   = 5 * time.Second
	maxReplyBytes    = 1 << 20
)

// NewClient builds a Client for the given base address. Bare host:port values
// are treated as http.
func NewClient(api string) (*Client, error) {
	base, err := parseBaseURL(api)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// SetVersion puts version into the User-Agent header.
func (c *Client) SetVersion(version string) {
	if v := strings.TrimSpace(version); v != "" {
		c.userAgent = "ticontrol/" + v
	}
}

// BaseURL returns a copy of the command channel base address.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Do sends cmd and decodes the {success, msg} reply.
func (c *Client) Do(ctx context.Context, cmd Command) (Event, error) {
	if c == nil {
		return Failure(), fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(cmd.Name) == "" {
		return Failure(), fmt.Errorf("command name required")
	}

	reqURL := c.BaseURL()
	reqURL.Path = strings.TrimSuffix(reqURL.Path, "/") + "/" + cmd.Name
	reqURL.RawQuery = cmd.Params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return Failure(), fmt.Errorf("create request: %w", err)
	}
	id := cmd.ID
	if id == "" {
		id = uuid.NewString()
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", id)

	resp, err := c.http.Do(req)
	if err != nil {
		return Failure(), fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return Failure(), fmt.Errorf("api %s returned status %d", cmd.Path(), resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return Failure(), fmt.Errorf("read response: %w", err)
	}
	ev, err := DecodeEvent(body)
	if err != nil {
		return Failure(), fmt.Errorf("decode response: %w", err)
	}
	return ev, nil
}

func parseBaseURL(api string) (*url.URL, error) {
	trimmed := strings.TrimSpace(api)
	if trimmed == "" {
		trimmed = defaultAPI
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api %q: %w", api, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api %q: missing host", api)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
