package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/five82/ticontrol/internal/logging"
)

const (
	defaultReconnectDelay = time.Second
	maxBackoff            = 30 * time.Second

	pingInterval   = 20 * time.Second
	pongWait       = 10 * time.Second
	writeWait      = 5 * time.Second
	maxMessageSize = 64 * 1024
)

// frame is the WebSocket envelope carrying one named server event.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// WebSocket is a PushChannel reading JSON frames from a WebSocket endpoint.
type WebSocket struct {
	url       string
	dialer    *websocket.Dialer
	baseDelay time.Duration
	logger    *logging.Logger
}

// NewWebSocket targets path relative to the device API base URL. http and
// https bases map to ws and wss.
func NewWebSocket(base *url.URL, path string, logger *logging.Logger) *WebSocket {
	if logger == nil {
		logger = logging.Discard()
	}
	return &WebSocket{
		url:       pushURL(base, path),
		dialer:    &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
		baseDelay: defaultReconnectDelay,
		logger:    logger.With("component", "websocket"),
	}
}

// URL returns the endpoint the channel dials.
func (w *WebSocket) URL() string {
	return w.url
}

// Run keeps a connection open until ctx is cancelled, reconnecting with
// exponential backoff after every failure.
func (w *WebSocket) Run(ctx context.Context, h PushHandlers) error {
	failures := 0
	for {
		connected, err := w.session(ctx, h)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			failures = 0
		}
		delay := calculateBackoff(failures, w.baseDelay)
		failures++
		w.logger.Debug("websocket reconnect scheduled", "delay", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// session dials once and reads frames until the connection ends. connected
// reports whether the handshake succeeded.
func (w *WebSocket) session(ctx context.Context, h PushHandlers) (connected bool, err error) {
	conn, _, err := w.dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return false, fmt.Errorf("dial %s: %w", w.url, err)
	}
	defer conn.Close()

	h.Up()

	done := make(chan struct{})
	defer close(done)
	go w.keepalive(ctx, conn, done)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	})

	for {
		_, message, readErr := conn.ReadMessage()
		if readErr != nil {
			err = readErr
			if websocket.IsCloseError(readErr, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				err = fmt.Errorf("%w: %w", ErrNotConnected, readErr)
			}
			h.Down(err)
			return true, err
		}
		_ = conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))

		var f frame
		if jsonErr := json.Unmarshal(message, &f); jsonErr != nil || f.Event == "" {
			w.logger.Warn("dropping malformed frame", "bytes", len(message), "error", jsonErr)
			continue
		}
		h.Frame(f.Event, f.Data)
	}
}

// keepalive pings the server and closes conn when ctx ends so the blocked
// read returns.
func (w *WebSocket) keepalive(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			_ = conn.Close()
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

// calculateBackoff doubles base for every consecutive failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures < 0 {
		failures = 0
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func pushURL(base *url.URL, path string) string {
	u := *base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
