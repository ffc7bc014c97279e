package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	for _, base := range []time.Duration{time.Second, 2 * time.Second, 45 * time.Second} {
		for failures := 0; failures <= 80; failures++ {
			got := calculateBackoff(failures, base)
			if got > maxBackoff || got <= 0 {
				t.Errorf("calculateBackoff(%d, %v) = %v, want in (0, %v]", failures, base, got, maxBackoff)
			}
		}
	}
}

func TestPushURL(t *testing.T) {
	tests := []struct {
		base string
		path string
		want string
	}{
		{"http://localhost:5000", "/events", "ws://localhost:5000/events"},
		{"https://lab.example.org/ti/", "events", "wss://lab.example.org/ti/events"},
		{"http://10.0.0.2:5020/api?x=1", "/events", "ws://10.0.0.2:5020/api/events"},
	}
	for _, tt := range tests {
		base, err := url.Parse(tt.base)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.base, err)
		}
		if got := pushURL(base, tt.path); got != tt.want {
			t.Fatalf("pushURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}

func newPushServer(t *testing.T, frames []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		// Drain until the client closes.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWebSocketDeliversFrames(t *testing.T) {
	srv := newPushServer(t, []string{
		`{"event":"ledNewState","data":{"success":true,"msg":{"led_on":"on"}}}`,
		`garbage`,
		`{"data":{"success":true}}`,
		`{"event":"interlock","data":{"success":true,"msg":{"time_to_trip":600}}}`,
		`{"event":"ledNewState","data":{"success":false}}`,
	})
	base, _ := url.Parse(srv.URL)
	ws := NewWebSocket(base, "/events", nil)
	if !strings.HasPrefix(ws.URL(), "ws://") {
		t.Fatalf("URL = %q, want ws:// scheme", ws.URL())
	}

	var (
		mu     sync.Mutex
		events []string
		ups    int
	)
	downCh := make(chan error, 1)
	h := PushHandlers{
		Frame: func(event string, data []byte) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, event+" "+string(data))
		},
		Up: func() {
			mu.Lock()
			defer mu.Unlock()
			ups++
		},
		Down: func(err error) {
			select {
			case downCh <- err:
			default:
			}
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ws.Run(ctx, h) }()

	select {
	case <-downCh:
	case <-time.After(5 * time.Second):
		t.Fatalf("server close not reported")
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{
		`ledNewState {"success":true,"msg":{"led_on":"on"}}`,
		`interlock {"success":true,"msg":{"time_to_trip":600}}`,
		`ledNewState {"success":false}`,
	}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}
	if ups != 1 {
		t.Fatalf("ups = %d, want 1", ups)
	}
}

func TestWebSocketCancelWhileDialFails(t *testing.T) {
	base, _ := url.Parse("http://127.0.0.1:1")
	ws := NewWebSocket(base, "/events", nil)
	ws.baseDelay = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	up := false
	err := ws.Run(ctx, PushHandlers{
		Frame: func(string, []byte) {},
		Up:    func() { up = true },
		Down:  func(error) {},
	})
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if up {
		t.Fatalf("Up called without a connection")
	}
}
