package fanout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/charleschow/draft-lottery/internal/events"
	"github.com/charleschow/draft-lottery/internal/telemetry"
)

const (
	clientSendBuf = 16
	writeDeadline = 5 * time.Second
	pongWait      = 30 * time.Second
	pingInterval  = 20 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

type watcher struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// Server fans out run events to connected WebSocket watchers, keeps the
// latest completed run for GET /latest, and turns POST /refresh into a
// refresh request on the bus.
type Server struct {
	bus *events.Bus

	mu       sync.Mutex
	watchers map[*watcher]struct{}
	latest   []byte // JSON envelope of the last run_completed
}

func NewServer(bus *events.Bus) *Server {
	s := &Server{
		bus:      bus,
		watchers: make(map[*watcher]struct{}),
	}
	bus.Subscribe(events.EventRunCompleted, s.forward)
	bus.Subscribe(events.EventRunFailed, s.forward)
	return s
}

// forward is called on the publisher's goroutine. It serializes the event
// and enqueues it to every watcher's send channel (non-blocking).
func (s *Server) forward(evt events.Event) error {
	data, err := MarshalEvent(evt)
	if err != nil {
		telemetry.Warnf("fanout: marshal error: %v", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if evt.Type == events.EventRunCompleted {
		s.latest = data
	}
	for w := range s.watchers {
		select {
		case w.send <- data:
		default:
			telemetry.Warnf("fanout: dropping message for slow watcher %s", w.conn.RemoteAddr())
		}
	}
	return nil
}

// HandleWS is the HTTP handler for WebSocket upgrade requests. A new
// watcher immediately receives the latest completed run, if any.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		telemetry.Warnf("fanout: upgrade failed: %v", err)
		return
	}

	c := &watcher{
		conn: conn,
		send: make(chan []byte, clientSendBuf),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	s.watchers[c] = struct{}{}
	if s.latest != nil {
		c.send <- s.latest
	}
	s.mu.Unlock()
	telemetry.Metrics.ActiveWatchers.Inc()

	telemetry.Infof("fanout: watcher connected %s", conn.RemoteAddr())

	go s.writePump(c)
	go s.readPump(c)
}

// HandleRefresh publishes a refresh request and returns 202.
func (s *Server) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.bus.Publish(events.Event{
		Type:      events.EventRefreshRequested,
		Timestamp: time.Now().UTC(),
		Payload:   events.RefreshRequest{Reason: "http " + r.RemoteAddr},
	})
	w.WriteHeader(http.StatusAccepted)
}

// HandleLatest returns the envelope of the last completed run.
func (s *Server) HandleLatest(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	latest := s.latest
	s.mu.Unlock()

	if latest == nil {
		http.Error(w, "no completed run yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(latest)
}

func (s *Server) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	n := len(s.watchers)
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"ok": true, "watchers": n})
}

// Handler returns the HTTP mux for the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	mux.HandleFunc("/refresh", s.HandleRefresh)
	mux.HandleFunc("/latest", s.HandleLatest)
	mux.HandleFunc("/health", s.HandleHealth)
	return mux
}

// writePump drains the watcher's send channel and writes to the WS connection.
// It owns the watcher lifecycle: on exit it removes the watcher from the map
// (so forward never sends to a stale channel) and closes the connection.
func (s *Server) writePump(c *watcher) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.removeWatcher(c)
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				telemetry.Warnf("fanout: write error %s: %v", c.conn.RemoteAddr(), err)
				return
			}
		case <-c.done:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump keeps the connection alive by reading pongs / close frames.
// No upstream messages are expected from watchers.
// On exit it signals writePump via c.done (never closes c.send).
func (s *Server) readPump(c *watcher) {
	defer close(c.done)

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
	}
}

func (s *Server) removeWatcher(c *watcher) {
	s.mu.Lock()
	delete(s.watchers, c)
	s.mu.Unlock()
	telemetry.Metrics.ActiveWatchers.Dec()
	telemetry.Infof("fanout: watcher disconnected %s", c.conn.RemoteAddr())
}

// WatcherCount is the number of connected watchers.
func (s *Server) WatcherCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers)
}

// ListenAndServe serves until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	telemetry.Plainf("fanout: server listening on %s", srv.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
