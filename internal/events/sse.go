// Package events fans widget change events out to Server-Sent Events
// clients. Each client sees only the events of the user it authenticated as.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	clientBuffer     = 50
	broadcastBuffer  = 100
	DefaultKeepAlive = 30 * time.Second
)

// SSEServer manages Server-Sent Events connections
type SSEServer struct {
	clients    map[string]*SSEClient
	register   chan *SSEClient
	unregister chan string
	broadcast  chan *Event
	quit       chan struct{}
	stopOnce   sync.Once
	startOnce  sync.Once
	mu         sync.RWMutex

	// KeepAlive is the interval between keep-alive comments
	KeepAlive time.Duration
	log       *slog.Logger
}

// SSEClient represents a connected client
type SSEClient struct {
	ID      string
	UserID  string
	Events  chan *Event
	Filters []EventType // Event types to receive (empty = all)
	done    chan struct{}
}

// NewSSEServer creates a new SSE server
func NewSSEServer(logger *slog.Logger) *SSEServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SSEServer{
		clients:    make(map[string]*SSEClient),
		register:   make(chan *SSEClient),
		unregister: make(chan string),
		broadcast:  make(chan *Event, broadcastBuffer),
		quit:       make(chan struct{}),
		KeepAlive:  DefaultKeepAlive,
		log:        logger,
	}
}

// Start starts the SSE server event loop
func (s *SSEServer) Start() {
	s.startOnce.Do(func() {
		go s.run()
	})
}

// Stop closes all client streams and ends the event loop
func (s *SSEServer) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
	})
}

func (s *SSEServer) run() {
	for {
		select {
		case <-s.quit:
			s.mu.Lock()
			for id, client := range s.clients {
				close(client.done)
				delete(s.clients, id)
			}
			s.mu.Unlock()
			return

		case client := <-s.register:
			s.mu.Lock()
			s.clients[client.ID] = client
			s.mu.Unlock()

		case clientID := <-s.unregister:
			s.mu.Lock()
			delete(s.clients, clientID)
			s.mu.Unlock()

		case event := <-s.broadcast:
			s.mu.RLock()
			for _, client := range s.clients {
				if shouldSend(client, event) {
					select {
					case client.Events <- event:
					default:
						// 클라이언트 버퍼 가득 참, 건너뜀
						s.log.Warn("sse client buffer full", "client_id", client.ID, "type", event.Type)
					}
				}
			}
			s.mu.RUnlock()
		}
	}
}

// shouldSend checks if client should receive this event
func shouldSend(client *SSEClient, event *Event) bool {
	// 소유자 필터
	if event.UserID != client.UserID {
		return false
	}

	// Event type filter
	if len(client.Filters) > 0 {
		for _, f := range client.Filters {
			if f == event.Type {
				return true
			}
		}
		return false
	}

	return true
}

// Broadcast queues an event for delivery
func (s *SSEServer) Broadcast(event *Event) {
	select {
	case <-s.quit:
		return
	default:
	}
	select {
	case s.broadcast <- event:
	default:
		// Buffer full, drop event
		s.log.Warn("sse broadcast buffer full, event dropped", "type", event.Type)
	}
}

// ClientCount returns the number of connected clients
func (s *SSEServer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Subscribe registers a client for userID. The returned func unregisters it.
func (s *SSEServer) Subscribe(userID string, filters []EventType) (*SSEClient, func(), error) {
	client := &SSEClient{
		ID:      uuid.NewString(),
		UserID:  userID,
		Events:  make(chan *Event, clientBuffer),
		Filters: filters,
		done:    make(chan struct{}),
	}

	select {
	case s.register <- client:
	case <-s.quit:
		return nil, nil, fmt.Errorf("SSE 서버가 중지되었습니다")
	}

	cancel := func() {
		select {
		case s.unregister <- client.ID:
		case <-s.quit:
		}
	}
	return client, cancel, nil
}

// Serve streams userID's events to w until the request ends or the hub stops
func (s *SSEServer) Serve(w http.ResponseWriter, r *http.Request, userID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	filters := ParseFilter(r.URL.Query().Get("filter"))
	client, cancel, err := s.Subscribe(userID, filters)
	if err != nil {
		http.Error(w, "Event stream unavailable", http.StatusServiceUnavailable)
		return
	}
	defer cancel()

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Send initial connection event
	s.sendEvent(w, flusher, NewEvent(ConnectionEstablished, map[string]interface{}{
		"client_id": client.ID,
		"filters":   filters,
	}).ForUser(userID))

	// Keep-alive ticker
	keepAlive := s.KeepAlive
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-client.done:
			return

		case event := <-client.Events:
			s.sendEvent(w, flusher, event)

		case <-ticker.C:
			fmt.Fprintf(w, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}

func (s *SSEServer) sendEvent(w http.ResponseWriter, flusher http.Flusher, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		s.log.Error("sse event marshal failed", "type", event.Type, "error", err)
		return
	}

	fmt.Fprintf(w, "event: %s\n", event.Type)
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

func splitComma(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
