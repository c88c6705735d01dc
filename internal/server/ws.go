package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/abhinaya/internal/engine"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Event is a message pushed to /api/events subscribers.
type Event struct {
	Type        string      `json:"type"`
	Data        interface{} `json:"data,omitempty"`
	TimestampMs int64       `json:"timestamp_ms"`
}

// EventsHandler broadcasts engine events (final signals, status changes,
// calibration progress) to WebSocket subscribers. Publishers run on many
// goroutines (gate timer, pipeline loop, calibration pump), but gorilla
// allows only one writer per connection, so all writes are funneled
// through a single broadcast goroutine.
type EventsHandler struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
	queue   chan []byte
}

// NewEventsHandler creates a new EventsHandler subscribed to the engine.
func NewEventsHandler(e *engine.Engine) *EventsHandler {
	h := &EventsHandler{
		clients: make(map[*websocket.Conn]bool),
		queue:   make(chan []byte, 64),
	}
	go h.broadcast()

	e.OnSignal(func(s engine.FinalSignal) {
		h.Publish("signal", s)
	})
	e.OnStatus(func(st engine.Status) {
		h.Publish("status", string(st))
	})

	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Publish enqueues an event for delivery to all connected clients. The
// event is dropped if the broadcast queue is full.
func (h *EventsHandler) Publish(eventType string, data interface{}) {
	msg, err := json.Marshal(Event{
		Type:        eventType,
		Data:        data,
		TimestampMs: time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}

	select {
	case h.queue <- msg:
	default:
		log.Printf("events: queue full, dropping %s event", eventType)
	}
}

// broadcast is the sole writer on every subscriber connection.
func (h *EventsHandler) broadcast() {
	for msg := range h.queue {
		h.mu.RLock()
		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}

// FramesHandler ingests measurement frames over WebSocket and feeds them
// to the engine. Useful for external trackers and browser-side capture.
type FramesHandler struct {
	engine *engine.Engine
}

// NewFramesHandler creates a new FramesHandler feeding the given engine.
func NewFramesHandler(e *engine.Engine) *FramesHandler {
	return &FramesHandler{engine: e}
}

// ServeHTTP handles WebSocket upgrade requests and reads frames until the
// connection closes.
func (h *FramesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var frame engine.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Printf("frames: dropping malformed frame: %v", err)
			continue
		}

		h.engine.OnFrame(&frame)
	}
}
