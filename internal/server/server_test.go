package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/abhinaya/internal/engine"
)

func testEngine() *engine.Engine {
	return engine.New(engine.Config{ConfirmationHoldMs: 20, CalibrationStepDelayMs: 5})
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		contentType := rec.Header().Get("Content-Type")
		if contentType != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", contentType)
		}

		var response map[string]interface{}
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}

		if _, exists := response["uptime"]; !exists {
			t.Error("expected 'uptime' field in response")
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		methods := []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch}

		for _, method := range methods {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_NotFound(t *testing.T) {
	s := New(Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/nonexistent", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestServer_StaticFiles(t *testing.T) {
	tmpDir := t.TempDir()

	testContent := "<html><body>Abhinaya</body></html>"
	if err := os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte(testContent), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	s := New(Config{StaticDir: tmpDir})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if rec.Body.String() != testContent {
		t.Errorf("expected body %q, got %q", testContent, rec.Body.String())
	}
}

func wsURL(server *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + path
}

func TestServer_Events(t *testing.T) {
	eng := testEngine()
	s := New(Config{Engine: eng})

	ts := httptest.NewServer(s)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/api/events"), nil)
	if err != nil {
		t.Fatalf("failed to dial /api/events: %v", err)
	}
	defer conn.Close()

	// Give the server a moment to register the subscriber, then trigger a
	// status change by delivering a face-visible frame.
	time.Sleep(50 * time.Millisecond)
	eng.OnFrame(&engine.Frame{
		TimestampMs:  0,
		FaceDetected: true,
		Blendshapes: map[string]float64{
			engine.BlendshapeEyeBlinkLeft:  0.1,
			engine.BlendshapeEyeBlinkRight: 0.1,
		},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read event: %v", err)
	}

	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if event.Type != "status" {
		t.Errorf("event type = %q, want status", event.Type)
	}
	if event.Data != "detected" {
		t.Errorf("event data = %v, want detected", event.Data)
	}
}

func TestServer_EventsConcurrentPublish(t *testing.T) {
	eng := testEngine()
	s := New(Config{Engine: eng})

	ts := httptest.NewServer(s)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/api/events"), nil)
	if err != nil {
		t.Fatalf("failed to dial /api/events: %v", err)
	}
	defer conn.Close()
	time.Sleep(50 * time.Millisecond)

	// Signals, status changes and calibration progress are published from
	// separate goroutines; all writes must funnel through one writer per
	// connection.
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.Events().Publish("status", "detected")
			}
		}(g)
	}
	wg.Wait()

	// Every message that got through must still be a well-formed event.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < 10; i++ {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("failed to read event %d: %v", i, err)
		}
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("event %d is not valid JSON: %v", i, err)
		}
		if event.Type != "status" {
			t.Errorf("event %d type = %q, want status", i, event.Type)
		}
	}
}

func TestServer_Frames(t *testing.T) {
	eng := testEngine()
	s := New(Config{Engine: eng})

	ts := httptest.NewServer(s)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/api/frames"), nil)
	if err != nil {
		t.Fatalf("failed to dial /api/frames: %v", err)
	}
	defer conn.Close()

	frame := engine.Frame{
		TimestampMs:  100,
		FaceDetected: true,
		Blendshapes: map[string]float64{
			engine.BlendshapeEyeBlinkLeft:  0.1,
			engine.BlendshapeEyeBlinkRight: 0.1,
		},
	}
	payload, _ := json.Marshal(frame)
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		t.Fatalf("failed to send frame: %v", err)
	}

	// Malformed payloads are dropped without closing the connection.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("failed to send malformed frame: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for eng.Status() != engine.StatusDetected {
		if time.Now().After(deadline) {
			t.Fatalf("engine status = %q, want detected", eng.Status())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
