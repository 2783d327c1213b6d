package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// Capture represents a captured HTTP request.
type Capture struct {
	Method      string
	Path        string
	Headers     http.Header
	Body        []byte
	ContentType string
	Timestamp   time.Time
}

// BodyJSON decodes the body as JSON into target.
func (c *Capture) BodyJSON(t *testing.T, target any) {
	t.Helper()
	if err := json.Unmarshal(c.Body, target); err != nil {
		t.Fatalf("failed to decode JSON body: %v", err)
	}
}

// BodyMap returns the body as a map.
func (c *Capture) BodyMap(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	c.BodyJSON(t, &m)
	return m
}

// MockPlatformServer is a fake bot-platform API server for tests.
// Handlers are keyed by request path, so the same server can play both
// the direct API ("/bot<token>/<op>") and the relay ("/relay").
type MockPlatformServer struct {
	*httptest.Server
	t        *testing.T
	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	captures []Capture
}

// NewMockServer creates a mock platform server.
// The server is automatically closed when the test completes.
func NewMockServer(t *testing.T) *MockPlatformServer {
	t.Helper()

	m := &MockPlatformServer{
		t:        t,
		handlers: make(map[string]http.HandlerFunc),
	}

	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.Server.Close)
	return m
}

func (m *MockPlatformServer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	m.mu.Lock()
	m.captures = append(m.captures, Capture{
		Method:      r.Method,
		Path:        r.URL.Path,
		Headers:     r.Header.Clone(),
		Body:        body,
		ContentType: r.Header.Get("Content-Type"),
		Timestamp:   time.Now(),
	})
	handler, exists := m.handlers[r.URL.Path]
	m.mu.Unlock()

	if exists {
		handler(w, r)
		return
	}

	ReplyOK(w, map[string]any{})
}

// On registers a handler for a request path.
func (m *MockPlatformServer) On(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// OnOp registers a handler for a direct bot API operation.
func (m *MockPlatformServer) OnOp(op string, handler http.HandlerFunc) {
	m.On("/bot"+TestToken+"/"+op, handler)
}

// Captures returns all captured requests.
func (m *MockPlatformServer) Captures() []Capture {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Capture{}, m.captures...)
}

// LastCapture returns the most recent captured request.
func (m *MockPlatformServer) LastCapture() *Capture {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.captures) == 0 {
		return nil
	}
	return &m.captures[len(m.captures)-1]
}

// CaptureCount returns the total number of captured requests.
func (m *MockPlatformServer) CaptureCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.captures)
}

// BaseURL returns the server's base URL.
func (m *MockPlatformServer) BaseURL() string {
	return m.Server.URL
}
