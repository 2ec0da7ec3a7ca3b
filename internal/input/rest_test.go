package input

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
)

// gestureCall is one recorded device-control API request.
type gestureCall struct {
	path string
	body map[string]int
}

// gestureServer fakes the device-control API and records gesture calls.
func gestureServer(t *testing.T, status int) (*httptest.Server, func() []gestureCall) {
	t.Helper()
	var mu sync.Mutex
	var calls []gestureCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		var body map[string]int
		if err := sonic.Unmarshal(raw, &body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		mu.Lock()
		calls = append(calls, gestureCall{path: r.URL.Path, body: body})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []gestureCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]gestureCall(nil), calls...)
	}
}

// TestRESTForwarder_Tap verifies the tap endpoint and payload.
func TestRESTForwarder_Tap(t *testing.T) {
	srv, calls := gestureServer(t, http.StatusOK)
	f := NewRESTForwarder(srv.Client(), srv.URL, "dev-1")

	if err := f.Tap(context.Background(), 300, 700); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := calls()
	if len(got) != 1 {
		t.Fatalf("expected 1 call, got %d", len(got))
	}
	if got[0].path != "/api/devices/dev-1/actions/tap" {
		t.Fatalf("unexpected path %s", got[0].path)
	}
	if got[0].body["x"] != 300 || got[0].body["y"] != 700 {
		t.Fatalf("unexpected payload %v", got[0].body)
	}
}

// TestRESTForwarder_Swipe verifies swipes become a single API call carrying
// the endpoints and duration.
func TestRESTForwarder_Swipe(t *testing.T) {
	srv, calls := gestureServer(t, http.StatusOK)
	f := NewRESTForwarder(srv.Client(), srv.URL, "dev-1")

	task, err := f.Swipe(context.Background(), 100, 900, 100, 200, 350*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := task.Wait(); err != nil {
		t.Fatalf("swipe failed: %v", err)
	}
	got := calls()
	if len(got) != 1 || got[0].path != "/api/devices/dev-1/actions/swipe" {
		t.Fatalf("unexpected calls %v", got)
	}
	body := got[0].body
	if body["x1"] != 100 || body["y1"] != 900 || body["x2"] != 100 || body["y2"] != 200 {
		t.Fatalf("unexpected endpoints %v", body)
	}
	if body["duration_ms"] != 350 {
		t.Fatalf("expected duration_ms 350, got %d", body["duration_ms"])
	}
}

// TestRESTForwarder_PressKey verifies the key endpoint.
func TestRESTForwarder_PressKey(t *testing.T) {
	srv, calls := gestureServer(t, http.StatusOK)
	f := NewRESTForwarder(srv.Client(), srv.URL, "dev-1")

	if err := f.PressKey(context.Background(), KeycodeHome); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := calls()
	if len(got) != 1 || got[0].path != "/api/devices/dev-1/actions/key" {
		t.Fatalf("unexpected calls %v", got)
	}
	if got[0].body["keycode"] != KeycodeHome {
		t.Fatalf("unexpected payload %v", got[0].body)
	}
}

// TestRESTForwarder_NonSuccessStatus verifies non-2xx responses surface as
// errors.
func TestRESTForwarder_NonSuccessStatus(t *testing.T) {
	srv, _ := gestureServer(t, http.StatusBadGateway)
	f := NewRESTForwarder(srv.Client(), srv.URL, "dev-1")

	if err := f.Tap(context.Background(), 1, 1); err == nil {
		t.Fatalf("expected error for 502 response")
	}
}
