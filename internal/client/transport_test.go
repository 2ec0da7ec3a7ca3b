package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/miroview/miroview/internal/decode"
)

// TestStreamURL verifies endpoint construction per transport mode.
func TestStreamURL(t *testing.T) {
	got, err := streamURL("ws://host:8888", "dev-1", decode.ModeMJPEG, "high")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ws://host:8888/api/devices/dev-1/stream?mode=binary-mjpeg&quality=high" {
		t.Fatalf("unexpected url %s", got)
	}

	got, err = streamURL("ws://host:8888", "dev-1", decode.ModeH264, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ws://host:8888/api/devices/dev-1/stream?mode=h264" {
		t.Fatalf("unexpected url %s", got)
	}
}

// TestWebSocketDialer_FramingAndControl verifies text and binary messages
// keep their framing and that only the mirroring transport exposes a control
// channel.
func TestWebSocketDialer_FramingAndControl(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	received := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"config","width":720,"height":1480}`))
		_ = conn.WriteMessage(websocket.BinaryMessage, []byte{0, 0, 0, 1, 0, 0, 0, 50, 0xFF})
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		received <- data
	}))
	defer srv.Close()

	d := &WebSocketDialer{BaseURL: "ws" + strings.TrimPrefix(srv.URL, "http")}
	tr, err := d.Dial(context.Background(), "dev-1", decode.ModeH264, "")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer tr.Close()

	msg, err := tr.Receive()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if msg.Binary {
		t.Fatalf("expected text framing for config message")
	}
	msg, err = tr.Receive()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if !msg.Binary || len(msg.Data) != 9 {
		t.Fatalf("expected 9-byte binary message, got %+v", msg)
	}

	ctrl := tr.Control()
	if ctrl == nil {
		t.Fatalf("expected control channel on the mirroring transport")
	}
	if _, err := ctrl.Write([]byte{2, 0}); err != nil {
		t.Fatalf("control write: %v", err)
	}
	if data := <-received; len(data) != 2 || data[0] != 2 {
		t.Fatalf("unexpected control record %v", data)
	}
}

// TestWebSocketDialer_NoControlForReadOnlyTransports verifies json and mjpeg
// transports fall back to the device-control API.
func TestWebSocketDialer_NoControlForReadOnlyTransports(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	d := &WebSocketDialer{BaseURL: "ws" + strings.TrimPrefix(srv.URL, "http")}
	tr, err := d.Dial(context.Background(), "dev-1", decode.ModeJSON, "high")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer tr.Close()

	if tr.Control() != nil {
		t.Fatalf("expected no control channel on the json transport")
	}
}
