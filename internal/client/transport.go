package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/miroview/miroview/internal/decode"
)

// Message is one framed transport payload. Text carries JSON envelopes,
// binary carries frame or mirroring-protocol data; the framing itself is what
// tells them apart, never content sniffing.
type Message struct {
	Binary bool
	Data   []byte
}

// Transport is one open stream connection.
type Transport interface {
	// Receive blocks for the next framed message. It returns an error when
	// the connection closes.
	Receive() (Message, error)
	// Control returns the gesture control channel, or nil when the transport
	// has none and gestures must fall back to the device-control API.
	Control() io.Writer
	// Close tears the connection down. Safe to call more than once.
	Close() error
}

// Dialer opens a transport for a device. Implementations must respect ctx
// cancellation during connection establishment.
type Dialer interface {
	Dial(ctx context.Context, deviceID string, mode decode.Mode, quality string) (Transport, error)
}

// WebSocketDialer opens stream websockets against the device server.
type WebSocketDialer struct {
	// BaseURL is the server root, e.g. "ws://host:8888".
	BaseURL string
	// Dialer overrides the websocket dialer; nil uses the default.
	Dialer *websocket.Dialer
}

// Dial opens the stream endpoint for one device. The mirroring transport
// multiplexes its control channel over the same socket as binary records.
func (d *WebSocketDialer) Dial(ctx context.Context, deviceID string, mode decode.Mode, quality string) (Transport, error) {
	endpoint, err := streamURL(d.BaseURL, deviceID, mode, quality)
	if err != nil {
		return nil, err
	}
	wd := d.Dialer
	if wd == nil {
		wd = websocket.DefaultDialer
	}
	conn, _, err := wd.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	t := &wsTransport{conn: conn}
	if mode == decode.ModeH264 {
		t.control = &wsControlWriter{conn: conn}
	}
	return t, nil
}

// streamURL builds the stream endpoint for a device and transport mode.
func streamURL(base, deviceID string, mode decode.Mode, quality string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	u.Path, err = url.JoinPath(u.Path, "api", "devices", deviceID, "stream")
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("mode", string(mode))
	if quality != "" {
		q.Set("quality", quality)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// wsTransport adapts a websocket connection to the Transport interface.
type wsTransport struct {
	conn    *websocket.Conn
	control *wsControlWriter

	closeOnce sync.Once
	closeErr  error
}

func (t *wsTransport) Receive() (Message, error) {
	for {
		mt, data, err := t.conn.ReadMessage()
		if err != nil {
			return Message{}, err
		}
		switch mt {
		case websocket.TextMessage:
			return Message{Data: data}, nil
		case websocket.BinaryMessage:
			return Message{Binary: true, Data: data}, nil
		}
	}
}

func (t *wsTransport) Control() io.Writer {
	if t.control == nil {
		return nil
	}
	return t.control
}

func (t *wsTransport) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}

// wsControlWriter writes gesture records as binary websocket messages. The
// websocket package allows one concurrent writer, so writes are serialized.
type wsControlWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsControlWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}
