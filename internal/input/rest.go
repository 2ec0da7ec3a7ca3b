package input

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
)

// RESTForwarder dispatches gestures as calls against the device-control API.
// It serves the transports without a dedicated control channel (json,
// binary-mjpeg), whose stream stays read-only.
type RESTForwarder struct {
	client   *http.Client
	baseURL  string
	deviceID string
}

// NewRESTForwarder creates a forwarder for one device.
func NewRESTForwarder(client *http.Client, baseURL, deviceID string) *RESTForwarder {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RESTForwarder{client: client, baseURL: baseURL, deviceID: deviceID}
}

// Tap executes a tap through the device-control API.
func (f *RESTForwarder) Tap(ctx context.Context, x, y int) error {
	return f.post(ctx, "tap", map[string]int{"x": x, "y": y})
}

// Swipe executes a swipe through the device-control API. The API performs
// its own interpolation, so the returned task only tracks the request; Cancel
// aborts the in-flight call.
func (f *RESTForwarder) Swipe(ctx context.Context, x0, y0, x1, y1 int, duration time.Duration) (*SwipeTask, error) {
	ctx, cancel := context.WithCancel(ctx)
	task := &SwipeTask{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(task.done)
		defer cancel()
		task.err = f.post(ctx, "swipe", map[string]int{
			"x1": x0, "y1": y0,
			"x2": x1, "y2": y1,
			"duration_ms": int(duration / time.Millisecond),
		})
	}()
	return task, nil
}

// PressKey sends a device keycode through the device-control API.
func (f *RESTForwarder) PressKey(ctx context.Context, keycode int) error {
	return f.post(ctx, "key", map[string]int{"keycode": keycode})
}

// post issues one gesture call and checks for a 2xx response.
func (f *RESTForwarder) post(ctx context.Context, action string, body any) error {
	payload, err := sonic.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", action, err)
	}
	url := fmt.Sprintf("%s/api/devices/%s/actions/%s", f.baseURL, f.deviceID, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", action, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s request: unexpected status %d", action, resp.StatusCode)
	}
	return nil
}
