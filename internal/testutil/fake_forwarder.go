// Package testutil provides shared fakes for tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/miroview/miroview/internal/input"
)

// Call records a single dispatched gesture.
type Call struct {
	Name     string
	X        int
	Y        int
	X1       int
	Y1       int
	Keycode  int
	Duration time.Duration
}

// FakeForwarder implements input.Forwarder and records calls for tests.
type FakeForwarder struct {
	mu    sync.Mutex
	calls []Call
}

// Ensure FakeForwarder implements the interface.
var _ input.Forwarder = (*FakeForwarder)(nil)

// Tap records a tap.
func (f *FakeForwarder) Tap(ctx context.Context, x, y int) error {
	f.record(Call{Name: "Tap", X: x, Y: y})
	return nil
}

// Swipe records a swipe and returns an already-finished task.
func (f *FakeForwarder) Swipe(ctx context.Context, x0, y0, x1, y1 int, duration time.Duration) (*input.SwipeTask, error) {
	f.record(Call{Name: "Swipe", X: x0, Y: y0, X1: x1, Y1: y1, Duration: duration})
	return input.CompletedSwipeTask(), nil
}

// PressKey records a keycode press.
func (f *FakeForwarder) PressKey(ctx context.Context, keycode int) error {
	f.record(Call{Name: "PressKey", Keycode: keycode})
	return nil
}

// Calls returns a copy of the recorded gestures.
func (f *FakeForwarder) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

func (f *FakeForwarder) record(c Call) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}
