// Package input encodes pointer gestures for the mirrored device.
package input

import (
	"context"
	"time"
)

// Forwarder dispatches gestures toward the device. The control-channel
// implementation writes binary records to the mirroring transport; the REST
// implementation calls the device-control API for transports whose stream is
// read-only.
type Forwarder interface {
	// Tap presses and releases at a device-space point.
	Tap(ctx context.Context, x, y int) error
	// Swipe starts a drag from one device-space point to another over the
	// given duration. The returned task owns its playback and can be
	// cancelled mid-swipe.
	Swipe(ctx context.Context, x0, y0, x1, y1 int, duration time.Duration) (*SwipeTask, error)
	// PressKey sends a device keycode (navigation keys and the like).
	PressKey(ctx context.Context, keycode int) error
}

// Android keycodes used by the navigation helpers.
const (
	KeycodeBack = 4
	KeycodeHome = 3
)
