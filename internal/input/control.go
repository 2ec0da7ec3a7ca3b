package input

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/miroview/miroview/internal/wire"
)

const (
	defaultSwipeSteps = 10
	pressureMax       = 0xFFFF
	buttonPrimary     = 1
)

// ScreenSizeFunc reports the device resolution the coordinates refer to.
type ScreenSizeFunc func() (w, h int)

// ControlForwarder writes binary gesture records to the mirroring
// transport's control channel.
type ControlForwarder struct {
	mu         sync.Mutex
	conn       io.Writer
	screenSize ScreenSizeFunc
	pointerID  uint64
	steps      int
}

// NewControlForwarder wraps a control-channel writer.
func NewControlForwarder(conn io.Writer, screenSize ScreenSizeFunc) *ControlForwarder {
	return &ControlForwarder{
		conn:       conn,
		screenSize: screenSize,
		steps:      defaultSwipeSteps,
	}
}

// SetSwipeSteps overrides the number of interpolated move events per swipe.
func (f *ControlForwarder) SetSwipeSteps(steps int) {
	if steps > 0 {
		f.steps = steps
	}
}

// Tap writes a down record immediately followed by an up record.
func (f *ControlForwarder) Tap(ctx context.Context, x, y int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.writeTouch(wire.ActionDown, x, y, pressureMax); err != nil {
		return err
	}
	return f.writeTouch(wire.ActionUp, x, y, 0)
}

// Swipe plays one down event, evenly time-spaced interpolated move events,
// and one up event at the final point. The returned task can be cancelled
// mid-swipe; cancellation still releases the pointer at the last point
// reached so the device never sees a stuck contact.
func (f *ControlForwarder) Swipe(ctx context.Context, x0, y0, x1, y1 int, duration time.Duration) (*SwipeTask, error) {
	if err := f.writeTouch(wire.ActionDown, x0, y0, pressureMax); err != nil {
		return nil, err
	}
	return startSwipe(ctx, swipePlan{
		x0: x0, y0: y0, x1: x1, y1: y1,
		steps:    f.steps,
		duration: duration,
	}, func(action byte, x, y int) error {
		pressure := uint16(pressureMax)
		if action == wire.ActionUp {
			pressure = 0
		}
		return f.writeTouch(action, x, y, pressure)
	}), nil
}

// PressKey writes a key down/up record pair.
func (f *ControlForwarder) PressKey(ctx context.Context, keycode int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	down := wire.EncodeKey(wire.KeyEvent{Action: wire.ActionDown, Keycode: uint32(keycode)})
	up := wire.EncodeKey(wire.KeyEvent{Action: wire.ActionUp, Keycode: uint32(keycode)})
	if err := f.write(down); err != nil {
		return err
	}
	return f.write(up)
}

// Scroll writes one scroll tick at a device-space point.
func (f *ControlForwarder) Scroll(ctx context.Context, x, y int, hScroll, vScroll int16) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w, h := f.screenSize()
	return f.write(wire.EncodeScroll(wire.ScrollEvent{
		X: uint32(x), Y: uint32(y),
		ScreenWidth: uint16(w), ScreenHeight: uint16(h),
		HScroll: hScroll, VScroll: vScroll,
	}))
}

// writeTouch encodes and writes one pointer record.
func (f *ControlForwarder) writeTouch(action byte, x, y int, pressure uint16) error {
	w, h := f.screenSize()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("device resolution unknown, dropping gesture")
	}
	return f.write(wire.EncodeTouch(wire.TouchEvent{
		Action:       action,
		PointerID:    f.pointerID,
		X:            uint32(x),
		Y:            uint32(y),
		ScreenWidth:  uint16(w),
		ScreenHeight: uint16(h),
		Pressure:     pressure,
		Buttons:      buttonPrimary,
	}))
}

// write serializes control-channel writes.
func (f *ControlForwarder) write(record []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.conn.Write(record); err != nil {
		return fmt.Errorf("control channel write: %w", err)
	}
	return nil
}
