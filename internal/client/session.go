package client

import (
	"sync"

	"github.com/google/uuid"
	"github.com/miroview/miroview/internal/decode"
	"github.com/miroview/miroview/internal/device"
)

// Session holds the mutable stream state for one device/viewport pair. Each
// Start creates a fresh session; nothing lives in shared or global scope.
type Session struct {
	mu sync.RWMutex

	id       string
	deviceID string
	mode     decode.Mode
	quality  string

	frame     decode.Frame
	elements  []device.UIElement
	device    device.Descriptor
	clipboard string
}

// newSession creates session state for one start() call.
func newSession(deviceID string, mode decode.Mode, quality string) *Session {
	return &Session{
		id:       uuid.NewString(),
		deviceID: deviceID,
		mode:     mode,
		quality:  quality,
	}
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// DeviceID returns the mirrored device identifier.
func (s *Session) DeviceID() string { return s.deviceID }

// Mode returns the transport mode the session was started with.
func (s *Session) Mode() decode.Mode { return s.mode }

// Quality returns the requested quality tier.
func (s *Session) Quality() string { return s.quality }

// SetFrame replaces the current frame; only the latest is kept, never a
// queue. When the raster dimensions differ from the previous frame's, the
// cached element list is cleared before the next render: stale elements under
// new dimensions would misalign. It reports whether that invalidation fired.
func (s *Session) SetFrame(f decode.Frame) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.frame
	s.frame = f
	if prev.Raster != nil && f.Width > 0 && f.Height > 0 &&
		(prev.Width != f.Width || prev.Height != f.Height) {
		s.elements = nil
		return true
	}
	return false
}

// Frame returns the most recently completed frame.
func (s *Session) Frame() decode.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

// SetElements replaces the element list wholesale.
func (s *Session) SetElements(elements []device.UIElement) {
	s.mu.Lock()
	s.elements = elements
	s.mu.Unlock()
}

// Elements returns the current element list.
func (s *Session) Elements() []device.UIElement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.elements
}

// SetDescriptor stores the authoritative device descriptor.
func (s *Session) SetDescriptor(d device.Descriptor) {
	s.mu.Lock()
	s.device = d
	s.mu.Unlock()
}

// Descriptor returns the last received device descriptor.
func (s *Session) Descriptor() device.Descriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.device
}

// SetClipboard stores device clipboard content pushed by the mirror.
func (s *Session) SetClipboard(text string) {
	s.mu.Lock()
	s.clipboard = text
	s.mu.Unlock()
}

// Clipboard returns the last clipboard content pushed by the device.
func (s *Session) Clipboard() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clipboard
}
