// Package mapper translates between device, stream, and display pixel spaces.
package mapper

import (
	"math"
	"sync"

	"github.com/miroview/miroview/internal/device"
)

// Mapper resolves scale factors between the three coordinate spaces.
//
// Device space is the mirrored device's native resolution, fixed until a
// dimension update arrives. Stream space is the resolution actually
// transmitted, which may be downscaled per quality tier. Display space is the
// on-screen viewport, affected by zoom.
type Mapper struct {
	mu sync.RWMutex

	deviceW, deviceH int
	streamW, streamH int

	displayW, displayH float64

	// explicit marks device dimensions that came from an authoritative
	// message rather than the element-extent heuristic.
	explicit bool
}

// New returns a mapper with no resolved dimensions; all factors default to 1.
func New() *Mapper {
	return &Mapper{}
}

// SetDeviceSize records authoritative device dimensions. An explicit update
// always overrides an inferred one.
func (m *Mapper) SetDeviceSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	m.mu.Lock()
	m.deviceW = w
	m.deviceH = h
	m.explicit = true
	m.mu.Unlock()
}

// AdoptDeviceSize records device dimensions taken from a decoded raster.
// Unlike SetDeviceSize it can later be replaced by an authoritative update.
func (m *Mapper) AdoptDeviceSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	m.mu.Lock()
	m.deviceW = w
	m.deviceH = h
	m.explicit = false
	m.mu.Unlock()
}

// SetStreamSize records the transmitted resolution.
func (m *Mapper) SetStreamSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	m.mu.Lock()
	m.streamW = w
	m.streamH = h
	m.mu.Unlock()
}

// SetDisplaySize records the rendered viewport size in display pixels.
func (m *Mapper) SetDisplaySize(w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	m.mu.Lock()
	m.displayW = w
	m.displayH = h
	m.mu.Unlock()
}

// DeviceSize returns the current device dimensions and whether they are known.
func (m *Mapper) DeviceSize() (int, int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.deviceW, m.deviceH, m.deviceW > 0 && m.deviceH > 0
}

// InferDeviceSize derives device dimensions from the bounding extents of an
// element list when no authoritative dimensions are known yet. The extent is
// rounded to the nearest multiple of ten to absorb inset jitter.
func (m *Mapper) InferDeviceSize(elements []device.UIElement) bool {
	if len(elements) == 0 {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.explicit {
		return false
	}

	maxX, maxY := 0, 0
	for _, e := range elements {
		b := device.Normalize(e.Bounds)
		if r := b.X + b.Width; r > maxX {
			maxX = r
		}
		if b := b.Y + b.Height; b > maxY {
			maxY = b
		}
	}
	w := roundToTens(maxX)
	h := roundToTens(maxY)
	if w <= 0 || h <= 0 {
		return false
	}
	m.deviceW = w
	m.deviceH = h
	return true
}

// DeviceToStream converts a device-space point into stream space.
func (m *Mapper) DeviceToStream(x, y float64) (float64, float64) {
	sx, sy := m.deviceToStreamScale()
	return x * sx, y * sy
}

// StreamToDisplay converts a stream-space point into display space.
func (m *Mapper) StreamToDisplay(x, y float64) (float64, float64) {
	sx, sy := m.streamToDisplayScale()
	return x * sx, y * sy
}

// DeviceToDisplay converts a device-space point into display space.
func (m *Mapper) DeviceToDisplay(x, y float64) (float64, float64) {
	x, y = m.DeviceToStream(x, y)
	return m.StreamToDisplay(x, y)
}

// DisplayToDevice converts a display-space point into device space. This is
// the conversion applied before any tap or swipe is dispatched.
func (m *Mapper) DisplayToDevice(x, y float64) (float64, float64) {
	sx, sy := m.streamToDisplayScale()
	x, y = x/sx, y/sy
	dx, dy := m.deviceToStreamScale()
	return x / dx, y / dy
}

// DisplayToDevicePixel converts a display-space point into rounded device
// pixel coordinates clamped to the device bounds.
func (m *Mapper) DisplayToDevicePixel(x, y float64) (int, int) {
	fx, fy := m.DisplayToDevice(x, y)
	px := int(math.Round(fx))
	py := int(math.Round(fy))

	m.mu.RLock()
	w, h := m.deviceW, m.deviceH
	m.mu.RUnlock()
	if w > 0 {
		px = clampInt(px, 0, w-1)
	}
	if h > 0 {
		py = clampInt(py, 0, h-1)
	}
	return px, py
}

// deviceToStreamScale returns the independent X/Y device-to-stream factors.
func (m *Mapper) deviceToStreamScale() (float64, float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sx, sy := 1.0, 1.0
	if m.deviceW > 0 && m.streamW > 0 {
		sx = float64(m.streamW) / float64(m.deviceW)
	}
	if m.deviceH > 0 && m.streamH > 0 {
		sy = float64(m.streamH) / float64(m.deviceH)
	}
	return sx, sy
}

// streamToDisplayScale returns the stream-to-display factors from zoom state.
func (m *Mapper) streamToDisplayScale() (float64, float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sx, sy := 1.0, 1.0
	if m.streamW > 0 && m.displayW > 0 {
		sx = m.displayW / float64(m.streamW)
	}
	if m.streamH > 0 && m.displayH > 0 {
		sy = m.displayH / float64(m.streamH)
	}
	return sx, sy
}

// roundToTens rounds a pixel extent to the nearest multiple of ten.
func roundToTens(v int) int {
	return int(math.Round(float64(v)/10)) * 10
}

// clampInt bounds an int to the [lo..hi] range.
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
