package mapper

import (
	"math"
	"testing"

	"github.com/miroview/miroview/internal/device"
)

// TestRoundTrip_DeviceDisplay verifies display<->device conversions invert
// each other within rounding tolerance across quality/zoom combinations.
func TestRoundTrip_DeviceDisplay(t *testing.T) {
	cases := []struct {
		name               string
		streamW, streamH   int
		displayW, displayH float64
	}{
		{"native", 1080, 1920, 1080, 1920},
		{"downscaled", 720, 1280, 360, 640},
		{"zoomed", 540, 960, 1620, 2880},
		{"asymmetric", 720, 1920, 540, 480},
	}

	for _, tc := range cases {
		m := New()
		m.SetDeviceSize(1080, 1920)
		m.SetStreamSize(tc.streamW, tc.streamH)
		m.SetDisplaySize(tc.displayW, tc.displayH)

		points := [][2]float64{{0, 0}, {540, 960}, {1079, 1919}, {333, 777}}
		for _, p := range points {
			dx, dy := m.DeviceToDisplay(p[0], p[1])
			bx, by := m.DisplayToDevice(dx, dy)
			if math.Abs(bx-p[0]) > 0.5 || math.Abs(by-p[1]) > 0.5 {
				t.Fatalf("%s: round trip of (%v,%v) gave (%v,%v)", tc.name, p[0], p[1], bx, by)
			}
		}
	}
}

// TestDisplayToDevicePixel_Clamped verifies rounded device coordinates stay
// inside the device bounds.
func TestDisplayToDevicePixel_Clamped(t *testing.T) {
	m := New()
	m.SetDeviceSize(1080, 1920)
	m.SetStreamSize(1080, 1920)
	m.SetDisplaySize(1080, 1920)

	x, y := m.DisplayToDevicePixel(-10, 5000)
	if x != 0 || y != 1919 {
		t.Fatalf("expected clamp to (0,1919), got (%d,%d)", x, y)
	}
}

// TestInferDeviceSize_FromElementExtents verifies the rounding heuristic.
func TestInferDeviceSize_FromElementExtents(t *testing.T) {
	m := New()
	elements := []device.UIElement{
		{Bounds: device.Rect{X: 0, Y: 0, Width: 1078, Height: 300}},
		{Bounds: device.Rect{X: 100, Y: 1800, Width: 200, Height: 117}},
	}
	if !m.InferDeviceSize(elements) {
		t.Fatalf("expected inference to apply")
	}
	w, h, ok := m.DeviceSize()
	if !ok || w != 1080 || h != 1920 {
		t.Fatalf("expected 1080x1920, got %dx%d (ok=%v)", w, h, ok)
	}
}

// TestInferDeviceSize_NeverOverridesExplicit verifies an authoritative
// dimension message wins over the heuristic in either order.
func TestInferDeviceSize_NeverOverridesExplicit(t *testing.T) {
	m := New()
	m.SetDeviceSize(1080, 1920)
	if m.InferDeviceSize([]device.UIElement{{Bounds: device.Rect{Width: 720, Height: 1480}}}) {
		t.Fatalf("inference must not override explicit dimensions")
	}

	m = New()
	if !m.InferDeviceSize([]device.UIElement{{Bounds: device.Rect{Width: 720, Height: 1480}}}) {
		t.Fatalf("expected inference to apply first")
	}
	m.SetDeviceSize(1080, 1920)
	w, h, _ := m.DeviceSize()
	if w != 1080 || h != 1920 {
		t.Fatalf("explicit update must override inference, got %dx%d", w, h)
	}
}

// TestScaleFactors_IndependentAxes verifies X and Y scale independently.
func TestScaleFactors_IndependentAxes(t *testing.T) {
	m := New()
	m.SetDeviceSize(1000, 2000)
	m.SetStreamSize(500, 2000)

	x, y := m.DeviceToStream(100, 100)
	if x != 50 || y != 100 {
		t.Fatalf("expected (50,100), got (%v,%v)", x, y)
	}
}
