package client

import (
	"fmt"
	"image"
	"testing"

	"github.com/miroview/miroview/internal/decode"
	"github.com/miroview/miroview/internal/device"
)

func frameOf(w, h int) decode.Frame {
	return decode.Frame{
		Raster: image.NewRGBA(image.Rect(0, 0, 1, 1)),
		Width:  w,
		Height: h,
	}
}

func elementGrid(n int) []device.UIElement {
	out := make([]device.UIElement, n)
	for i := range out {
		out[i] = device.UIElement{
			Class:  "android.widget.Button",
			Text:   fmt.Sprintf("button %d", i),
			Bounds: device.Rect{X: i * 10, Y: i * 10, Width: 40, Height: 40},
		}
	}
	return out
}

// TestSession_DimensionChangeClearsElements verifies a raster dimension
// change empties the cached element list before the next render.
func TestSession_DimensionChangeClearsElements(t *testing.T) {
	sess := newSession("dev-1", decode.ModeJSON, "high")

	if sess.SetFrame(frameOf(1080, 1920)) {
		t.Fatalf("first frame must not invalidate")
	}
	sess.SetElements(elementGrid(20))
	if len(sess.Elements()) != 20 {
		t.Fatalf("expected 20 cached elements")
	}

	if !sess.SetFrame(frameOf(720, 1480)) {
		t.Fatalf("expected dimension change to invalidate")
	}
	if len(sess.Elements()) != 0 {
		t.Fatalf("expected cached elements cleared, got %d", len(sess.Elements()))
	}
}

// TestSession_SameDimensionsKeepElements verifies same-size frames leave the
// element cache intact.
func TestSession_SameDimensionsKeepElements(t *testing.T) {
	sess := newSession("dev-1", decode.ModeJSON, "high")
	sess.SetFrame(frameOf(1080, 1920))
	sess.SetElements(elementGrid(5))

	if sess.SetFrame(frameOf(1080, 1920)) {
		t.Fatalf("same dimensions must not invalidate")
	}
	if len(sess.Elements()) != 5 {
		t.Fatalf("expected elements retained")
	}
}

// TestSession_KeepsOnlyLatestFrame verifies frames replace each other rather
// than queueing.
func TestSession_KeepsOnlyLatestFrame(t *testing.T) {
	sess := newSession("dev-1", decode.ModeMJPEG, "")
	first := frameOf(640, 480)
	first.Seq = 1
	second := frameOf(640, 480)
	second.Seq = 2

	sess.SetFrame(first)
	sess.SetFrame(second)
	if got := sess.Frame().Seq; got != 2 {
		t.Fatalf("expected latest frame retained, got seq %d", got)
	}
}

// TestSession_IdentityAndClipboard covers the remaining accessors.
func TestSession_IdentityAndClipboard(t *testing.T) {
	sess := newSession("dev-9", decode.ModeH264, "low")
	if sess.ID() == "" {
		t.Fatalf("expected a session id")
	}
	if sess.DeviceID() != "dev-9" || sess.Mode() != decode.ModeH264 || sess.Quality() != "low" {
		t.Fatalf("unexpected session identity")
	}

	sess.SetDescriptor(device.Descriptor{Name: "pixel", Width: 1080, Height: 2400})
	if sess.Descriptor().Name != "pixel" {
		t.Fatalf("expected descriptor retained")
	}
	sess.SetClipboard("copied text")
	if sess.Clipboard() != "copied text" {
		t.Fatalf("expected clipboard retained")
	}
}
