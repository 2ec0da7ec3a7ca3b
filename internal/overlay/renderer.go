package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"github.com/miroview/miroview/internal/device"
	"github.com/miroview/miroview/internal/mapper"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	labelHeight  = 14
	labelMaxRune = 28
)

var (
	colorClickable    = color.RGBA{R: 0x2E, G: 0xCC, B: 0x71, A: 0xFF}
	colorNonClickable = color.RGBA{R: 0x95, G: 0xA5, B: 0xA6, A: 0xFF}
	colorLabelBack    = color.RGBA{A: 0xB4}
	colorLabelText    = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// Renderer composites the raster and filtered element hitboxes into a
// viewport image and services hit-testing against the same filter state.
type Renderer struct {
	mu      sync.RWMutex
	mapper  *mapper.Mapper
	filters Filters
}

// NewRenderer creates a renderer bound to the session's coordinate mapper.
func NewRenderer(m *mapper.Mapper) *Renderer {
	return &Renderer{mapper: m, filters: DefaultFilters()}
}

// SetFilters replaces the active filter configuration.
func (r *Renderer) SetFilters(f Filters) {
	r.mu.Lock()
	r.filters = f
	r.mu.Unlock()
}

// ActiveFilters returns the current filter configuration.
func (r *Renderer) ActiveFilters() Filters {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filters
}

// Render clears the viewport, draws the raster at native size, then strokes
// one rectangle per element passing every active filter. Element bounds stay
// authored in device space; they are scaled to the raster here, at draw time.
func (r *Renderer) Render(raster image.Image, elements []device.UIElement) *image.RGBA {
	r.mu.RLock()
	filters := r.filters
	r.mu.RUnlock()

	if raster == nil {
		return nil
	}
	bounds := raster.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), raster, bounds.Min, draw.Src)

	for _, e := range elements {
		if !filters.Passes(e) {
			continue
		}
		rect := r.elementRect(e)
		stroke := colorNonClickable
		if e.Clickable {
			stroke = colorClickable
		}
		strokeRect(dst, rect, stroke)
		if filters.ShowLabels && e.HasText() {
			drawLabel(dst, rect, truncateLabel(e.Text))
		}
	}
	return dst
}

// elementRect scales device-space bounds into raster pixels.
func (r *Renderer) elementRect(e device.UIElement) image.Rectangle {
	b := device.Normalize(e.Bounds)
	x0, y0 := r.mapper.DeviceToStream(float64(b.X), float64(b.Y))
	x1, y1 := r.mapper.DeviceToStream(float64(b.X+b.Width), float64(b.Y+b.Height))
	return image.Rect(
		int(math.Round(x0)), int(math.Round(y0)),
		int(math.Round(x1)), int(math.Round(y1)),
	)
}

// strokeRect draws a one-pixel rectangle outline clipped to dst.
func strokeRect(dst *image.RGBA, rect image.Rectangle, c color.Color) {
	rect = rect.Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}
	for x := rect.Min.X; x < rect.Max.X; x++ {
		dst.Set(x, rect.Min.Y, c)
		dst.Set(x, rect.Max.Y-1, c)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		dst.Set(rect.Min.X, y, c)
		dst.Set(rect.Max.X-1, y, c)
	}
}

// drawLabel draws a translucent strip with truncated text above the box,
// falling inside it when the box touches the top edge.
func drawLabel(dst *image.RGBA, rect image.Rectangle, text string) {
	if text == "" {
		return
	}
	top := rect.Min.Y - labelHeight
	if top < dst.Bounds().Min.Y {
		top = rect.Min.Y
	}
	strip := image.Rect(rect.Min.X, top, rect.Max.X, top+labelHeight).Intersect(dst.Bounds())
	if strip.Empty() {
		return
	}
	draw.Draw(dst, strip, image.NewUniform(colorLabelBack), image.Point{}, draw.Over)

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(colorLabelText),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(strip.Min.X+2, strip.Max.Y-3),
	}
	d.DrawString(text)
}

// truncateLabel bounds label text to the strip width.
func truncateLabel(text string) string {
	runes := []rune(text)
	if len(runes) <= labelMaxRune {
		return text
	}
	return string(runes[:labelMaxRune-1]) + "…"
}
