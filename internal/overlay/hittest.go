package overlay

import "github.com/miroview/miroview/internal/device"

// FindElementAt returns the element under a device-space point, or nil.
// The list is scanned in reverse so the topmost-drawn element wins; among
// overlapping candidates, one carrying visible text is preferred over a
// clickable-only match. Only elements passing every active filter count.
func (r *Renderer) FindElementAt(elements []device.UIElement, x, y int) *device.UIElement {
	r.mu.RLock()
	filters := r.filters
	r.mu.RUnlock()

	var fallback *device.UIElement
	for i := len(elements) - 1; i >= 0; i-- {
		e := elements[i]
		if !device.Contains(device.Normalize(e.Bounds), x, y) || !filters.Passes(e) {
			continue
		}
		if e.HasText() {
			return &elements[i]
		}
		if fallback == nil {
			fallback = &elements[i]
		}
	}
	return fallback
}
