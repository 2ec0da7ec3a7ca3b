// Package device defines the device-space data model shared by the client.
package device

import "strings"

// Rect describes element bounds using top-left origin and size, in device pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Normalize returns a rectangle with non-negative width/height.
func Normalize(r Rect) Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// Contains reports whether a point is inside the rectangle (edges inclusive).
func Contains(r Rect, x, y int) bool {
	if r.Width <= 0 || r.Height <= 0 {
		return false
	}
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// UIElement is one interactive element reported alongside a frame.
// Bounds are always expressed in device space regardless of the stream
// resolution or display zoom; scaling happens at draw and hit-test time only.
type UIElement struct {
	Class       string `json:"class"`
	Text        string `json:"text"`
	ContentDesc string `json:"content_desc"`
	ResourceID  string `json:"resource_id"`
	Clickable   bool   `json:"clickable"`
	Bounds      Rect   `json:"bounds"`
}

// HasText reports whether the element carries visible text.
func (e UIElement) HasText() bool {
	return strings.TrimSpace(e.Text) != ""
}

// HasContentDesc reports whether the element carries an accessibility description.
func (e UIElement) HasContentDesc() bool {
	return strings.TrimSpace(e.ContentDesc) != ""
}

// HasResourceID reports whether the element carries a resource identifier.
func (e UIElement) HasResourceID() bool {
	return strings.TrimSpace(e.ResourceID) != ""
}

// Descriptor carries the native resolution and name of the mirrored device.
type Descriptor struct {
	Name   string
	Width  int
	Height int
}

// Valid reports whether the descriptor carries a usable resolution.
func (d Descriptor) Valid() bool {
	return d.Width > 0 && d.Height > 0
}
