// Package overlay filters, renders, and hit-tests UI element hitboxes.
package overlay

import (
	"strings"

	"github.com/miroview/miroview/internal/device"
	"github.com/samber/lo"
)

// containerClasses are layout classes that carry no interaction of their own.
var containerClasses = map[string]struct{}{
	"android.widget.FrameLayout":                       {},
	"android.widget.LinearLayout":                      {},
	"android.widget.RelativeLayout":                    {},
	"android.widget.GridLayout":                        {},
	"android.widget.TableLayout":                       {},
	"android.widget.ScrollView":                        {},
	"android.widget.HorizontalScrollView":              {},
	"android.view.ViewGroup":                           {},
	"androidx.constraintlayout.widget.ConstraintLayout": {},
	"androidx.recyclerview.widget.RecyclerView":        {},
	"androidx.viewpager.widget.ViewPager":              {},
	"androidx.cardview.widget.CardView":                {},
}

// Filters controls element visibility. The toggles are independent and
// AND-combined: an element must pass every active filter to be drawn or
// hit-tested.
type Filters struct {
	ShowClickable     bool `yaml:"show_clickable"`
	ShowNonClickable  bool `yaml:"show_non_clickable"`
	MinSize           int  `yaml:"min_size"`
	HideContainers    bool `yaml:"hide_containers"`
	HideEmptyElements bool `yaml:"hide_empty_elements"`
	ShowLabels        bool `yaml:"show_labels"`
}

// DefaultFilters shows every element with labels enabled.
func DefaultFilters() Filters {
	return Filters{
		ShowClickable:    true,
		ShowNonClickable: true,
		ShowLabels:       true,
	}
}

// Passes reports whether an element survives every active filter.
func (f Filters) Passes(e device.UIElement) bool {
	if e.Clickable && !f.ShowClickable {
		return false
	}
	if !e.Clickable && !f.ShowNonClickable {
		return false
	}

	b := device.Normalize(e.Bounds)
	if f.MinSize > 0 && (b.Width < f.MinSize || b.Height < f.MinSize) {
		return false
	}

	if f.HideContainers && isContainer(e.Class) && !e.Clickable && !e.HasResourceID() {
		return false
	}

	if f.HideEmptyElements {
		if !e.HasText() && !e.HasContentDesc() && !(e.Clickable && e.HasResourceID()) {
			return false
		}
	}
	return true
}

// Visible returns the elements passing every active filter, in input order.
func (f Filters) Visible(elements []device.UIElement) []device.UIElement {
	return lo.Filter(elements, func(e device.UIElement, _ int) bool {
		return f.Passes(e)
	})
}

// isContainer reports whether a class name is a known layout container.
func isContainer(class string) bool {
	if _, ok := containerClasses[class]; ok {
		return true
	}
	// Vendor subclasses keep the stock suffix.
	return strings.HasSuffix(class, "Layout") || strings.HasSuffix(class, "ViewGroup")
}
