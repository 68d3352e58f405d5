package gallery

import (
	"fmt"
	"math"

	"github.com/taigrr/moongallery/pkg/math3d"
)

// Hover defaults.
const (
	DefaultHighlightScale   = 1.1
	DefaultHighlightOpacity = 0.8
	DefaultHoverSpeed       = 0.1
)

// Hover tracks which item is under the pointer and eases every item's scale
// and opacity toward its highlighted or normal target.
//
// Each item is either NORMAL or HIGHLIGHTED. An item becomes HIGHLIGHTED
// when it is the nearest ray hit and returns to NORMAL on the first frame it
// is not. At most one item is HIGHLIGHTED at a time.
type Hover struct {
	HighlightScale   float64
	HighlightOpacity float64
	Speed            float64 // per-frame easing factor in (0, 1)
	Picker           Picker

	highlighted *PlacedItem
}

// HoverOption configures a Hover.
type HoverOption func(*Hover)

// WithHighlight sets the target scale and opacity of the highlighted item.
func WithHighlight(scale, opacity float64) HoverOption {
	return func(h *Hover) {
		h.HighlightScale = scale
		h.HighlightOpacity = opacity
	}
}

// WithSpeed sets the per-frame easing factor.
func WithSpeed(speed float64) HoverOption {
	return func(h *Hover) { h.Speed = speed }
}

// WithPicker replaces the default QuadPicker.
func WithPicker(p Picker) HoverOption {
	return func(h *Hover) { h.Picker = p }
}

// NewHover creates a Hover with the default targets and a QuadPicker.
func NewHover(opts ...HoverOption) (*Hover, error) {
	h := &Hover{
		HighlightScale:   DefaultHighlightScale,
		HighlightOpacity: DefaultHighlightOpacity,
		Speed:            DefaultHoverSpeed,
		Picker:           QuadPicker{},
	}
	for _, opt := range opts {
		opt(h)
	}
	if !(h.Speed > 0 && h.Speed < 1) {
		return nil, fmt.Errorf("%w: hover speed must be in (0, 1), got %v", ErrInvalidConfiguration, h.Speed)
	}
	if !(h.HighlightScale > 0) {
		return nil, fmt.Errorf("%w: highlight scale must be > 0, got %v", ErrInvalidConfiguration, h.HighlightScale)
	}
	if h.HighlightOpacity < 0 || h.HighlightOpacity > 1 {
		return nil, fmt.Errorf("%w: highlight opacity must be in [0, 1], got %v", ErrInvalidConfiguration, h.HighlightOpacity)
	}
	if h.Picker == nil {
		h.Picker = QuadPicker{}
	}
	return h, nil
}

// Highlighted returns the item highlighted by the last Update, if any.
func (h *Hover) Highlighted() *PlacedItem {
	return h.highlighted
}

// Update picks the nearest item under ray and advances every item's easing
// by one frame. A nil ray means the pointer is outside the view and nothing
// is hit. It returns the highlighted item, or nil.
func (h *Hover) Update(items []*PlacedItem, ray *math3d.Ray) *PlacedItem {
	var hit *PlacedItem
	if ray != nil {
		if it, _, ok := h.Picker.Pick(*ray, items); ok {
			hit = it
		}
	}

	for _, it := range items {
		scale, opacity := 1.0, 1.0
		it.Highlighted = it == hit
		if it.Highlighted {
			scale, opacity = h.HighlightScale, h.HighlightOpacity
		}
		it.Scale = math3d.V3(
			Approach(it.Scale.X, scale, h.Speed),
			Approach(it.Scale.Y, scale, h.Speed),
			Approach(it.Scale.Z, scale, h.Speed),
		)
		it.Opacity = Approach(it.Opacity, opacity, h.Speed)
	}

	h.highlighted = hit
	return hit
}

// Approach moves current one step toward target: a one-pole low-pass filter
// that converges geometrically and never lands exactly on target.
func Approach(current, target, speed float64) float64 {
	return current + (target-current)*speed
}

// FramesToSettle returns how many Approach steps it takes to shrink an
// initial offset of delta to within eps.
func FramesToSettle(delta, eps, speed float64) int {
	delta = math.Abs(delta)
	if delta <= eps {
		return 0
	}
	return int(math.Ceil(math.Log(eps/delta) / math.Log(1-speed)))
}
