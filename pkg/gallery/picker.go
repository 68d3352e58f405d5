package gallery

import (
	"math"

	"github.com/taigrr/moongallery/pkg/math3d"
)

// Picker casts a ray against the placed items and reports the nearest hit
// with its distance along the ray.
type Picker interface {
	Pick(ray math3d.Ray, items []*PlacedItem) (hit *PlacedItem, t float64, ok bool)
}

// QuadPicker intersects rays with the scaled, double-sided quads of the
// visible items.
type QuadPicker struct{}

// Pick returns the visible item whose quad the ray hits first.
// On equal distances the earlier item wins.
func (QuadPicker) Pick(ray math3d.Ray, items []*PlacedItem) (*PlacedItem, float64, bool) {
	var (
		best  *PlacedItem
		bestT = math.Inf(1)
	)
	for _, it := range items {
		if !it.Visible || !it.Populated() {
			continue
		}
		t, ok := IntersectQuad(ray, it)
		if ok && t < bestT {
			best, bestT = it, t
		}
	}
	if best == nil {
		return nil, 0, false
	}
	return best, bestT, true
}

// IntersectQuad returns the distance along ray to the item's quad.
func IntersectQuad(ray math3d.Ray, it *PlacedItem) (float64, bool) {
	t, ok := ray.IntersectPlane(it.Position, it.Normal)
	if !ok {
		return 0, false
	}
	d := ray.At(t).Sub(it.Position)
	right, up := it.Basis()
	hw, hh := it.HalfExtents()
	if math.Abs(d.Dot(right)) > hw || math.Abs(d.Dot(up)) > hh {
		return 0, false
	}
	return t, true
}
