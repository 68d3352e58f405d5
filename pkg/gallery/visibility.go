package gallery

import "github.com/taigrr/moongallery/pkg/math3d"

// Viewer is a read-only snapshot of the camera for one frame.
type Viewer struct {
	Position math3d.Vec3
	Forward  math3d.Vec3 // unit
}

// FacingScore returns the cosine between the viewer's forward direction and
// the direction to p. Positive scores are ahead of the viewer.
func FacingScore(v Viewer, p math3d.Vec3) float64 {
	return v.Forward.Dot(p.Sub(v.Position).Normalize())
}

// UpdateVisibility hides every item that is behind the viewer or farther
// than maxDistance away, and shows the rest. Unpopulated items stay hidden.
//
// This is a cheap heuristic, not frustum culling: with maxDistance set to
// the gallery radius it suppresses the far side of the sphere without any
// depth sorting.
func UpdateVisibility(items []*PlacedItem, v Viewer, maxDistance float64) {
	for _, it := range items {
		if !it.Populated() {
			it.Visible = false
			continue
		}
		toItem := it.Position.Sub(v.Position)
		facing := v.Forward.Dot(toItem.Normalize())
		it.Visible = facing >= 0 && toItem.Len() <= maxDistance
	}
}
