package gallery

import "github.com/taigrr/moongallery/pkg/math3d"

// Content is a resolved pool entry.
type Content struct {
	ID string

	// Pixel dimensions, used for the quad's aspect ratio.
	Width, Height int

	// Resource is the renderer's handle for the content, such as a texture.
	Resource any
}

// Aspect returns width/height, or 1 when the size is unknown.
func (c *Content) Aspect() float64 {
	if c == nil || c.Width <= 0 || c.Height <= 0 {
		return 1
	}
	return float64(c.Width) / float64(c.Height)
}

// PlacedItem is one content quad anchored on the gallery sphere.
type PlacedItem struct {
	Row, Col int

	Position math3d.Vec3
	Normal   math3d.Vec3 // unit, pointing away from the sphere center

	ContentID  string   // pool entry picked for the cell
	Content    *Content // nil when the cell's content failed to resolve
	ContentErr error    // why Content is nil; wraps ErrMissingContent

	// Quad extents in world units before Scale is applied.
	Width, Height float64

	Scale   math3d.Vec3
	Opacity float64

	Visible     bool
	Highlighted bool
}

// Populated reports whether the item has content to show.
func (it *PlacedItem) Populated() bool {
	return it.Content != nil
}

// Basis returns the quad's in-plane right and up vectors. The quad faces
// along Normal, and up follows world up except at the poles, where +Z is
// used as the reference axis instead.
func (it *PlacedItem) Basis() (right, up math3d.Vec3) {
	ref := math3d.Up()
	if ref.Cross(it.Normal).LenSq() < 1e-12 {
		ref = math3d.V3(0, 0, 1)
	}
	right = ref.Cross(it.Normal).Normalize()
	up = it.Normal.Cross(right)
	return right, up
}

// HalfExtents returns half the scaled quad width and height.
func (it *PlacedItem) HalfExtents() (hw, hh float64) {
	return it.Width * it.Scale.X / 2, it.Height * it.Scale.Y / 2
}

// Corners returns the scaled quad corners in world space, counter-clockwise
// from bottom-left as seen from outside the sphere.
func (it *PlacedItem) Corners() [4]math3d.Vec3 {
	right, up := it.Basis()
	hw, hh := it.HalfExtents()
	r := right.Scale(hw)
	u := up.Scale(hh)
	return [4]math3d.Vec3{
		it.Position.Sub(r).Sub(u),
		it.Position.Add(r).Sub(u),
		it.Position.Add(r).Add(u),
		it.Position.Sub(r).Add(u),
	}
}

// BoundingRadius returns the radius of a sphere around Position that
// contains the scaled quad.
func (it *PlacedItem) BoundingRadius() float64 {
	hw, hh := it.HalfExtents()
	return math3d.V3(hw, hh, 0).Len()
}
