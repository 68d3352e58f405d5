package math3d

// Ray is a half-line starting at Origin and extending along Direction.
// Direction is kept at unit length so that the parameter t of At is a
// world-space distance.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay creates a ray with a normalized direction.
// It reports false if dir has zero length.
func NewRay(origin, dir Vec3) (Ray, bool) {
	if dir.LenSq() == 0 {
		return Ray{}, false
	}
	return Ray{Origin: origin, Direction: dir.Normalize()}, true
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// IntersectPlane returns the ray parameter where it crosses the plane through
// point with the given normal. Planes parallel to the ray and crossings
// behind the origin report false. Both plane sides count.
func (r Ray) IntersectPlane(point, normal Vec3) (float64, bool) {
	const parallelEps = 1e-9
	denom := r.Direction.Dot(normal)
	if denom > -parallelEps && denom < parallelEps {
		return 0, false
	}
	t := point.Sub(r.Origin).Dot(normal) / denom
	if t < 0 {
		return 0, false
	}
	return t, true
}
