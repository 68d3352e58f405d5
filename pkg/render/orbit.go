package render

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/taigrr/moongallery/pkg/math3d"
)

// orbitAxis is one orbit coordinate whose velocity springs back to zero.
type orbitAxis struct {
	Value     float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // spring velocity of Velocity itself
}

func newOrbitAxis(fps int, frequency, damping float64, value float64) orbitAxis {
	return orbitAxis{
		Value:     value,
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping),
	}
}

// update applies velocity to the value and eases velocity toward 0.
func (a *orbitAxis) update() {
	a.Value += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// stop pins the axis at value and drops all motion.
func (a *orbitAxis) stop(value float64) {
	a.Value = value
	a.Velocity = 0
	a.velAccel = 0
}

// OrbitSettings configures OrbitControls.
type OrbitSettings struct {
	FPS         int
	Distance    float64 // initial distance from target
	MinDistance float64
	MaxDistance float64
	RotateSpeed float64 // radians of velocity per dragged cell
	ZoomSpeed   float64 // distance of velocity per wheel notch

	// Spring that decays drag and zoom velocity. Damping 1 is critically
	// damped.
	Frequency float64
	Damping   float64
}

// DefaultOrbitSettings returns the inertia and zoom limits of the original
// gallery controls.
func DefaultOrbitSettings() OrbitSettings {
	return OrbitSettings{
		FPS:         60,
		Distance:    4,
		MinDistance: 3,
		MaxDistance: 150,
		RotateSpeed: 0.01,
		ZoomSpeed:   0.5,
		Frequency:   4,
		Damping:     1,
	}
}

// minPolar keeps the camera off the poles where yaw is undefined.
const minPolar = 0.01

// OrbitControls moves a camera on a sphere around a target point with
// inertia. Drag and Zoom add velocity, and Update integrates one frame.
type OrbitControls struct {
	Target   math3d.Vec3
	settings OrbitSettings

	polar    orbitAxis // angle from +Y
	azimuth  orbitAxis // angle around Y from +X
	distance orbitAxis
}

// NewOrbitControls creates controls looking at the origin from +X.
func NewOrbitControls(s OrbitSettings) *OrbitControls {
	o := &OrbitControls{settings: s}
	o.Reset()
	return o
}

// Reset returns the camera to its initial position and stops all motion.
func (o *OrbitControls) Reset() {
	s := o.settings
	o.polar = newOrbitAxis(s.FPS, s.Frequency, s.Damping, math.Pi/2)
	o.azimuth = newOrbitAxis(s.FPS, s.Frequency, s.Damping, 0)
	o.distance = newOrbitAxis(s.FPS, s.Frequency, s.Damping, o.clampDistance(s.Distance))
}

// Drag adds angular velocity for a pointer drag of (dx, dy) cells.
func (o *OrbitControls) Drag(dx, dy float64) {
	o.azimuth.Velocity -= dx * o.settings.RotateSpeed
	o.polar.Velocity -= dy * o.settings.RotateSpeed
}

// Zoom adds radial velocity; positive notches move toward the target.
func (o *OrbitControls) Zoom(notches float64) {
	o.distance.Velocity -= notches * o.settings.ZoomSpeed
}

// Distance returns the current distance from the target.
func (o *OrbitControls) Distance() float64 {
	return o.distance.Value
}

// Moving reports whether any axis still has velocity.
func (o *OrbitControls) Moving() bool {
	const rest = 1e-6
	return math.Abs(o.polar.Velocity) > rest ||
		math.Abs(o.azimuth.Velocity) > rest ||
		math.Abs(o.distance.Velocity) > rest
}

// Update advances the orbit by one frame and places cam on it.
func (o *OrbitControls) Update(cam *Camera) {
	o.polar.update()
	o.azimuth.update()
	o.distance.update()

	if o.polar.Value < minPolar || o.polar.Value > math.Pi-minPolar {
		o.polar.stop(math.Max(minPolar, math.Min(math.Pi-minPolar, o.polar.Value)))
	}
	if d := o.clampDistance(o.distance.Value); d != o.distance.Value {
		o.distance.stop(d)
	}
	o.azimuth.Value = math.Mod(o.azimuth.Value, 2*math.Pi)

	o.Place(cam)
}

// Place positions cam on the orbit without advancing it.
func (o *OrbitControls) Place(cam *Camera) {
	offset := math3d.Spherical(o.distance.Value, o.polar.Value, o.azimuth.Value)
	cam.SetPosition(o.Target.Add(offset))
	cam.LookAt(o.Target)
}

func (o *OrbitControls) clampDistance(d float64) float64 {
	return math.Max(o.settings.MinDistance, math.Min(o.settings.MaxDistance, d))
}
