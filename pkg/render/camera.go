package render

import (
	"math"

	"github.com/taigrr/moongallery/pkg/gallery"
	"github.com/taigrr/moongallery/pkg/math3d"
)

// Camera is a perspective camera oriented by pitch and yaw.
type Camera struct {
	// Position in world space
	Position math3d.Vec3

	// Orientation (radians)
	Pitch float64 // Rotation around X axis (look up/down)
	Yaw   float64 // Rotation around Y axis (look left/right)

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64 // Near clipping plane
	Far         float64 // Far clipping plane

	// Cached matrices (computed on demand)
	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	viewProjDirty  bool
}

// NewCamera creates a camera at (4, 0, 0) with a 75° field of view.
func NewCamera() *Camera {
	c := &Camera{
		FOV:         75 * math.Pi / 180,
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         1000,
	}
	c.SetPosition(math3d.V3(4, 0, 0))
	c.LookAt(math3d.Zero3())
	c.projDirty = true
	return c
}

// SetPosition sets the camera position.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.viewDirty = true
}

// SetFOV sets the vertical field of view (in radians).
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.projDirty = true
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.projDirty = true
}

// Forward returns the unit view direction.
func (c *Camera) Forward() math3d.Vec3 {
	// -Z in camera space, rotated by pitch then yaw
	return math3d.V3(
		-math.Sin(c.Yaw)*math.Cos(c.Pitch),
		math.Sin(c.Pitch),
		-math.Cos(c.Yaw)*math.Cos(c.Pitch),
	)
}

// Right returns the unit right vector.
func (c *Camera) Right() math3d.Vec3 {
	return math3d.V3(math.Cos(c.Yaw), 0, -math.Sin(c.Yaw))
}

// Up returns the unit up vector.
func (c *Camera) Up() math3d.Vec3 {
	return c.Right().Cross(c.Forward())
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.Position).Normalize()
	if dir.LenSq() == 0 {
		return
	}

	c.Pitch = math.Asin(math.Max(-1, math.Min(1, dir.Y)))
	c.Yaw = math.Atan2(-dir.X, -dir.Z)
	c.viewDirty = true
}

// Viewer returns the camera's position and direction for visibility tests.
func (c *Camera) Viewer() gallery.Viewer {
	return gallery.Viewer{Position: c.Position, Forward: c.Forward()}
}

// PointerRay returns the world-space ray through normalized device
// coordinates (ndcX, ndcY), both in [-1, 1] with +Y up.
// Pointers outside the viewport produce no ray.
func (c *Camera) PointerRay(ndcX, ndcY float64) (math3d.Ray, bool) {
	if !(ndcX >= -1 && ndcX <= 1 && ndcY >= -1 && ndcY <= 1) {
		return math3d.Ray{}, false
	}
	tanHalf := math.Tan(c.FOV / 2)
	dir := c.Forward().
		Add(c.Right().Scale(ndcX * tanHalf * c.AspectRatio)).
		Add(c.Up().Scale(ndcY * tanHalf))
	return math3d.NewRay(c.Position, dir)
}

// NDC converts a cell position in a width x height viewport to normalized
// device coordinates, sampling the center of the cell.
func NDC(x, y, width, height int) (float64, float64) {
	if width <= 0 || height <= 0 {
		return math.NaN(), math.NaN()
	}
	nx := (float64(x)+0.5)/float64(width)*2 - 1
	ny := 1 - (float64(y)+0.5)/float64(height)*2
	return nx, ny
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		// Inverse orientation, then move the world opposite the camera
		rot := math3d.RotateX(-c.Pitch).Mul(math3d.RotateY(-c.Yaw))
		c.viewMatrix = rot.Mul(math3d.Translate(c.Position.Negate()))
		c.viewDirty = false
		c.viewProjDirty = true
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
		c.viewProjDirty = true
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	view := c.ViewMatrix()
	proj := c.ProjectionMatrix()
	if c.viewProjDirty {
		c.viewProjMatrix = proj.Mul(view)
		c.viewProjDirty = false
	}
	return c.viewProjMatrix
}

// WorldToScreen transforms a world point to screen coordinates.
// Returns (screenX, screenY, depth, visible).
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clipPos := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))

	// Behind camera
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clipPos.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight) // Y is flipped
	return x, y, ndc.Z, true
}
