package render

import (
	"math"

	"github.com/taigrr/moongallery/pkg/gallery"
	"github.com/taigrr/moongallery/pkg/math3d"
)

// Vertex represents a vertex with all attributes needed for rasterization.
type Vertex struct {
	Position math3d.Vec3 // World position
	Normal   math3d.Vec3 // Normal vector (for lighting)
	UV       math3d.Vec2 // Texture coordinates
	Color    Color       // Vertex color, used when the material has no texture
}

// Triangle represents a triangle to be rasterized.
type Triangle struct {
	V [3]Vertex
}

// Material controls how a triangle is shaded.
type Material struct {
	Texture     *Texture
	Lit         bool    // Lambert lighting with ambient floor; unlit draws full bright
	Opacity     float64 // 0 is invisible, 1 is opaque
	DoubleSided bool    // Draw back faces too
}

// Rasterizer handles software triangle rasterization.
type Rasterizer struct {
	camera       *Camera
	fb           *Framebuffer
	zbuffer      []float64 // Depth buffer (1D array, row-major)
	frustum      Frustum   // Cached frustum planes
	frustumDirty bool      // Whether frustum needs recalculation
	Ambient      float64   // Light floor for lit materials
	Stats        DrawStats // Per-frame counters for the HUD and tests
}

// DrawStats counts the work done since the last ResetStats.
type DrawStats struct {
	Triangles    int // Triangles that reached the rasterization stage
	ItemsTested  int // Gallery items tested against the frustum
	ItemsCulled  int // Items culled (not rendered)
	ItemsDrawn   int // Items that passed culling
	PointsDrawn  int // Points that passed the depth test
	MeshesCulled int
}

// NewRasterizer creates a new rasterizer.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		camera:       camera,
		fb:           fb,
		frustumDirty: true,
		Ambient:      0.3,
	}
	r.Resize()
	return r
}

// Resize resizes the rasterizer's buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth clears the Z-buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// InvalidateFrustum marks the frustum as needing recalculation.
// Call this when the camera moves or rotates.
func (r *Rasterizer) InvalidateFrustum() {
	r.frustumDirty = true
}

// Frustum returns the current frustum (updating if needed).
func (r *Rasterizer) Frustum() Frustum {
	if r.frustumDirty {
		r.frustum = r.camera.Frustum()
		r.frustumDirty = false
	}
	return r.frustum
}

// ResetStats resets the draw statistics (call once per frame).
func (r *Rasterizer) ResetStats() {
	r.Stats = DrawStats{}
}

// Depth returns the depth at (x, y).
func (r *Rasterizer) Depth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y      float64 // Screen coordinates
	Z         float64 // Depth (for Z-buffer)
	W         float64 // W coordinate (for perspective-correct interpolation)
	Color     Color
	UV        math3d.Vec2
	Intensity float64
}

// project transforms a world point to screen space. Points on or behind
// the camera plane are rejected.
func (r *Rasterizer) project(viewProj math3d.Mat4, p math3d.Vec3) (screenVertex, bool) {
	clipPos := viewProj.MulVec4(math3d.V4FromV3(p, 1))
	if clipPos.W <= 0 {
		return screenVertex{}, false
	}
	invW := 1.0 / clipPos.W
	return screenVertex{
		X: (clipPos.X*invW + 1) * 0.5 * float64(r.Width()),
		Y: (1 - clipPos.Y*invW) * 0.5 * float64(r.Height()), // Y flipped
		Z: clipPos.Z * invW,
		W: clipPos.W,
	}, true
}

// edgeCoeffs returns A, B, C for the edge function A*x + B*y + C of the
// edge (x0, y0) -> (x1, y1).
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1 // dy
	B = x1 - x0 // -dx
	C = x0*y1 - x1*y0
	return
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

// DrawTriangle rasterizes a triangle with Gouraud lighting, perspective
// correct texturing and opacity.
func (r *Rasterizer) DrawTriangle(tri Triangle, mat Material, lightDir math3d.Vec3) {
	if mat.Opacity <= 0 || r.Width() == 0 || r.Height() == 0 {
		return
	}

	var sv [3]screenVertex
	viewProj := r.camera.ViewProjectionMatrix()
	normLight := lightDir.Normalize()

	for i := range 3 {
		v, ok := r.project(viewProj, tri.V[i].Position)
		if !ok {
			// No near-plane clipping; partially visible triangles are dropped
			return
		}
		v.UV = tri.V[i].UV
		v.Color = tri.V[i].Color
		v.Intensity = 1
		if mat.Lit {
			diffuse := math.Max(0, tri.V[i].Normal.Dot(normLight))
			v.Intensity = r.Ambient + (1-r.Ambient)*diffuse
		}
		sv[i] = v
	}

	// Backface culling (using screen-space winding)
	cross := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	if cross == 0 {
		return
	}
	if cross < 0 {
		if !mat.DoubleSided {
			return
		}
		sv[1], sv[2] = sv[2], sv[1]
		cross = -cross
	}

	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		return
	}
	r.Stats.Triangles++

	A0, B0, C0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	A1, B1, C1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	A2, B2, C2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)
	invArea := 1.0 / cross

	var invW [3]float64
	for i := range 3 {
		invW[i] = 1.0 / sv[i].W
	}

	px := float64(minX) + 0.5
	py := float64(minY) + 0.5
	w0Row := A0*px + B0*py + C0
	w1Row := A1*px + B1*py + C1
	w2Row := A2*px + B2*py + C2

	width := r.Width()
	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		rowOffset := y * width

		for x := minX; x <= maxX; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				bc0, bc1, bc2 := w0*invArea, w1*invArea, w2*invArea
				z := bc0*sv[0].Z + bc1*sv[1].Z + bc2*sv[2].Z
				idx := rowOffset + x

				if z < r.zbuffer[idx] {
					// Perspective-correct interpolation
					pw0, pw1, pw2 := bc0*invW[0], bc1*invW[1], bc2*invW[2]
					inv := 1.0 / (pw0 + pw1 + pw2)
					intensity := (pw0*sv[0].Intensity + pw1*sv[1].Intensity + pw2*sv[2].Intensity) * inv
					var c Color
					if mat.Texture != nil {
						u := (pw0*sv[0].UV.X + pw1*sv[1].UV.X + pw2*sv[2].UV.X) * inv
						v := (pw0*sv[0].UV.Y + pw1*sv[1].UV.Y + pw2*sv[2].UV.Y) * inv
						c = mat.Texture.Sample(u, v)
					} else {
						c = interpolateColor3(sv[0].Color, sv[1].Color, sv[2].Color, math3d.V3(bc0, bc1, bc2))
					}

					if mat.Lit {
						c = MultiplyColor(c, intensity)
					}
					alpha := mat.Opacity * float64(c.A) / 255
					if alpha > 0 {
						r.zbuffer[idx] = z
						r.fb.Blend(x, y, c, alpha)
					}
				}
			}
			w0 += A0
			w1 += A1
			w2 += A2
		}
		w0Row += B0
		w1Row += B1
		w2Row += B2
	}
}

// interpolateColor3 interpolates between 3 colors using barycentric coords.
func interpolateColor3(c0, c1, c2 Color, bc math3d.Vec3) Color {
	mix := func(a, b, c uint8) uint8 {
		return uint8(math.Min(255, float64(a)*bc.X+float64(b)*bc.Y+float64(c)*bc.Z+0.5))
	}
	return Color{
		R: mix(c0.R, c1.R, c2.R),
		G: mix(c0.G, c1.G, c2.G),
		B: mix(c0.B, c1.B, c2.B),
		A: mix(c0.A, c1.A, c2.A),
	}
}

// MeshRenderer is implemented by models.Mesh.
// This interface allows drawing meshes without importing the models package.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer extends MeshRenderer with bounding box support for frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// DrawMesh renders a mesh with the given transform and material. Meshes
// that report bounds are culled against the frustum first. Reports whether
// the mesh was drawn.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, transform math3d.Mat4, mat Material, lightDir math3d.Vec3) bool {
	if bounded, ok := mesh.(BoundedMeshRenderer); ok {
		lo, hi := bounded.GetBounds()
		center := transform.MulVec3(lo.Add(hi).Scale(0.5))
		radius := transform.MulVec3(hi).Distance(center)
		if !r.Frustum().IntersectsSphere(center, radius) {
			r.Stats.MeshesCulled++
			return false
		}
	}

	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)
		var tri Triangle
		for k := range 3 {
			p, n, uv := mesh.GetVertex(face[k])
			tri.V[k] = Vertex{
				Position: transform.MulVec3(p),
				Normal:   transform.MulVec3Dir(n).Normalize(),
				UV:       uv,
				Color:    ColorWhite,
			}
		}
		r.DrawTriangle(tri, mat, lightDir)
	}
	return true
}

// itemUVs map the corners BL, BR, TR, TL of an item to the image.
var itemUVs = [4]math3d.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

// DrawItem renders a gallery item as a double-sided, unlit, textured quad
// at its current scale and opacity. Items with no texture are drawn in
// fallback. Hidden items and items outside the frustum are skipped.
// Reports whether the item was drawn.
func (r *Rasterizer) DrawItem(item *gallery.PlacedItem, fallback Color) bool {
	if item == nil || !item.Visible {
		return false
	}
	r.Stats.ItemsTested++
	if !r.Frustum().IntersectsSphere(item.Position, item.BoundingRadius()) {
		r.Stats.ItemsCulled++
		return false
	}
	r.Stats.ItemsDrawn++

	mat := Material{Opacity: item.Opacity, DoubleSided: true}
	if item.Content != nil {
		mat.Texture, _ = item.Content.Resource.(*Texture)
	}

	corners := item.Corners()
	var quad [4]Vertex
	for i := range quad {
		quad[i] = Vertex{
			Position: corners[i],
			Normal:   item.Normal,
			UV:       itemUVs[i],
			Color:    fallback,
		}
	}
	r.DrawTriangle(Triangle{V: [3]Vertex{quad[0], quad[2], quad[1]}}, mat, item.Normal)
	r.DrawTriangle(Triangle{V: [3]Vertex{quad[0], quad[3], quad[2]}}, mat, item.Normal)
	return true
}

// DrawPoints renders each point as a single depth-tested pixel.
func (r *Rasterizer) DrawPoints(points []math3d.Vec3, c Color) {
	if r.Width() == 0 || r.Height() == 0 {
		return
	}
	viewProj := r.camera.ViewProjectionMatrix()
	width, height := r.Width(), r.Height()
	for _, p := range points {
		sv, ok := r.project(viewProj, p)
		if !ok || sv.Z < -1 || sv.Z > 1 {
			continue
		}
		x, y := int(sv.X), int(sv.Y)
		if x < 0 || x >= width || y < 0 || y >= height {
			continue
		}
		idx := y*width + x
		if sv.Z >= r.zbuffer[idx] {
			continue
		}
		r.zbuffer[idx] = sv.Z
		r.fb.SetPixel(x, y, c)
		r.Stats.PointsDrawn++
	}
}
