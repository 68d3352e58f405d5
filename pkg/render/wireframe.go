package render

import (
	"github.com/taigrr/moongallery/pkg/gallery"
	"github.com/taigrr/moongallery/pkg/math3d"
)

// DrawLine3D draws a world-space line on top of the frame, ignoring depth.
// Lines with an endpoint behind the camera are skipped.
func (r *Rasterizer) DrawLine3D(a, b math3d.Vec3, color Color) {
	viewProj := r.camera.ViewProjectionMatrix()
	sa, okA := r.project(viewProj, a)
	sb, okB := r.project(viewProj, b)
	if !okA || !okB {
		return
	}
	r.fb.DrawLine(int(sa.X), int(sa.Y), int(sb.X), int(sb.Y), color)
}

// DrawMeshWireframe draws every triangle edge of a mesh (x-ray view).
func (r *Rasterizer) DrawMeshWireframe(mesh MeshRenderer, transform math3d.Mat4, color Color) {
	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)
		p0, _, _ := mesh.GetVertex(face[0])
		p1, _, _ := mesh.GetVertex(face[1])
		p2, _, _ := mesh.GetVertex(face[2])

		v0 := transform.MulVec3(p0)
		v1 := transform.MulVec3(p1)
		v2 := transform.MulVec3(p2)

		r.DrawLine3D(v0, v1, color)
		r.DrawLine3D(v1, v2, color)
		r.DrawLine3D(v2, v0, color)
	}
}

// DrawItemOutline frames an item's current quad.
func (r *Rasterizer) DrawItemOutline(item *gallery.PlacedItem, color Color) {
	if item == nil || !item.Visible {
		return
	}
	c := item.Corners()
	for i := range c {
		r.DrawLine3D(c[i], c[(i+1)%len(c)], color)
	}
}
