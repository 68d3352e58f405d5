package models

import (
	"encoding/binary"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/moongallery/pkg/math3d"
)

// writeTetra saves a GLB tetrahedron with no normals, offset from the
// origin and twice the unit size.
func writeTetra(t *testing.T) string {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{
		{12, 2, 2}, {8, -2, 2}, {8, 2, -2}, {12, -2, -2},
	})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2, 0, 3, 1, 0, 2, 3, 1, 3, 2})
	doc.Meshes = []*gltf.Mesh{{
		Name: "tetra",
		Primitives: []*gltf.Primitive{{
			Indices:    &idx,
			Attributes: map[string]int{gltf.POSITION: pos},
		}},
	}}

	path := filepath.Join(t.TempDir(), "tetra.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("save glb: %v", err)
	}
	return path
}

func TestLoadMoonInvalidPath(t *testing.T) {
	if _, _, err := LoadMoon("/nonexistent/path.glb", 2); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if !loader.CalculateNormals {
		t.Error("CalculateNormals should default to true")
	}
}

func TestLoadMoonFitsRadius(t *testing.T) {
	mesh, tex, err := LoadMoon(writeTetra(t), 2)
	if err != nil {
		t.Fatalf("LoadMoon: %v", err)
	}
	if tex != nil {
		t.Error("tetra has no texture")
	}
	if mesh.VertexCount() != 4 || mesh.TriangleCount() != 4 {
		t.Fatalf("got %d vertices, %d triangles; want 4, 4", mesh.VertexCount(), mesh.TriangleCount())
	}

	for i, v := range mesh.Vertices {
		if d := v.Position.Len(); math.Abs(d-2) > 1e-6 {
			t.Errorf("vertex %d at distance %v, want 2", i, d)
		}
		if math.Abs(v.Normal.Len()-1) > 1e-6 {
			t.Errorf("vertex %d normal %v not unit", i, v.Normal)
		}
	}
}

// interleavedTriangle builds a document whose positions and UVs share one
// strided buffer view, indexed by unsigned bytes.
func interleavedTriangle() *gltf.Document {
	const stride = 20
	verts := [][5]float32{
		{0, 0, 0, 0, 0},
		{1, 0, 0, 1, 0},
		{0, 1, 0, 0, 1},
	}
	data := make([]byte, 0, len(verts)*stride+3)
	for _, v := range verts {
		for _, f := range v {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(f))
		}
	}
	data = append(data, 0, 1, 2)

	vertView, indexView := 0, 1
	return &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteLength: len(verts) * stride, ByteStride: stride},
			{Buffer: 0, ByteOffset: len(verts) * stride, ByteLength: 3},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: &vertView, Count: 3, Type: gltf.AccessorVec3, ComponentType: gltf.ComponentFloat},
			{BufferView: &vertView, ByteOffset: 12, Count: 3, Type: gltf.AccessorVec2, ComponentType: gltf.ComponentFloat},
			{BufferView: &indexView, Count: 3, Type: gltf.AccessorScalar, ComponentType: gltf.ComponentUbyte},
		},
		Meshes: []*gltf.Mesh{{
			Name: "tri",
			Primitives: []*gltf.Primitive{{
				Indices:    func() *int { i := 2; return &i }(),
				Attributes: map[string]int{gltf.POSITION: 0, gltf.TEXCOORD_0: 1},
			}},
		}},
	}
}

func TestGLTFInterleavedAccessors(t *testing.T) {
	mesh, err := NewGLTFLoader().build(interleavedTriangle(), "tri")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if mesh.VertexCount() != 3 || mesh.TriangleCount() != 1 {
		t.Fatalf("got %d vertices, %d triangles; want 3, 1", mesh.VertexCount(), mesh.TriangleCount())
	}

	wantPos := []math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)}
	wantUV := []math3d.Vec2{math3d.V2(0, 1), math3d.V2(1, 1), math3d.V2(0, 0)}
	for i, v := range mesh.Vertices {
		if v.Position != wantPos[i] {
			t.Errorf("vertex %d position = %v, want %v", i, v.Position, wantPos[i])
		}
		if v.UV != wantUV[i] {
			t.Errorf("vertex %d uv = %v, want %v (V flipped)", i, v.UV, wantUV[i])
		}
	}
	if got := mesh.Faces[0].V; got != [3]int{0, 2, 1} {
		t.Errorf("face = %v, want winding reversed to [0 2 1]", got)
	}
}

func TestGLTFAccessorErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(doc *gltf.Document)
		want   string
	}{
		{"past buffer end", func(doc *gltf.Document) { doc.Accessors[0].Count = 4 }, "past"},
		{"float indices", func(doc *gltf.Document) { doc.Accessors[2].ComponentType = gltf.ComponentFloat }, "unsupported"},
		{"wrong type", func(doc *gltf.Document) { doc.Accessors[1].Type = gltf.AccessorVec3 }, "want"},
		{"missing accessor", func(doc *gltf.Document) { doc.Meshes[0].Primitives[0].Attributes[gltf.NORMAL] = 9 }, "does not exist"},
		{"unloaded buffer", func(doc *gltf.Document) { doc.Buffers[0].Data = nil }, "not loaded"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := interleavedTriangle()
			tc.modify(doc)
			_, err := NewGLTFLoader().build(doc, "tri")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("err = %v, want it to mention %q", err, tc.want)
			}
		})
	}
}
