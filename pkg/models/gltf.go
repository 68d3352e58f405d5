package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/moongallery/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// Generate smooth normals when the file has none
	CalculateNormals bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
	}
}

// Load loads a GLTF or GLB file and returns the mesh and the first
// decodable texture image, which is nil when the file has none.
func (l *GLTFLoader) Load(path string) (*Mesh, image.Image, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh, err := l.build(doc, filepath.Base(path))
	if err != nil {
		return nil, nil, err
	}
	return mesh, firstTexture(doc, filepath.Dir(path)), nil
}

// build converts every triangle primitive in doc into one mesh.
func (l *GLTFLoader) build(doc *gltf.Document, name string) (*Mesh, error) {
	mesh := NewMesh(name)

	// Process all meshes in the document
	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	// Calculate normals if needed
	hasNormals := false
	for _, v := range mesh.Vertices {
		if v.Normal.Len() > 0.001 {
			hasNormals = true
			break
		}
	}

	for _, f := range mesh.Faces {
		for _, vi := range f.V {
			if vi < 0 || vi >= len(mesh.Vertices) {
				return nil, fmt.Errorf("%s: face index %d out of range", name, vi)
			}
		}
	}

	if l.CalculateNormals && !hasNormals {
		mesh.CalculateSmoothNormals()
	}

	if len(mesh.Faces) == 0 {
		return nil, fmt.Errorf("%s: no triangle geometry", name)
	}
	mesh.CalculateBounds()

	return mesh, nil
}

// processMesh appends the triangle primitives of m to mesh. glTF fronts are
// counter-clockwise and this engine's are clockwise after the screen Y flip,
// so every triangle's last two corners are swapped.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		pos, err := openAccessor(doc, posIdx, gltf.AccessorVec3)
		if err != nil {
			return fmt.Errorf("positions: %w", err)
		}
		var normals, uvs *accessorView
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = openAccessor(doc, idx, gltf.AccessorVec3); err != nil {
				return fmt.Errorf("normals: %w", err)
			}
		}
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = openAccessor(doc, idx, gltf.AccessorVec2); err != nil {
				return fmt.Errorf("uvs: %w", err)
			}
		}

		base := len(mesh.Vertices)
		for i := range pos.count {
			v := MeshVertex{Position: pos.vec3(i)}
			if normals != nil && i < normals.count {
				v.Normal = normals.vec3(i)
			}
			if uvs != nil && i < uvs.count {
				// glTF puts V=0 at the top of the image.
				v.UV = math3d.V2(uvs.float(i, 0), 1-uvs.float(i, 1))
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		corner := func(i int) int { return i }
		n := pos.count
		if prim.Indices != nil {
			idx, err := openAccessor(doc, *prim.Indices, gltf.AccessorScalar)
			if err != nil {
				return fmt.Errorf("indices: %w", err)
			}
			corner, n = idx.index, idx.count
		}
		for i := 0; i+2 < n; i += 3 {
			mesh.Faces = append(mesh.Faces, Face{
				V: [3]int{base + corner(i), base + corner(i+2), base + corner(i+1)},
			})
		}
	}
	return nil
}

// accessorView is a bounds-checked window onto one accessor's elements.
// Elements may be interleaved with other attributes, so element i starts at
// start + i*stride.
type accessorView struct {
	data   []byte
	start  int
	stride int
	count  int
	kind   gltf.ComponentType
}

// componentSize returns the byte width of the component types the loader
// reads: float attributes and unsigned indices.
func componentSize(c gltf.ComponentType) int {
	switch c {
	case gltf.ComponentUbyte:
		return 1
	case gltf.ComponentUshort:
		return 2
	case gltf.ComponentUint, gltf.ComponentFloat:
		return 4
	}
	return 0
}

func componentCount(t gltf.AccessorType) int {
	switch t {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	}
	return 0
}

// openAccessor resolves accessor idx, which must be of type want. Vector
// accessors must hold floats and scalar ones unsigned integers.
func openAccessor(doc *gltf.Document, idx int, want gltf.AccessorType) (*accessorView, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d does not exist", idx)
	}
	acc := doc.Accessors[idx]
	if acc.Type != want {
		return nil, fmt.Errorf("accessor %d: want %v, got %v", idx, want, acc.Type)
	}
	if (want == gltf.AccessorScalar) == (acc.ComponentType == gltf.ComponentFloat) {
		return nil, fmt.Errorf("accessor %d: unsupported %v components", idx, acc.ComponentType)
	}
	size := componentSize(acc.ComponentType) * componentCount(want)
	if size == 0 {
		return nil, fmt.Errorf("accessor %d: unsupported %v components", idx, acc.ComponentType)
	}
	if acc.BufferView == nil || *acc.BufferView >= len(doc.BufferViews) {
		return nil, fmt.Errorf("accessor %d has no buffer view", idx)
	}
	bv := doc.BufferViews[*acc.BufferView]
	if bv.Buffer >= len(doc.Buffers) || doc.Buffers[bv.Buffer].Data == nil {
		return nil, fmt.Errorf("accessor %d: buffer %d is not loaded", idx, bv.Buffer)
	}

	v := &accessorView{
		data:   doc.Buffers[bv.Buffer].Data,
		start:  bv.ByteOffset + acc.ByteOffset,
		stride: bv.ByteStride,
		count:  acc.Count,
		kind:   acc.ComponentType,
	}
	if v.stride == 0 {
		v.stride = size
	}
	if v.count > 0 {
		if end := v.start + (v.count-1)*v.stride + size; v.start < 0 || end > len(v.data) {
			return nil, fmt.Errorf("accessor %d reads %d bytes past a %d byte buffer", idx, end-len(v.data), len(v.data))
		}
	}
	return v, nil
}

// float returns component j of element i.
func (v *accessorView) float(i, j int) float64 {
	off := v.start + i*v.stride + j*4
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(v.data[off:])))
}

func (v *accessorView) vec3(i int) math3d.Vec3 {
	return math3d.V3(v.float(i, 0), v.float(i, 1), v.float(i, 2))
}

// index returns element i of a scalar index accessor.
func (v *accessorView) index(i int) int {
	off := v.start + i*v.stride
	switch v.kind {
	case gltf.ComponentUbyte:
		return int(v.data[off])
	case gltf.ComponentUshort:
		return int(binary.LittleEndian.Uint16(v.data[off:]))
	default:
		return int(binary.LittleEndian.Uint32(v.data[off:]))
	}
}

// firstTexture decodes the first image in doc that is either embedded in a
// buffer view or stored next to the model file.
func firstTexture(doc *gltf.Document, dir string) image.Image {
	for _, img := range doc.Images {
		var data []byte
		switch {
		case img.BufferView != nil:
			bv := doc.BufferViews[*img.BufferView]
			buf := doc.Buffers[bv.Buffer]
			if buf.Data == nil || bv.ByteOffset+bv.ByteLength > len(buf.Data) {
				continue
			}
			data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
		case img.URI != "":
			b, err := os.ReadFile(filepath.Join(dir, img.URI))
			if err != nil {
				continue
			}
			data = b
		}
		if len(data) == 0 {
			continue
		}
		if decoded, _, err := image.Decode(bytes.NewReader(data)); err == nil {
			return decoded
		}
	}
	return nil
}

// LoadMoon loads a model to stand in for the generated moon sphere,
// centered on the origin and scaled to radius, plus its embedded texture.
func LoadMoon(path string, radius float64) (*Mesh, image.Image, error) {
	mesh, tex, err := NewGLTFLoader().Load(path)
	if err != nil {
		return nil, nil, err
	}
	mesh.FitRadius(radius)
	return mesh, tex, nil
}
