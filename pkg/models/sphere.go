package models

import (
	"fmt"
	"math"

	"github.com/taigrr/moongallery/pkg/math3d"
)

// NewUVSphere builds a latitude/longitude sphere centered on the origin.
// UV u runs once around the equator and v from the south pole (0) to the
// north pole (1), so an equirectangular texture wraps it without seams
// other than the u=0/u=1 meridian, which gets duplicated vertices.
func NewUVSphere(radius float64, widthSegments, heightSegments int) (*Mesh, error) {
	if !(radius > 0) {
		return nil, fmt.Errorf("sphere radius must be positive, got %v", radius)
	}
	if widthSegments < 3 || heightSegments < 2 {
		return nil, fmt.Errorf("sphere needs at least 3x2 segments, got %dx%d", widthSegments, heightSegments)
	}

	mesh := NewMesh("sphere")
	grid := make([][]int, heightSegments+1)

	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		theta := v * math.Pi
		grid[iy] = make([]int, widthSegments+1)

		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			phi := u * 2 * math.Pi

			normal := math3d.V3(
				-math.Cos(phi)*math.Sin(theta),
				math.Cos(theta),
				math.Sin(phi)*math.Sin(theta),
			)
			grid[iy][ix] = len(mesh.Vertices)
			mesh.Vertices = append(mesh.Vertices, MeshVertex{
				Position: normal.Scale(radius),
				Normal:   normal,
				UV:       math3d.V2(u, 1-v),
			})
		}
	}

	for iy := range heightSegments {
		for ix := range widthSegments {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]

			// Pole rows collapse to a single triangle
			if iy != 0 {
				mesh.Faces = append(mesh.Faces, Face{V: [3]int{a, d, b}})
			}
			if iy != heightSegments-1 {
				mesh.Faces = append(mesh.Faces, Face{V: [3]int{b, d, c}})
			}
		}
	}

	mesh.CalculateBounds()
	return mesh, nil
}
