package render

import (
	"math"
	"testing"

	"github.com/taigrr/moongallery/pkg/math3d"
)

func TestPlaneDistanceToPoint(t *testing.T) {
	// Plane at Z=0, normal pointing +Z
	plane := Plane{Normal: math3d.V3(0, 0, 1), D: 0}

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected float64
	}{
		{"origin", math3d.V3(0, 0, 0), 0},
		{"in front", math3d.V3(0, 0, 5), 5},
		{"behind", math3d.V3(0, 0, -3), -3},
		{"offset XY", math3d.V3(10, -5, 2), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dist := plane.DistanceToPoint(tc.point)
			if math.Abs(dist-tc.expected) > 1e-9 {
				t.Errorf("got %v, want %v", dist, tc.expected)
			}
		})
	}
}

func TestPlaneNormalize(t *testing.T) {
	plane := Plane{Normal: math3d.V3(0, 3, 4), D: 10}
	plane.Normalize()

	if math.Abs(plane.Normal.Len()-1.0) > 1e-9 {
		t.Errorf("normalized normal length = %v, want 1.0", plane.Normal.Len())
	}
	if math.Abs(plane.Normal.Y-0.6) > 1e-9 || math.Abs(plane.Normal.Z-0.8) > 1e-9 {
		t.Errorf("normal = %v, want (0, 0.6, 0.8)", plane.Normal)
	}
	// D should be scaled too (10/5 = 2)
	if math.Abs(plane.D-2.0) > 1e-9 {
		t.Errorf("D = %v, want 2.0", plane.D)
	}
}

func testFrustum() Frustum {
	// Camera at origin looking down -Z
	proj := math3d.Perspective(math.Pi/3, 16.0/9.0, 0.1, 100)
	return NewFrustumFromMatrix(proj.Mul(math3d.Identity()))
}

func TestFrustumFromPerspective(t *testing.T) {
	frustum := testFrustum()
	for i, plane := range frustum.Planes {
		if math.Abs(plane.Normal.Len()-1.0) > 1e-6 {
			t.Errorf("plane %d normal length = %v, want 1.0", i, plane.Normal.Len())
		}
	}
}

func TestFrustumContainsPoint(t *testing.T) {
	frustum := testFrustum()

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected bool
	}{
		{"ahead", math3d.V3(0, 0, -10), true},
		{"behind", math3d.V3(0, 0, 10), false},
		{"too near", math3d.V3(0, 0, -0.05), false},
		{"too far", math3d.V3(0, 0, -200), false},
		{"far left", math3d.V3(-100, 0, -10), false},
		{"above", math3d.V3(0, 50, -10), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := frustum.ContainsPoint(tc.point); got != tc.expected {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tc.point, got, tc.expected)
			}
		})
	}
}

func TestFrustumIntersectsSphere(t *testing.T) {
	frustum := testFrustum()

	tests := []struct {
		name     string
		center   math3d.Vec3
		radius   float64
		expected bool
	}{
		{"inside", math3d.V3(0, 0, -10), 1, true},
		{"behind", math3d.V3(0, 0, 10), 1, false},
		{"straddles near plane", math3d.V3(0, 0, 0.5), 1, true},
		{"just outside left", math3d.V3(-30, 0, -10), 1, false},
		{"overlaps left edge", math3d.V3(-10, 0, -10), 2, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := frustum.IntersectsSphere(tc.center, tc.radius); got != tc.expected {
				t.Errorf("IntersectsSphere(%v, %v) = %v, want %v", tc.center, tc.radius, got, tc.expected)
			}
		})
	}
}
