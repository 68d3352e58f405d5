package math3d

import (
	"math"
	"testing"
)

func TestSpherical(t *testing.T) {
	tests := []struct {
		name       string
		theta, phi float64
		radius     float64
		expected   Vec3
	}{
		{"north pole", 0, 1.3, 2, V3(0, 2, 0)},
		{"south pole", math.Pi, 0, 2, V3(0, -2, 0)},
		{"equator +X", math.Pi / 2, 0, 1, V3(1, 0, 0)},
		{"equator +Z", math.Pi / 2, math.Pi / 2, 1, V3(0, 0, 1)},
		{"equator -X", math.Pi / 2, math.Pi, 3, V3(-3, 0, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Spherical(tc.radius, tc.theta, tc.phi)
			if !got.ApproxEqual(tc.expected, 1e-9) {
				t.Errorf("Spherical(%v, %v, %v) = %v, want %v", tc.radius, tc.theta, tc.phi, got, tc.expected)
			}
			if math.Abs(got.Len()-tc.radius) > 1e-9 {
				t.Errorf("length = %v, want %v", got.Len(), tc.radius)
			}
		})
	}
}

func TestNormalizeZero(t *testing.T) {
	if got := Zero3().Normalize(); got != Zero3() {
		t.Errorf("Normalize(0) = %v, want zero", got)
	}
}

func TestCrossRightHanded(t *testing.T) {
	got := V3(1, 0, 0).Cross(V3(0, 1, 0))
	if got != V3(0, 0, 1) {
		t.Errorf("X × Y = %v, want Z", got)
	}
}

func TestNewRayDegenerate(t *testing.T) {
	if _, ok := NewRay(V3(1, 2, 3), Zero3()); ok {
		t.Error("zero direction should be rejected")
	}

	r, ok := NewRay(V3(0, 0, 0), V3(0, 0, -10))
	if !ok {
		t.Fatal("non-zero direction should be accepted")
	}
	if math.Abs(r.Direction.Len()-1) > 1e-12 {
		t.Errorf("direction length = %v, want 1", r.Direction.Len())
	}
	if got := r.At(2); !got.ApproxEqual(V3(0, 0, -2), 1e-12) {
		t.Errorf("At(2) = %v, want (0, 0, -2)", got)
	}
}

func TestRayIntersectPlane(t *testing.T) {
	r, _ := NewRay(V3(0, 0, 5), V3(0, 0, -1))

	tests := []struct {
		name   string
		point  Vec3
		normal Vec3
		wantT  float64
		wantOK bool
	}{
		{"facing plane", V3(0, 0, 3), V3(0, 0, 1), 2, true},
		{"back side counts", V3(0, 0, 3), V3(0, 0, -1), 2, true},
		{"behind origin", V3(0, 0, 8), V3(0, 0, 1), 0, false},
		{"parallel", V3(0, 1, 0), V3(0, 1, 0), 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := r.IntersectPlane(tc.point, tc.normal)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && math.Abs(got-tc.wantT) > 1e-9 {
				t.Errorf("t = %v, want %v", got, tc.wantT)
			}
		})
	}
}

func TestMat4Transforms(t *testing.T) {
	p := V3(1, 0, 0)

	t.Run("translate", func(t *testing.T) {
		got := Translate(V3(1, 2, 3)).MulVec3(p)
		if !got.ApproxEqual(V3(2, 2, 3), 1e-12) {
			t.Errorf("got %v, want (2, 2, 3)", got)
		}
	})

	t.Run("rotate y quarter turn", func(t *testing.T) {
		got := RotateY(math.Pi / 2).MulVec3(p)
		if !got.ApproxEqual(V3(0, 0, -1), 1e-12) {
			t.Errorf("got %v, want (0, 0, -1)", got)
		}
	})

	t.Run("direction ignores translation", func(t *testing.T) {
		got := Translate(V3(5, 5, 5)).MulVec3Dir(p)
		if got != p {
			t.Errorf("got %v, want %v", got, p)
		}
	})

	t.Run("scale then translate", func(t *testing.T) {
		m := Translate(V3(0, 1, 0)).Mul(ScaleUniform(2))
		got := m.MulVec3(p)
		if !got.ApproxEqual(V3(2, 1, 0), 1e-12) {
			t.Errorf("got %v, want (2, 1, 0)", got)
		}
	})
}
