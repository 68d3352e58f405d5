package gallery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taigrr/moongallery/pkg/math3d"
)

func populated(pos math3d.Vec3) *PlacedItem {
	return &PlacedItem{
		Position: pos,
		Normal:   pos.Normalize(),
		Content:  &Content{ID: "img"},
		Width:    1,
		Height:   1,
		Scale:    math3d.V3(1, 1, 1),
		Opacity:  1,
		Visible:  true,
	}
}

func TestUpdateVisibility(t *testing.T) {
	viewer := Viewer{Position: math3d.V3(0, 0, 5), Forward: math3d.V3(0, 0, -1)}

	tests := []struct {
		name    string
		pos     math3d.Vec3
		visible bool
	}{
		{"near side", math3d.V3(0, 0, 3), true},
		{"far side", math3d.V3(0, 0, -3), false},
		{"exactly at max distance", math3d.V3(0, 0, 2), true},
		{"behind viewer", math3d.V3(0, 0, 6), false},
		{"perpendicular counts as facing", math3d.V3(1, 0, 5), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			it := populated(tc.pos)
			UpdateVisibility([]*PlacedItem{it}, viewer, 3)
			assert.Equal(t, tc.visible, it.Visible)
		})
	}
}

func TestUpdateVisibilityRestoresItems(t *testing.T) {
	it := populated(math3d.V3(0, 0, 3))
	front := Viewer{Position: math3d.V3(0, 0, 5), Forward: math3d.V3(0, 0, -1)}
	away := Viewer{Position: math3d.V3(0, 0, 5), Forward: math3d.V3(0, 0, 1)}

	UpdateVisibility([]*PlacedItem{it}, away, 3)
	assert.False(t, it.Visible)
	UpdateVisibility([]*PlacedItem{it}, front, 3)
	assert.True(t, it.Visible)
}

func TestUpdateVisibilityUnpopulated(t *testing.T) {
	it := populated(math3d.V3(0, 0, 3))
	it.Content = nil

	UpdateVisibility([]*PlacedItem{it}, Viewer{Position: math3d.V3(0, 0, 5), Forward: math3d.V3(0, 0, -1)}, 3)
	assert.False(t, it.Visible)
}

func TestFacingScore(t *testing.T) {
	v := Viewer{Position: math3d.V3(0, 0, 5), Forward: math3d.V3(0, 0, -1)}
	assert.InDelta(t, 1, FacingScore(v, math3d.V3(0, 0, 3)), eps)
	assert.InDelta(t, -1, FacingScore(v, math3d.V3(0, 0, 9)), eps)
	assert.InDelta(t, 0, FacingScore(v, math3d.V3(4, 0, 5)), eps)
}
