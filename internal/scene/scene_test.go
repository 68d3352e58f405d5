package scene

import (
	"errors"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/moongallery/internal/config"
	"github.com/taigrr/moongallery/pkg/gallery"
	"github.com/taigrr/moongallery/pkg/render"
)

const (
	testWidth  = 80
	testHeight = 48
)

// testConfig is a small scene that needs no files on disk.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.Moon.Texture = ""
	cfg.Moon.Segments = 16
	cfg.Stars.Count = 50
	cfg.Layout.Rows = 3
	cfg.Layout.Columns = 4
	cfg.Layout.Shuffle = false
	cfg.Layout.Images = []string{"a.png", "b.png", "missing.png"}
	return cfg
}

// squareContent resolves every id except "missing.png" to a square image.
var squareContent = gallery.ResolverFunc(func(id string) (*gallery.Content, error) {
	if id == "missing.png" {
		return nil, os.ErrNotExist
	}
	tex := render.NewCheckerTexture(4, 4, 2, render.ColorWhite, render.ColorGray)
	return &gallery.Content{ID: id, Width: 100, Height: 100, Resource: tex}, nil
})

func newTestScene(t *testing.T, cfg config.Config) *Scene {
	t.Helper()
	s, err := New(cfg, testWidth, testHeight, Deps{
		Rand:     rand.New(rand.NewPCG(1, 2)),
		Resolver: squareContent,
	})
	require.NoError(t, err)
	return s
}

// centerPointer puts the pointer in the middle of the framebuffer.
func centerPointer(s *Scene) {
	s.PointerMoved(testWidth/2, testHeight/2)
}

func TestNewBuildsSphereLayout(t *testing.T) {
	s := newTestScene(t, testConfig())

	require.Len(t, s.Items(), 12)
	for _, it := range s.Items() {
		assert.InDelta(t, 2.5, it.Position.Len(), 1e-9)
	}
	assert.Len(t, s.stars, 50)
	assert.Len(t, gallery.MissingContent(s.Items()), 4, "every third cell holds the missing image")
	require.Len(t, s.Missing(), 1)
	assert.ErrorIs(t, s.Missing()["missing.png"], os.ErrNotExist)
	assert.ErrorIs(t, s.Missing()["missing.png"], gallery.ErrMissingContent)
}

func TestNewFixedLayout(t *testing.T) {
	cfg := testConfig()
	cfg.Layout.Mode = config.LayoutFixed

	s := newTestScene(t, cfg)

	require.Len(t, s.Items(), 4)
	for i, it := range s.Items() {
		assert.Equal(t, config.DefaultAnchors()[i], it.Position)
	}
}

func TestNewInvalidLayout(t *testing.T) {
	cfg := testConfig()
	cfg.Layout.Rows = 1

	_, err := New(cfg, testWidth, testHeight, Deps{Resolver: squareContent})
	require.Error(t, err)
	assert.True(t, errors.Is(err, gallery.ErrInvalidConfiguration))
}

func TestNewEmptyGallery(t *testing.T) {
	cfg := testConfig()
	cfg.Layout.Images = nil
	cfg.Layout.Assets = t.TempDir()

	s, err := New(cfg, testWidth, testHeight, Deps{})
	require.NoError(t, err)
	assert.Empty(t, s.Items())

	s.Frame()
	assert.Equal(t, 0, s.Stats().ItemsTested)
}

func TestNewMissingModel(t *testing.T) {
	cfg := testConfig()
	cfg.Moon.Model = filepath.Join(t.TempDir(), "moon.glb")

	_, err := New(cfg, testWidth, testHeight, Deps{Resolver: squareContent})
	assert.Error(t, err)
}

func TestFrameDrawsMoon(t *testing.T) {
	s := newTestScene(t, testConfig())
	s.Frame()

	fb := s.Framebuffer()
	require.Equal(t, testWidth, fb.Width)
	require.Equal(t, testHeight, fb.Height)
	assert.NotEqual(t, render.ColorBlack, fb.GetPixel(testWidth/2, testHeight/2))
	assert.Equal(t, uint64(1), s.Frames())
	assert.Positive(t, s.Stats().Triangles)
}

func TestFrameCullsFarSide(t *testing.T) {
	s := newTestScene(t, testConfig())
	s.Frame()

	// The camera sits at (4, 0, 0); the item at (-2.5, 0, 0) is 6.5 away.
	for _, it := range s.Items() {
		if it.Populated() && it.Position.X < -2 {
			assert.False(t, it.Visible, "item at %v", it.Position)
		}
	}

	cfg := testConfig()
	cfg.Features.Cull = false
	s = newTestScene(t, cfg)
	s.Frame()
	for _, it := range s.Items() {
		assert.Equal(t, it.Populated(), it.Visible)
	}
}

func TestHoverHighlightsItemUnderPointer(t *testing.T) {
	cfg := testConfig()
	cfg.Layout.Mode = config.LayoutFixed
	cfg.Layout.Anchors = [][3]float64{{2.5, 0, 0}}
	s := newTestScene(t, cfg)
	item := s.Items()[0]

	centerPointer(s)
	for range 60 {
		s.Frame()
	}
	require.Same(t, item, s.Hovered())
	assert.True(t, item.Highlighted)
	assert.InDelta(t, cfg.Hover.Scale, item.Scale.X, 0.01)
	assert.InDelta(t, cfg.Hover.Opacity, item.Opacity, 0.01)

	s.PointerLeft()
	for range 60 {
		s.Frame()
	}
	assert.Nil(t, s.Hovered())
	assert.False(t, item.Highlighted)
	assert.InDelta(t, 1.0, item.Scale.X, 0.01)
	assert.InDelta(t, 1.0, item.Opacity, 0.01)
}

func TestHoverDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Layout.Mode = config.LayoutFixed
	cfg.Layout.Anchors = [][3]float64{{2.5, 0, 0}}
	cfg.Features.Hover = false
	s := newTestScene(t, cfg)

	centerPointer(s)
	s.Frame()
	assert.Nil(t, s.Hovered())
}

func TestDragOrbitsCamera(t *testing.T) {
	tests := []struct {
		name  string
		drag  bool
		moves bool
	}{
		{"enabled", true, true},
		{"disabled", false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Features.Drag = tc.drag
			s := newTestScene(t, cfg)
			start := s.Camera().Position

			s.Drag(20, 0)
			for range 10 {
				s.Frame()
			}

			moved := !s.Camera().Position.ApproxEqual(start, 1e-6)
			assert.Equal(t, tc.moves, moved)
			assert.InDelta(t, cfg.Camera.Distance, s.Camera().Position.Len(), 1e-6)
		})
	}
}

func TestZoomAndReset(t *testing.T) {
	s := newTestScene(t, testConfig())

	s.Zoom(-4)
	for range 30 {
		s.Frame()
	}
	assert.Greater(t, s.Camera().Position.Len(), 4.0)

	s.Reset()
	s.Frame()
	assert.InDelta(t, 4.0, s.Camera().Position.Len(), 1e-6)
}

func TestCameraClipPlanesFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Camera.Near, cfg.Camera.Far = 0.5, 200
	s := newTestScene(t, cfg)

	assert.Equal(t, 0.5, s.Camera().Near)
	assert.Equal(t, 200.0, s.Camera().Far)
}

func TestResize(t *testing.T) {
	s := newTestScene(t, testConfig())
	s.Resize(40, 20)
	s.Frame()

	assert.Equal(t, 40, s.Framebuffer().Width)
	assert.Equal(t, 20, s.Framebuffer().Height)
	assert.InDelta(t, 2.0, s.Camera().AspectRatio, 1e-9)
}

func TestToggles(t *testing.T) {
	s := newTestScene(t, testConfig())

	assert.True(t, s.ToggleBloom())
	assert.True(t, s.Features().Bloom)
	assert.False(t, s.ToggleBloom())

	assert.True(t, s.ToggleWireframe())
	s.Frame()
	assert.False(t, s.ToggleWireframe())
}

func TestScreenshot(t *testing.T) {
	s := newTestScene(t, testConfig())
	s.Frame()

	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, s.Screenshot(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	empty, err := New(testConfig(), 0, 0, Deps{Resolver: squareContent})
	require.NoError(t, err)
	assert.ErrorIs(t, empty.Screenshot(path), ErrNoFramebuffer)
}

func TestStarfield(t *testing.T) {
	stars := NewStarfield(1000, 2000, rand.New(rand.NewPCG(7, 7)))
	require.Len(t, stars, 1000)

	var far float64
	for _, p := range stars {
		far = math.Max(far, math.Max(math.Abs(p.X), math.Max(math.Abs(p.Y), math.Abs(p.Z))))
	}
	assert.LessOrEqual(t, far, 1000.0)
	assert.Greater(t, far, 900.0, "stars should fill the cube")

	again := NewStarfield(1000, 2000, rand.New(rand.NewPCG(7, 7)))
	assert.Equal(t, stars, again)
	assert.Empty(t, NewStarfield(0, 2000, rand.New(rand.NewPCG(1, 1))))
}
