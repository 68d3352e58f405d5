// Package config loads moongallery settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/taigrr/moongallery/pkg/gallery"
	"github.com/taigrr/moongallery/pkg/math3d"
)

// LayoutMode selects how gallery anchors are produced.
type LayoutMode string

const (
	LayoutSphere LayoutMode = "sphere" // rows x columns grid on a sphere
	LayoutFixed  LayoutMode = "fixed"  // explicit anchor list
)

type Config struct {
	Moon     Moon     `toml:"moon"`
	Stars    Stars    `toml:"stars"`
	Layout   Layout   `toml:"layout"`
	Hover    Hover    `toml:"hover"`
	Camera   Camera   `toml:"camera"`
	Features Features `toml:"features"`
	Bloom    Bloom    `toml:"bloom"`
	Render   Render   `toml:"render"`
}

type Moon struct {
	Radius   float64 `toml:"radius"`
	Segments int     `toml:"segments"`
	Texture  string  `toml:"texture"`
	Model    string  `toml:"model"` // optional glTF/GLB replacing the UV sphere
	Spin     float64 `toml:"spin"`  // radians per frame about Y
}

type Stars struct {
	Count  int     `toml:"count"`
	Spread float64 `toml:"spread"` // side of the cube holding the stars
}

type Layout struct {
	Mode       LayoutMode            `toml:"mode"`
	Radius     float64               `toml:"radius"`
	Rows       int                   `toml:"rows"`
	Columns    int                   `toml:"columns"`
	Selection  gallery.SelectionMode `toml:"selection"`
	Shuffle    bool                  `toml:"shuffle"`
	ItemHeight float64               `toml:"item_height"`
	Assets     string                `toml:"assets"`
	Images     []string              `toml:"images"` // overrides scanning Assets
	Anchors    [][3]float64          `toml:"anchors"`
	Seed       uint64                `toml:"seed"` // 0 picks a random seed
}

type Hover struct {
	Scale   float64 `toml:"scale"`
	Opacity float64 `toml:"opacity"`
	Speed   float64 `toml:"speed"`
	Outline bool    `toml:"outline"`
}

type Camera struct {
	FOV         float64 `toml:"fov"` // degrees
	Near        float64 `toml:"near"`
	Far         float64 `toml:"far"`
	Distance    float64 `toml:"distance"`
	MinDistance float64 `toml:"min_distance"`
	MaxDistance float64 `toml:"max_distance"`
	RotateSpeed float64 `toml:"rotate_speed"`
	ZoomSpeed   float64 `toml:"zoom_speed"`
	Frequency   float64 `toml:"frequency"`
	Damping     float64 `toml:"damping"`
}

type Features struct {
	Drag  bool `toml:"drag"`
	Hover bool `toml:"hover"`
	Cull  bool `toml:"cull"`
	Bloom bool `toml:"bloom"`
}

type Bloom struct {
	Threshold float64 `toml:"threshold"`
	Radius    float64 `toml:"radius"`
	Strength  float64 `toml:"strength"`
}

type Render struct {
	FPS            int        `toml:"fps"`
	Background     string     `toml:"background"`
	MaxTextureSize int        `toml:"max_texture_size"`
	Light          [3]float64 `toml:"light"` // direction toward the light
}

// Default returns the settings of the original gallery: a radius 2 moon
// inside a 5000 star cube with images on a 5 x 8 sphere just above its
// surface.
func Default() Config {
	return Config{
		Moon: Moon{
			Radius:   2,
			Segments: 64,
			Texture:  "assets/moon.jpg",
			Spin:     0.002,
		},
		Stars: Stars{Count: 5000, Spread: 2000},
		Layout: Layout{
			Mode:       LayoutSphere,
			Radius:     2.5,
			Rows:       5,
			Columns:    8,
			Selection:  gallery.Cyclic,
			Shuffle:    true,
			ItemHeight: 1,
			Assets:     "assets/gallery",
		},
		Hover: Hover{Scale: 1.1, Opacity: 0.8, Speed: 0.1},
		Camera: Camera{
			FOV:         75,
			Near:        0.1,
			Far:         1000,
			Distance:    4,
			MinDistance: 3,
			MaxDistance: 150,
			RotateSpeed: 0.01,
			ZoomSpeed:   0.5,
			Frequency:   4,
			Damping:     1,
		},
		Features: Features{Drag: true, Hover: true, Cull: true},
		Bloom:    Bloom{Threshold: 0.7, Radius: 2, Strength: 0.8},
		Render: Render{
			FPS:            60,
			Background:     "#000000",
			MaxTextureSize: 256,
			Light:          [3]float64{0.5, 1, 0.3},
		},
	}
}

// DefaultAnchors are the four fixed positions used when fixed mode lists
// none.
func DefaultAnchors() []math3d.Vec3 {
	return []math3d.Vec3{
		math3d.V3(2.5, 0, 0),
		math3d.V3(-2.5, 0, 0),
		math3d.V3(0, 2.5, 0),
		math3d.V3(0, -2.5, 0),
	}
}

// Load reads path over the defaults. Unknown keys are an error so typos do
// not silently fall back.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return cfg, fmt.Errorf("parse %s:%d:%d: %w", path, row, col, err)
		}
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges that would otherwise fail deep inside scene
// construction.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", gallery.ErrInvalidConfiguration, fmt.Sprintf(format, args...))
	}

	switch {
	case c.Moon.Radius <= 0:
		return invalid("moon.radius must be > 0, got %v", c.Moon.Radius)
	case c.Moon.Segments < 3:
		return invalid("moon.segments must be >= 3, got %d", c.Moon.Segments)
	case c.Stars.Count < 0:
		return invalid("stars.count must be >= 0, got %d", c.Stars.Count)
	case c.Stars.Spread < 0:
		return invalid("stars.spread must be >= 0, got %v", c.Stars.Spread)
	case c.Render.MaxTextureSize < 0:
		return invalid("render.max_texture_size must be >= 0, got %d", c.Render.MaxTextureSize)
	case c.Layout.ItemHeight <= 0:
		return invalid("layout.item_height must be > 0, got %v", c.Layout.ItemHeight)
	case c.Hover.Speed <= 0 || c.Hover.Speed >= 1:
		return invalid("hover.speed must be in (0, 1), got %v", c.Hover.Speed)
	case c.Hover.Opacity < 0 || c.Hover.Opacity > 1:
		return invalid("hover.opacity must be in [0, 1], got %v", c.Hover.Opacity)
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return invalid("camera.fov must be in (0, 180), got %v", c.Camera.FOV)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return invalid("camera clip planes need 0 < near < far, got near %v far %v", c.Camera.Near, c.Camera.Far)
	case c.Camera.MinDistance <= 0 || c.Camera.MaxDistance < c.Camera.MinDistance:
		return invalid("camera distance range [%v, %v] is empty", c.Camera.MinDistance, c.Camera.MaxDistance)
	case c.Render.FPS <= 0:
		return invalid("render.fps must be > 0, got %d", c.Render.FPS)
	}

	switch c.Layout.Mode {
	case LayoutSphere:
		if err := c.Grid().Validate(); err != nil {
			return fmt.Errorf("layout: %w", err)
		}
	case LayoutFixed:
		for i, a := range c.Anchors() {
			if l := a.Len(); !(l > 0) || math.IsInf(l, 1) {
				return invalid("layout.anchors[%d] %v must be a finite point off the origin", i, a)
			}
		}
	default:
		return invalid("layout.mode must be %q or %q, got %q", LayoutSphere, LayoutFixed, c.Layout.Mode)
	}

	if _, err := c.BackgroundColor(); err != nil {
		return err
	}
	return nil
}

// Grid returns the sphere layout grid.
func (c Config) Grid() gallery.Grid {
	return gallery.Grid{Radius: c.Layout.Radius, Rows: c.Layout.Rows, Columns: c.Layout.Columns}
}

// Anchors returns the fixed-mode anchor positions.
func (c Config) Anchors() []math3d.Vec3 {
	if len(c.Layout.Anchors) == 0 {
		return DefaultAnchors()
	}
	out := make([]math3d.Vec3, len(c.Layout.Anchors))
	for i, a := range c.Layout.Anchors {
		out[i] = math3d.V3(a[0], a[1], a[2])
	}
	return out
}

// GalleryRadius is the distance used by the visibility cull. Fixed layouts
// use their farthest anchor.
func (c Config) GalleryRadius() float64 {
	if c.Layout.Mode == LayoutSphere {
		return c.Layout.Radius
	}
	r := 0.0
	for _, a := range c.Anchors() {
		r = math.Max(r, a.Len())
	}
	return r
}

// BackgroundColor parses Render.Background as #rrggbb.
func (c Config) BackgroundColor() (color.RGBA, error) {
	var r, g, b uint8
	s := strings.TrimSpace(c.Render.Background)
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("%w: render.background %q is not #rrggbb", gallery.ErrInvalidConfiguration, s)
	}
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("%w: render.background %q: %v", gallery.ErrInvalidConfiguration, s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// LightDir returns the normalized light direction.
func (c Config) LightDir() math3d.Vec3 {
	l := math3d.V3(c.Render.Light[0], c.Render.Light[1], c.Render.Light[2])
	if l.Len() == 0 {
		return math3d.Up()
	}
	return l.Normalize()
}
