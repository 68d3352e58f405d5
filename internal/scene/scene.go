// Package scene assembles the moon, its starfield and the image gallery,
// and advances them one frame at a time.
package scene

import (
	"cmp"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/taigrr/moongallery/internal/config"
	"github.com/taigrr/moongallery/pkg/assets"
	"github.com/taigrr/moongallery/pkg/gallery"
	"github.com/taigrr/moongallery/pkg/math3d"
	"github.com/taigrr/moongallery/pkg/models"
	"github.com/taigrr/moongallery/pkg/render"
)

// moonTextureSize bounds the moon texture. The sphere covers at most a
// terminal's worth of pixels.
const moonTextureSize = 1024

// Deps are the collaborators a Scene may be given instead of building its
// own.
type Deps struct {
	Logger   *slog.Logger
	Rand     *rand.Rand
	Resolver gallery.Resolver // defaults to an assets.Library on Layout.Assets
}

// Scene owns everything drawn in one session. Frame must be called from a
// single goroutine; the input methods may be called from any goroutine and
// take effect on the next frame.
type Scene struct {
	cfg    config.Config
	logger *slog.Logger

	moon    *models.Mesh
	moonMat render.Material
	stars   []math3d.Vec3
	items   []*gallery.PlacedItem
	missing map[string]error      // pool ids that failed to load
	order   []*gallery.PlacedItem // items sorted far to near, reused
	radius  float64               // visibility cull distance

	camera *render.Camera
	orbit  *render.OrbitControls
	hover  *gallery.Hover
	bloom  render.Bloom
	fb     *render.Framebuffer
	raster *render.Rasterizer

	background color.RGBA
	light      math3d.Vec3
	spin       float64
	frames     uint64
	hovered    *gallery.PlacedItem

	mu    sync.Mutex
	input input
}

// input is the state shared between event handlers and Frame.
type input struct {
	pointerX, pointerY int
	pointer            bool

	width, height int
	resized       bool

	dragX, dragY float64
	zoom         float64
	reset        bool

	features  config.Features
	wireframe bool
}

// New builds a scene for a width x height pixel framebuffer. An invalid
// layout fails before anything is drawn; gallery images that cannot be
// loaded are logged and their cells left empty.
func New(cfg config.Config, width, height int, deps Deps) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rng := deps.Rand
	if rng == nil {
		seed := cfg.Layout.Seed
		if seed == 0 {
			seed = rand.Uint64()
		}
		rng = rand.New(rand.NewPCG(seed, seed))
	}
	background, err := cfg.BackgroundColor()
	if err != nil {
		return nil, err
	}

	s := &Scene{
		cfg:        cfg,
		logger:     logger,
		stars:      NewStarfield(cfg.Stars.Count, cfg.Stars.Spread, rng),
		radius:     cfg.GalleryRadius(),
		bloom:      render.Bloom{Threshold: cfg.Bloom.Threshold, Radius: cfg.Bloom.Radius, Strength: cfg.Bloom.Strength},
		background: background,
		light:      cfg.LightDir(),
	}
	s.input.features = cfg.Features

	if err := s.loadMoon(); err != nil {
		return nil, err
	}
	if err := s.layout(rng, deps.Resolver); err != nil {
		return nil, err
	}

	s.hover, err = gallery.NewHover(
		gallery.WithHighlight(cfg.Hover.Scale, cfg.Hover.Opacity),
		gallery.WithSpeed(cfg.Hover.Speed),
	)
	if err != nil {
		return nil, fmt.Errorf("hover: %w", err)
	}

	s.camera = render.NewCamera()
	s.camera.SetFOV(cfg.Camera.FOV * math.Pi / 180)
	s.camera.SetClipPlanes(cfg.Camera.Near, cfg.Camera.Far)
	s.orbit = render.NewOrbitControls(render.OrbitSettings{
		FPS:         cfg.Render.FPS,
		Distance:    cfg.Camera.Distance,
		MinDistance: cfg.Camera.MinDistance,
		MaxDistance: cfg.Camera.MaxDistance,
		RotateSpeed: cfg.Camera.RotateSpeed,
		ZoomSpeed:   cfg.Camera.ZoomSpeed,
		Frequency:   cfg.Camera.Frequency,
		Damping:     cfg.Camera.Damping,
	})
	s.orbit.Place(s.camera)
	s.resize(width, height)

	logger.Info("scene ready",
		"stars", len(s.stars),
		"items", len(s.items),
		"missing", len(gallery.MissingContent(s.items)),
		"broken", len(s.missing),
		"triangles", s.moon.TriangleCount())
	return s, nil
}

func (s *Scene) loadMoon() error {
	cfg := s.cfg.Moon
	var embedded *render.Texture
	if cfg.Model != "" {
		mesh, img, err := models.LoadMoon(cfg.Model, cfg.Radius)
		if err != nil {
			return fmt.Errorf("load moon model: %w", err)
		}
		s.moon = mesh
		if img != nil {
			embedded = render.TextureFromImage(img)
		}
	} else {
		mesh, err := models.NewUVSphere(cfg.Radius, cfg.Segments, cfg.Segments)
		if err != nil {
			return fmt.Errorf("moon: %w", err)
		}
		s.moon = mesh
	}
	s.moon.CalculateBounds()

	tex := embedded
	if cfg.Texture != "" {
		loaded, _, err := render.LoadTexture(cfg.Texture, moonTextureSize)
		if err != nil {
			s.logger.Warn("moon texture unavailable", "path", cfg.Texture, "err", err)
		} else {
			tex = loaded
		}
	}
	if tex == nil {
		s.logger.Warn("moon has no texture, using checkerboard")
		tex = render.NewCheckerTexture(64, 32, 8, render.RGB(200, 200, 200), render.RGB(120, 120, 120))
	} else {
		// Longitude wraps around the seam; latitude stops at the poles.
		tex.WrapV = render.WrapClamp
		tex.FilterMode = render.FilterBilinear
	}
	s.moonMat = render.Material{Texture: tex, Lit: true, Opacity: 1}
	return nil
}

func (s *Scene) layout(rng *rand.Rand, resolver gallery.Resolver) error {
	cfg := s.cfg.Layout

	pool := gallery.Pool(slices.Clone(cfg.Images))
	if len(pool) == 0 {
		scanned, err := assets.Scan(cfg.Assets)
		if err != nil {
			s.logger.Warn("no gallery images", "dir", cfg.Assets, "err", err)
		}
		pool = scanned
	}
	if len(pool) == 0 {
		s.logger.Warn("gallery is empty", "dir", cfg.Assets)
		return nil
	}
	if cfg.Shuffle {
		pool.Shuffle(rng)
	}

	if resolver == nil {
		resolver = &assets.Library{Dir: cfg.Assets, MaxSize: s.cfg.Render.MaxTextureSize}
	}
	opts := []gallery.Option{
		gallery.WithRand(rng),
		gallery.WithResolver(resolver),
		gallery.WithLogger(s.logger),
		gallery.WithItemHeight(cfg.ItemHeight),
	}

	var err error
	switch cfg.Mode {
	case config.LayoutFixed:
		s.items, err = gallery.Place(s.cfg.Anchors(), pool, cfg.Selection, opts...)
	default:
		s.items, err = gallery.Generate(s.cfg.Grid(), pool, cfg.Selection, opts...)
	}
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	s.order = make([]*gallery.PlacedItem, 0, len(s.items))
	s.missing = gallery.MissingErrors(s.items)
	return nil
}

// PointerMoved records the pointer at framebuffer pixel (x, y).
func (s *Scene) PointerMoved(x, y int) {
	s.mu.Lock()
	s.input.pointerX, s.input.pointerY = x, y
	s.input.pointer = true
	s.mu.Unlock()
}

// PointerLeft forgets the pointer; no item is hovered until it moves again.
func (s *Scene) PointerLeft() {
	s.mu.Lock()
	s.input.pointer = false
	s.mu.Unlock()
}

// Resize changes the framebuffer size in pixels.
func (s *Scene) Resize(width, height int) {
	s.mu.Lock()
	s.input.width, s.input.height = width, height
	s.input.resized = true
	s.mu.Unlock()
}

// Drag rotates the camera around the moon by a pointer drag of (dx, dy).
// It is ignored when dragging is disabled.
func (s *Scene) Drag(dx, dy float64) {
	s.mu.Lock()
	s.input.dragX += dx
	s.input.dragY += dy
	s.mu.Unlock()
}

// Zoom moves the camera toward the moon by delta wheel notches.
func (s *Scene) Zoom(delta float64) {
	s.mu.Lock()
	s.input.zoom += delta
	s.mu.Unlock()
}

// Reset returns the camera to its starting position.
func (s *Scene) Reset() {
	s.mu.Lock()
	s.input.reset = true
	s.mu.Unlock()
}

// ToggleBloom flips the bloom pass and reports the new state.
func (s *Scene) ToggleBloom() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input.features.Bloom = !s.input.features.Bloom
	return s.input.features.Bloom
}

// ToggleWireframe flips wireframe drawing and reports the new state.
func (s *Scene) ToggleWireframe() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input.wireframe = !s.input.wireframe
	return s.input.wireframe
}

// Features returns the feature switches as of now.
func (s *Scene) Features() config.Features {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input.features
}

// takeInput returns the pending input and clears the one-shot parts.
func (s *Scene) takeInput() input {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := s.input
	s.input.resized = false
	s.input.dragX, s.input.dragY = 0, 0
	s.input.zoom = 0
	s.input.reset = false
	return in
}

func (s *Scene) resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	s.fb = render.NewFramebuffer(width, height)
	s.raster = render.NewRasterizer(s.camera, s.fb)
	if width > 0 && height > 0 {
		s.camera.SetAspectRatio(float64(width) / float64(height))
	}
}

// Frame advances the scene by one display refresh and draws it into the
// framebuffer.
func (s *Scene) Frame() {
	in := s.takeInput()

	if in.resized {
		s.resize(in.width, in.height)
	}
	if in.reset {
		s.orbit.Reset()
	}
	if in.features.Drag && (in.dragX != 0 || in.dragY != 0) {
		s.orbit.Drag(in.dragX, in.dragY)
	}
	if in.zoom != 0 {
		s.orbit.Zoom(in.zoom)
	}
	s.orbit.Update(s.camera)
	s.spin = math.Mod(s.spin+s.cfg.Moon.Spin, 2*math.Pi)

	if in.features.Cull {
		gallery.UpdateVisibility(s.items, s.camera.Viewer(), s.radius)
	} else {
		for _, it := range s.items {
			it.Visible = it.Populated()
		}
	}

	var ray *math3d.Ray
	if in.features.Hover && in.pointer {
		nx, ny := render.NDC(in.pointerX, in.pointerY, s.fb.Width, s.fb.Height)
		if r, ok := s.camera.PointerRay(nx, ny); ok {
			ray = &r
		}
	}
	s.hovered = s.hover.Update(s.items, ray)

	s.draw(in)
	s.frames++
}

func (s *Scene) draw(in input) {
	s.fb.Clear(s.background)
	s.raster.ClearDepth()
	s.raster.InvalidateFrustum()
	s.raster.ResetStats()

	s.raster.DrawPoints(s.stars, render.ColorWhite)

	spin := math3d.RotateY(s.spin)
	if in.wireframe {
		s.raster.DrawMeshWireframe(s.moon, spin, render.ColorGray)
	} else {
		s.raster.DrawMesh(s.moon, spin, s.moonMat, s.light)
	}

	// Translucent quads blend correctly only when drawn far to near.
	eye := s.camera.Position
	s.order = s.order[:0]
	for _, it := range s.items {
		if it.Visible {
			s.order = append(s.order, it)
		}
	}
	slices.SortStableFunc(s.order, func(a, b *gallery.PlacedItem) int {
		return cmp.Compare(b.Position.Distance(eye), a.Position.Distance(eye))
	})
	for _, it := range s.order {
		if s.raster.DrawItem(it, render.ColorGray) && in.wireframe {
			s.raster.DrawItemOutline(it, render.ColorWhite)
		}
	}
	if s.hovered != nil && s.cfg.Hover.Outline {
		s.raster.DrawItemOutline(s.hovered, render.ColorGold)
	}

	if in.features.Bloom {
		s.bloom.Apply(s.fb)
	}
}

// Framebuffer returns the image drawn by the last Frame.
func (s *Scene) Framebuffer() *render.Framebuffer { return s.fb }

// Camera returns the scene camera.
func (s *Scene) Camera() *render.Camera { return s.camera }

// Items returns the gallery items in layout order.
func (s *Scene) Items() []*gallery.PlacedItem { return s.items }

// Missing returns the load error of each gallery image that could not be
// shown, keyed by pool id.
func (s *Scene) Missing() map[string]error { return s.missing }

// Hovered returns the item under the pointer as of the last Frame.
func (s *Scene) Hovered() *gallery.PlacedItem { return s.hovered }

// Stats returns the draw counters of the last Frame.
func (s *Scene) Stats() render.DrawStats { return s.raster.Stats }

// Frames returns the number of frames drawn.
func (s *Scene) Frames() uint64 { return s.frames }

// Triangles returns the moon's triangle count.
func (s *Scene) Triangles() int { return s.moon.TriangleCount() }

// ErrNoFramebuffer is returned by Screenshot before the scene has a
// drawable size.
var ErrNoFramebuffer = errors.New("framebuffer is empty")

// Screenshot writes the last frame to path as a PNG.
func (s *Scene) Screenshot(path string) error {
	if s.fb.Width == 0 || s.fb.Height == 0 {
		return ErrNoFramebuffer
	}
	return s.fb.SavePNG(path)
}
