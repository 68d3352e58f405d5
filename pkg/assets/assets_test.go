package assets

import (
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/moongallery/pkg/gallery"
	"github.com/taigrr/moongallery/pkg/render"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.NRGBA{R: 90, G: 90, B: 90, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 40, 20)
	writePNG(t, filepath.Join(dir, "a-no-extension"), 10, 10)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.jpg"), []byte("plain text, not a jpeg"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	return dir
}

func TestScan(t *testing.T) {
	pool, err := Scan(fixtureDir(t))
	require.NoError(t, err)
	assert.Equal(t, gallery.Pool{"a-no-extension", "b.png"}, pool)
}

func TestScanMissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLibraryResolve(t *testing.T) {
	lib := &Library{Dir: fixtureDir(t), MaxSize: 8}

	c, err := lib.Resolve("b.png")
	require.NoError(t, err)
	assert.Equal(t, "b.png", c.ID)
	assert.Equal(t, 40, c.Width)
	assert.Equal(t, 20, c.Height)
	assert.InDelta(t, 2.0, c.Aspect(), 1e-12)

	tex, ok := c.Resource.(*render.Texture)
	require.True(t, ok, "resource should be a texture, got %T", c.Resource)
	assert.Equal(t, 8, tex.Width)
	assert.Equal(t, 4, tex.Height)
	assert.Equal(t, render.WrapClamp, tex.WrapU)
	assert.Equal(t, render.FilterBilinear, tex.FilterMode)
}

func TestLibraryResolveErrors(t *testing.T) {
	lib := &Library{Dir: fixtureDir(t)}

	tests := []struct {
		name   string
		id     string
		target error
	}{
		{"missing file", "nope.png", fs.ErrNotExist},
		{"wrong contents", "notes.jpg", ErrNotImage},
		{"escapes directory", "../b.png", fs.ErrInvalid},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := lib.Resolve(tc.id)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, tc.target)
		})
	}
}

// Library plugs into layout generation; unreadable entries leave their
// cells unpopulated.
func TestLibraryAsResolver(t *testing.T) {
	lib := &Library{Dir: fixtureDir(t), MaxSize: 16}

	items, err := gallery.Generate(
		gallery.Grid{Radius: 5, Rows: 3, Columns: 2},
		gallery.Pool{"b.png", "notes.jpg"},
		gallery.Cyclic,
		gallery.WithResolver(lib),
		gallery.WithItemHeight(1),
	)
	require.NoError(t, err)
	require.Len(t, items, 6)

	missing := gallery.MissingContent(items)
	assert.Len(t, missing, 3)
	for _, it := range items {
		if it.Populated() {
			assert.InDelta(t, 2.0, it.Width, 1e-12)
		}
	}
}
