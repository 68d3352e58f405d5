// Package assets finds gallery images on disk and turns them into
// textured gallery content.
package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/h2non/filetype"
	"github.com/taigrr/moongallery/pkg/gallery"
	"github.com/taigrr/moongallery/pkg/render"
)

// headerSize is how many leading bytes filetype needs to match a format.
const headerSize = 261

// ErrNotImage is returned for files whose contents are not a known image
// format, whatever their extension says.
var ErrNotImage = errors.New("not an image")

// sniff reports the MIME type of the image at path.
func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, headerSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	kind, err := filetype.Match(head[:n])
	if err != nil {
		return "", err
	}
	if !filetype.IsImage(head[:n]) {
		return "", fmt.Errorf("%w: %s", ErrNotImage, filepath.Base(path))
	}
	return kind.MIME.Value, nil
}

// Scan returns the names of the image files directly inside dir, sorted.
// Files are recognized by content, not extension.
func Scan(dir string) (gallery.Pool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan assets: %w", err)
	}

	var pool gallery.Pool
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if _, err := sniff(filepath.Join(dir, e.Name())); err != nil {
			continue
		}
		pool = append(pool, e.Name())
	}
	slices.Sort(pool)
	return pool, nil
}

// Library resolves pool ids to textures loaded from a directory.
type Library struct {
	Dir string

	// MaxSize bounds the texture's longer side. Terminal framebuffers are
	// small, so full resolution images only cost memory.
	MaxSize int
}

// Resolve loads the image named id. The returned content carries the
// source pixel size and a *render.Texture as its resource.
func (l *Library) Resolve(id string) (*gallery.Content, error) {
	if !filepath.IsLocal(id) {
		return nil, fmt.Errorf("resolve %q: %w", id, fs.ErrInvalid)
	}
	path := filepath.Join(l.Dir, id)

	if _, err := sniff(path); err != nil {
		return nil, fmt.Errorf("resolve %q: %w", id, err)
	}
	tex, size, err := render.LoadTexture(path, l.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", id, err)
	}
	// Pictures do not tile; clamp so bilinear edges do not bleed.
	tex.WrapU, tex.WrapV = render.WrapClamp, render.WrapClamp
	tex.FilterMode = render.FilterBilinear
	return &gallery.Content{
		ID:       id,
		Width:    size.X,
		Height:   size.Y,
		Resource: tex,
	}, nil
}
