package gallery

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/taigrr/moongallery/pkg/math3d"
)

// Resolver turns a pool identifier into loadable content.
type Resolver interface {
	Resolve(id string) (*Content, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(id string) (*Content, error)

// Resolve calls f(id).
func (f ResolverFunc) Resolve(id string) (*Content, error) {
	return f(id)
}

// Option configures Generate and Place.
type Option func(*layoutOptions)

type layoutOptions struct {
	rng        *rand.Rand
	resolver   Resolver
	logger     *slog.Logger
	itemHeight float64
}

// WithRand sets the random source used by Random selection.
func WithRand(rng *rand.Rand) Option {
	return func(o *layoutOptions) { o.rng = rng }
}

// WithResolver sets the resolver used to load each pool entry.
func WithResolver(r Resolver) Option {
	return func(o *layoutOptions) { o.resolver = r }
}

// WithLogger sets the logger that reports missing content.
func WithLogger(l *slog.Logger) Option {
	return func(o *layoutOptions) { o.logger = l }
}

// WithItemHeight sets the quad height in world units. Widths follow the
// content's aspect ratio.
func WithItemHeight(h float64) Option {
	return func(o *layoutOptions) { o.itemHeight = h }
}

func newLayoutOptions(opts []Option) layoutOptions {
	o := layoutOptions{itemHeight: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// Generate lays pool content out on the grid's sphere, one item per cell in
// row-major order. Invalid grids fail before any item is produced.
//
// Content that fails to resolve leaves its cell unpopulated and is logged,
// so the result always holds exactly grid.Rows*grid.Columns items.
func Generate(grid Grid, pool Pool, mode SelectionMode, opts ...Option) ([]*PlacedItem, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	items, err := Place(grid.Anchors(), pool, mode, opts...)
	if err != nil {
		return nil, err
	}
	for i, it := range items {
		it.Row, it.Col = i/grid.Columns, i%grid.Columns
	}
	return items, nil
}

// Place assigns pool content to an explicit list of anchors and orients each
// item to face away from the origin. Items are in anchor order with Row 0
// and Col set to the anchor index.
func Place(anchors []math3d.Vec3, pool Pool, mode SelectionMode, opts ...Option) ([]*PlacedItem, error) {
	if len(anchors) == 0 {
		return nil, fmt.Errorf("%w: no anchors to place content on", ErrInvalidConfiguration)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: content pool is empty", ErrInvalidConfiguration)
	}
	if mode != Cyclic && mode != Random {
		return nil, fmt.Errorf("%w: unknown selection mode %v", ErrInvalidConfiguration, mode)
	}
	o := newLayoutOptions(opts)
	if !(o.itemHeight > 0) {
		return nil, fmt.Errorf("%w: item height must be > 0, got %v", ErrInvalidConfiguration, o.itemHeight)
	}

	cache := newContentCache(o.resolver, o.logger)
	items := make([]*PlacedItem, len(anchors))
	for i, pos := range anchors {
		var id string
		switch mode {
		case Random:
			id = pool[o.rng.IntN(len(pool))]
		default:
			id = pool.Pick(i)
		}

		content, err := cache.get(id)
		items[i] = &PlacedItem{
			Col:        i,
			Position:   pos,
			Normal:     pos.Normalize(),
			ContentID:  id,
			Content:    content,
			ContentErr: err,
			Width:      o.itemHeight * content.Aspect(),
			Height:     o.itemHeight,
			Scale:      math3d.V3(1, 1, 1),
			Opacity:    1,
			Visible:    content != nil,
		}
	}
	return items, nil
}

// MissingContent returns the items whose content failed to resolve.
func MissingContent(items []*PlacedItem) []*PlacedItem {
	var missing []*PlacedItem
	for _, it := range items {
		if !it.Populated() {
			missing = append(missing, it)
		}
	}
	return missing
}

// MissingErrors returns the resolve error of every pool entry that failed,
// keyed by id.
func MissingErrors(items []*PlacedItem) map[string]error {
	errs := make(map[string]error)
	for _, it := range items {
		if it.ContentErr != nil {
			errs[it.ContentID] = it.ContentErr
		}
	}
	return errs
}

// contentCache resolves each pool id at most once per layout.
type contentCache struct {
	resolver Resolver
	logger   *slog.Logger
	ok       map[string]*Content
	failed   map[string]error
}

func newContentCache(r Resolver, logger *slog.Logger) *contentCache {
	return &contentCache{
		resolver: r,
		logger:   logger,
		ok:       make(map[string]*Content),
		failed:   make(map[string]error),
	}
}

func (c *contentCache) get(id string) (*Content, error) {
	if c.resolver == nil {
		return &Content{ID: id}, nil
	}
	if content, ok := c.ok[id]; ok {
		return content, nil
	}
	if err, ok := c.failed[id]; ok {
		return nil, err
	}

	content, err := c.resolver.Resolve(id)
	if err == nil && content == nil {
		err = errors.New("resolver returned no content")
	}
	if err != nil {
		if !errors.Is(err, ErrMissingContent) {
			err = fmt.Errorf("%w: %q: %w", ErrMissingContent, id, err)
		}
		c.failed[id] = err
		c.logger.Warn("skipping gallery content", "id", id, "err", err)
		return nil, err
	}
	c.ok[id] = content
	return content, nil
}
