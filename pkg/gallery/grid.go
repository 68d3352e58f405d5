package gallery

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/taigrr/moongallery/pkg/math3d"
)

// Grid is the latitude/longitude grid the spherical layout is built from.
type Grid struct {
	Radius  float64
	Rows    int
	Columns int
}

// Validate checks that the grid can produce a layout.
// Rows must be at least 2 since the polar step divides by Rows-1.
func (g Grid) Validate() error {
	switch {
	case !(g.Radius > 0) || math.IsInf(g.Radius, 1):
		return fmt.Errorf("%w: sphere radius must be finite and > 0, got %v", ErrInvalidConfiguration, g.Radius)
	case g.Rows < 2:
		return fmt.Errorf("%w: rows must be >= 2, got %d", ErrInvalidConfiguration, g.Rows)
	case g.Columns < 1:
		return fmt.Errorf("%w: columns must be >= 1, got %d", ErrInvalidConfiguration, g.Columns)
	}
	return nil
}

// Cells returns the number of items a layout over g produces.
func (g Grid) Cells() int {
	return g.Rows * g.Columns
}

// Anchors returns the grid's anchor positions in row-major order.
// Row 0 sits on the north pole and the last row on the south pole, so both
// pole rows collapse to a single point.
func (g Grid) Anchors() []math3d.Vec3 {
	anchors := make([]math3d.Vec3, 0, g.Cells())
	for r := range g.Rows {
		theta := math.Pi * float64(r) / float64(g.Rows-1)
		for c := range g.Columns {
			phi := 2 * math.Pi * float64(c) / float64(g.Columns)
			anchors = append(anchors, math3d.Spherical(g.Radius, theta, phi))
		}
	}
	return anchors
}

// Pool is the ordered list of content identifiers a layout draws from.
type Pool []string

// Shuffle permutes the pool in place.
func (p Pool) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(p), func(i, j int) { p[i], p[j] = p[j], p[i] })
}

// Pick returns the cyclic entry for cell index i.
func (p Pool) Pick(i int) string {
	return p[i%len(p)]
}

// SelectionMode controls how pool entries are assigned to cells.
type SelectionMode int

const (
	Cyclic SelectionMode = iota // pool[cell mod len(pool)]
	Random                      // uniform pick per cell, repeats allowed
)

func (m SelectionMode) String() string {
	switch m {
	case Cyclic:
		return "cyclic"
	case Random:
		return "random"
	default:
		return fmt.Sprintf("SelectionMode(%d)", int(m))
	}
}

// ParseSelectionMode parses "cyclic" or "random".
func ParseSelectionMode(s string) (SelectionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cyclic", "":
		return Cyclic, nil
	case "random":
		return Random, nil
	default:
		return 0, fmt.Errorf("%w: unknown selection mode %q", ErrInvalidConfiguration, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m SelectionMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *SelectionMode) UnmarshalText(text []byte) error {
	mode, err := ParseSelectionMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
