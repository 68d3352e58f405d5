package scene

import (
	"math/rand/v2"

	"github.com/taigrr/moongallery/pkg/math3d"
)

// NewStarfield scatters count stars uniformly through a cube of side spread
// centered on the origin.
func NewStarfield(count int, spread float64, rng *rand.Rand) []math3d.Vec3 {
	stars := make([]math3d.Vec3, max(count, 0))
	for i := range stars {
		stars[i] = math3d.V3(
			(rng.Float64()-0.5)*spread,
			(rng.Float64()-0.5)*spread,
			(rng.Float64()-0.5)*spread,
		)
	}
	return stars
}
