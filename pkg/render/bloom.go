package render

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/blur"
)

// Bloom adds a soft glow around bright pixels.
type Bloom struct {
	Threshold float64 // Luminance in [0, 1] above which pixels glow
	Radius    float64 // Gaussian blur radius in pixels
	Strength  float64 // Multiplier for the added glow
}

// DefaultBloom returns a subtle glow suited to a starfield.
func DefaultBloom() Bloom {
	return Bloom{Threshold: 0.7, Radius: 2, Strength: 0.8}
}

// Apply blurs the bright parts of fb and adds them back in place.
func (b Bloom) Apply(fb *Framebuffer) {
	if b.Strength <= 0 || fb.Width == 0 || fb.Height == 0 {
		return
	}

	bright := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	lit := false
	for i, c := range fb.Pixels {
		if luminance(c) < b.Threshold {
			continue
		}
		lit = true
		bright.Pix[i*4+0] = c.R
		bright.Pix[i*4+1] = c.G
		bright.Pix[i*4+2] = c.B
		bright.Pix[i*4+3] = 255
	}
	if !lit {
		return
	}

	glow := bright
	if b.Radius > 0 {
		glow = blur.Gaussian(bright, b.Radius)
	}

	// Scale the glow and make it opaque so Add is a plain clamped sum.
	for i := 0; i < len(glow.Pix); i += 4 {
		glow.Pix[i+0] = uint8(math.Min(255, float64(glow.Pix[i+0])*b.Strength))
		glow.Pix[i+1] = uint8(math.Min(255, float64(glow.Pix[i+1])*b.Strength))
		glow.Pix[i+2] = uint8(math.Min(255, float64(glow.Pix[i+2])*b.Strength))
		glow.Pix[i+3] = 255
	}
	fb.FromImage(blend.Add(fb.ToImage(), glow))
}

// luminance returns the Rec. 709 relative luminance of c in [0, 1].
func luminance(c Color) float64 {
	return (0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)) / 255
}
