package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return &buf
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name          string
		w, h, maxSize int
		wantW, wantH  int
	}{
		{"no limit", 800, 600, 0, 800, 600},
		{"already fits", 100, 50, 256, 100, 50},
		{"landscape", 1024, 512, 256, 256, 128},
		{"portrait", 300, 900, 90, 30, 90},
		{"thin strip keeps one pixel", 1000, 1, 10, 10, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, h := fitWithin(tc.w, tc.h, tc.maxSize)
			if w != tc.wantW || h != tc.wantH {
				t.Errorf("fitWithin(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tc.w, tc.h, tc.maxSize, w, h, tc.wantW, tc.wantH)
			}
		})
	}
}

func TestDecodeTextureDownscales(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for y := range 20 {
		for x := range 40 {
			img.Set(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	tex, size, err := DecodeTexture(encodePNG(t, img), 10)
	if err != nil {
		t.Fatalf("DecodeTexture: %v", err)
	}
	if size != image.Pt(40, 20) {
		t.Errorf("source size = %v, want 40x20", size)
	}
	if tex.Width != 10 || tex.Height != 5 {
		t.Errorf("texture size = %dx%d, want 10x5", tex.Width, tex.Height)
	}
	c := tex.Sample(0.5, 0.5)
	if absInt(int(c.R)-200) > 2 || absInt(int(c.G)-100) > 2 || absInt(int(c.B)-50) > 2 {
		t.Errorf("sampled %v, want ~(200, 100, 50)", c)
	}
}

func TestDecodeTextureInvalid(t *testing.T) {
	if _, _, err := DecodeTexture(strings.NewReader("not an image"), 0); err == nil {
		t.Error("expected an error for garbage input")
	}
}

func TestTextureFromImageOrientation(t *testing.T) {
	// Top row red, bottom row blue; V=1 samples the top of the image.
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	img.SetRGBA(0, 1, color.RGBA{B: 255, A: 255})

	tex := TextureFromImage(img)
	if c := tex.Sample(0.5, 0.9); c.R != 255 {
		t.Errorf("Sample(v=0.9) = %v, want red", c)
	}
	if c := tex.Sample(0.5, 0.1); c.B != 255 {
		t.Errorf("Sample(v=0.1) = %v, want blue", c)
	}
}

func TestTextureFromSubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(2, 2, color.RGBA{G: 255, A: 255})

	tex := TextureFromImage(img.SubImage(image.Rect(2, 2, 4, 4)))
	if tex.Width != 2 || tex.Height != 2 {
		t.Fatalf("size = %dx%d, want 2x2", tex.Width, tex.Height)
	}
	if c := tex.GetPixel(0, 0); c.G != 255 {
		t.Errorf("GetPixel(0, 0) = %v, want green", c)
	}
}

func TestCheckerTexture(t *testing.T) {
	tex := NewCheckerTexture(4, 4, 2, ColorWhite, ColorBlack)
	if tex.GetPixel(0, 0) != ColorWhite || tex.GetPixel(2, 0) != ColorBlack || tex.GetPixel(2, 2) != ColorWhite {
		t.Error("checker pattern mismatch")
	}
}

func TestTextureWrapModes(t *testing.T) {
	tex := NewTexture(2, 1)
	tex.SetPixel(0, 0, ColorBlack)
	tex.SetPixel(1, 0, ColorWhite)

	tests := []struct {
		name string
		wrap WrapMode
		u    float64
		want Color
	}{
		{"repeat past right edge", WrapRepeat, 1.25, ColorBlack},
		{"repeat below zero", WrapRepeat, -0.25, ColorWhite},
		{"clamp past right edge", WrapClamp, 1.25, ColorWhite},
		{"clamp below zero", WrapClamp, -0.25, ColorBlack},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tex.WrapU = tc.wrap
			if got := tex.Sample(tc.u, 0.5); got != tc.want {
				t.Errorf("Sample(%v) = %v, want %v", tc.u, got, tc.want)
			}
		})
	}
}

func TestTextureBilinearClampedEdge(t *testing.T) {
	tex := NewTexture(2, 1)
	tex.SetPixel(0, 0, ColorBlack)
	tex.SetPixel(1, 0, ColorWhite)
	tex.WrapU, tex.WrapV = WrapClamp, WrapClamp
	tex.FilterMode = FilterBilinear

	if got := tex.Sample(1, 0.5); got != ColorWhite {
		t.Errorf("right edge = %v, want white without bleeding", got)
	}
	if got := tex.Sample(0.5, 0.5); got.R < 100 || got.R > 155 {
		t.Errorf("center = %v, want a mid gray", got)
	}
}
