package detector

import (
	"image"
	"math"
	"testing"
)

func TestConfidence(t *testing.T) {
	tests := []struct {
		name       string
		brightness float64
		extent     int
		want       float64
	}{
		{name: "mid grey small", brightness: 127.5, extent: 5, want: 60},
		{name: "black no extent", brightness: 0, extent: 0, want: 0},
		{name: "capped", brightness: 230, extent: 10, want: 100},
		{name: "just under cap", brightness: 204, extent: 9, want: 80 + 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Confidence(tt.brightness, tt.extent)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Confidence(%v, %d) = %v, want %v", tt.brightness, tt.extent, got, tt.want)
			}
		})
	}
}

func TestConfidence_Bounded(t *testing.T) {
	for b := 0; b <= 255; b++ {
		for e := 0; e <= 500; e += 7 {
			c := Confidence(float64(b), e)
			if c < 0 || c > 100 {
				t.Fatalf("Confidence(%d, %d) = %v, outside [0,100]", b, e, c)
			}
		}
	}
}

func TestScore_ExtentBounds(t *testing.T) {
	tests := []struct {
		name       string
		spot       image.Rectangle
		wantOK     bool
		wantExtent int
	}{
		{name: "single pixel is noise", spot: image.Rect(50, 70, 51, 71), wantOK: false},
		{name: "two pixels is noise", spot: image.Rect(50, 70, 52, 71), wantOK: false},
		{name: "three pixels accepted", spot: image.Rect(50, 70, 53, 71), wantOK: true, wantExtent: 3},
		{name: "7x7 accepted", spot: image.Rect(50, 70, 57, 77), wantOK: true, wantExtent: 49},
		{name: "50 pixels rejected", spot: image.Rect(50, 70, 60, 75), wantOK: false},
		{name: "large bright area rejected", spot: image.Rect(30, 60, 70, 90), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFrame(100, 100, 10).spot(tt.spot, 240)
			s := NewSampler(f, DefaultWindow())

			c, ok := Score(s, tt.spot.Min.X, tt.spot.Min.Y, 200)
			if ok != tt.wantOK {
				t.Fatalf("Score() ok = %v, want %v (extent %d)", ok, tt.wantOK, Extent(s, tt.spot.Min.X, tt.spot.Min.Y, 200))
			}
			if ok && c.PixelExtent != tt.wantExtent {
				t.Errorf("PixelExtent = %d, want %d", c.PixelExtent, tt.wantExtent)
			}
		})
	}
}

func TestScore_SeedRules(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		wantOK  bool
	}{
		{name: "white", r: 240, g: 240, b: 240, wantOK: true},
		{name: "warm white within tolerance", r: 250, g: 235, b: 225, wantOK: true},
		{name: "red light", r: 255, g: 200, b: 200, wantOK: false},
		{name: "blue light", r: 200, g: 220, b: 255, wantOK: false},
		{name: "at threshold is not brighter", r: 200, g: 200, b: 200, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFrame(100, 100, 10).fill(image.Rect(50, 70, 53, 72), tt.r, tt.g, tt.b)
			s := NewSampler(f, DefaultWindow())

			_, ok := Score(s, 50, 70, 200)
			if ok != tt.wantOK {
				t.Errorf("Score() ok = %v, want %v", ok, tt.wantOK)
			}
		})
	}
}

func TestScore_OutsideWindow(t *testing.T) {
	f := newTestFrame(100, 100, 10).spot(image.Rect(5, 5, 8, 8), 250)
	s := NewSampler(f, DefaultWindow())

	if _, ok := Score(s, 6, 6, 200); ok {
		t.Error("seed outside the window must not score")
	}
}

func TestExtent_ClippedToWindow(t *testing.T) {
	// Spot straddles the left window edge at x=30; only columns 30..31 are visible.
	f := newTestFrame(100, 100, 10).spot(image.Rect(27, 70, 32, 72), 250)
	s := NewSampler(f, DefaultWindow())

	if got := Extent(s, 30, 70, 200); got != 4 {
		t.Errorf("Extent = %d, want 4", got)
	}
}
