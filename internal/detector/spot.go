package detector

import (
	"image"
	"math"
)

// Spot heuristics.
const (
	// SpotRadius bounds the neighbourhood counted towards a seed's extent.
	SpotRadius = 10
	// MinExtent is the largest extent still treated as sensor noise.
	MinExtent = 2
	// MaxExtent is the smallest extent treated as a large bright area (window, sky, lamp).
	MaxExtent = 50
	// NeutralTolerance is the maximum pairwise channel difference of a white-ish seed.
	NeutralTolerance = 30
)

// SpotCandidate is a single-frame hypothesis for the LED.
type SpotCandidate struct {
	Position    image.Point `json:"position"`
	Brightness  float64     `json:"brightness"`
	PixelExtent int         `json:"pixelExtent"`
	Confidence  float64     `json:"confidence"`
}

// Score tests the pixel at (x, y) as an LED seed against threshold.
// It returns false when the pixel is not a bright colour-neutral seed or when the
// bright area around it is too small or too large.
func Score(s *Sampler, x, y int, threshold float64) (SpotCandidate, bool) {
	r, g, b, ok := s.RGB(x, y)
	if !ok {
		return SpotCandidate{}, false
	}

	br := brightness(r, g, b)
	if br <= threshold || !neutral(r, g, b) {
		return SpotCandidate{}, false
	}

	extent := Extent(s, x, y, threshold)
	if extent <= MinExtent || extent >= MaxExtent {
		return SpotCandidate{}, false
	}

	return SpotCandidate{
		Position:    image.Pt(x, y),
		Brightness:  br,
		PixelExtent: extent,
		Confidence:  Confidence(br, extent),
	}, true
}

// Extent counts the pixels brighter than threshold in the square of SpotRadius around (x, y).
// It is a dilated size estimate, not a connected-component fill.
func Extent(s *Sampler, x, y int, threshold float64) int {
	count := 0
	for dy := -SpotRadius; dy <= SpotRadius; dy++ {
		for dx := -SpotRadius; dx <= SpotRadius; dx++ {
			if v, ok := s.Brightness(x+dx, y+dy); ok && v > threshold {
				count++
			}
		}
	}
	return count
}

// Confidence blends absolute brightness with a size bonus, capped at 100.
// Calibrated sensitivities depend on this exact formula.
func Confidence(brightness float64, extent int) float64 {
	return math.Min(100, (brightness/255)*100+(float64(extent)/10)*20)
}

func neutral(r, g, b uint8) bool {
	return absDiff(r, g) < NeutralTolerance &&
		absDiff(g, b) < NeutralTolerance &&
		absDiff(r, b) < NeutralTolerance
}

func absDiff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}
