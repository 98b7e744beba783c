package detector

import "image"

// Frame is the read-only pixel source the detector scans.
type Frame interface {
	Size() (width, height int)
	RGB(x, y int) (r, g, b uint8)
}

// Sampler exposes per-pixel access to a frame restricted to a resolved search window.
type Sampler struct {
	frame Frame
	rect  image.Rectangle
}

// NewSampler resolves window against the frame size.
func NewSampler(f Frame, window SearchWindow) *Sampler {
	s := &Sampler{frame: f}
	if f == nil {
		return s
	}
	w, h := f.Size()
	s.rect = window.Resolve(w, h)
	return s
}

// Bounds returns the resolved window in pixel coordinates.
func (s *Sampler) Bounds() image.Rectangle {
	return s.rect
}

// Empty reports whether there is nothing to scan.
func (s *Sampler) Empty() bool {
	return s.frame == nil || s.rect.Empty()
}

// RGB returns the sample at (x, y); ok is false outside the window.
func (s *Sampler) RGB(x, y int) (r, g, b uint8, ok bool) {
	if s.Empty() || !image.Pt(x, y).In(s.rect) {
		return 0, 0, 0, false
	}
	r, g, b = s.frame.RGB(x, y)
	return r, g, b, true
}

// Brightness returns (r+g+b)/3 at (x, y); ok is false outside the window.
func (s *Sampler) Brightness(x, y int) (float64, bool) {
	r, g, b, ok := s.RGB(x, y)
	if !ok {
		return 0, false
	}
	return brightness(r, g, b), true
}

func brightness(r, g, b uint8) float64 {
	return float64(int(r)+int(g)+int(b)) / 3
}
