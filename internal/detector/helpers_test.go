package detector

import "image"

// testFrame is a minimal in-memory Frame for detector tests.
type testFrame struct {
	w, h int
	pix  [][3]uint8
}

func newTestFrame(w, h int, background uint8) *testFrame {
	f := &testFrame{w: w, h: h, pix: make([][3]uint8, w*h)}
	for i := range f.pix {
		f.pix[i] = [3]uint8{background, background, background}
	}
	return f
}

func (f *testFrame) Size() (int, int) { return f.w, f.h }

func (f *testFrame) RGB(x, y int) (uint8, uint8, uint8) {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return 0, 0, 0
	}
	p := f.pix[y*f.w+x]
	return p[0], p[1], p[2]
}

func (f *testFrame) fill(r image.Rectangle, red, green, blue uint8) *testFrame {
	r = r.Intersect(image.Rect(0, 0, f.w, f.h))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			f.pix[y*f.w+x] = [3]uint8{red, green, blue}
		}
	}
	return f
}

func (f *testFrame) spot(r image.Rectangle, level uint8) *testFrame {
	return f.fill(r, level, level, level)
}

// ledFrame is a 100x100 dark frame with a 5x2 spot of the given level inside the
// default window. The spot's top-left pixel is sampled by both the live and the
// calibration stride.
func ledFrame(level uint8) *testFrame {
	return newTestFrame(100, 100, 20).spot(image.Rect(42, 68, 47, 70), level)
}
