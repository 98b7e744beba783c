package capture

import (
	"errors"
	"fmt"
	"image"
	"time"

	"gocv.io/x/gocv"
)

// ErrUnsupportedFrame is returned when a Mat cannot be converted to a Frame.
var ErrUnsupportedFrame = errors.New("unsupported frame format")

// Frame is one captured video frame stored as packed 8-bit RGB or RGBA samples.
// Frames are treated as immutable once handed to the detector.
type Frame struct {
	Pix       []byte
	Width     int
	Height    int
	Channels  int
	Timestamp time.Time
}

// NewFrame allocates a black frame with the given dimensions.
// Channels must be 3 (RGB) or 4 (RGBA); anything else is treated as 3.
func NewFrame(width, height, channels int) *Frame {
	if channels != 4 {
		channels = 3
	}
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Frame{
		Pix:      make([]byte, width*height*channels),
		Width:    width,
		Height:   height,
		Channels: channels,
	}
}

// Size returns the frame dimensions in pixels.
func (f *Frame) Size() (width, height int) {
	if f == nil {
		return 0, 0
	}
	return f.Width, f.Height
}

// Empty reports whether the frame has no pixels.
func (f *Frame) Empty() bool {
	return f == nil || f.Width <= 0 || f.Height <= 0 || len(f.Pix) < f.Width*f.Height*f.Channels
}

// RGB returns the colour sample at (x, y). Out-of-range coordinates return black.
func (f *Frame) RGB(x, y int) (r, g, b uint8) {
	if f.Empty() || x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return 0, 0, 0
	}
	i := (y*f.Width + x) * f.Channels
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// SetRGB writes a colour sample at (x, y). Out-of-range coordinates are ignored.
func (f *Frame) SetRGB(x, y int, r, g, b uint8) {
	if f.Empty() || x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}
	i := (y*f.Width + x) * f.Channels
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = r, g, b
	if f.Channels == 4 {
		f.Pix[i+3] = 255
	}
}

// Fill paints every pixel with the given colour.
func (f *Frame) Fill(r, g, b uint8) {
	f.FillRect(image.Rect(0, 0, f.Width, f.Height), r, g, b)
}

// FillRect paints the pixels of rect, clipped to the frame.
func (f *Frame) FillRect(rect image.Rectangle, r, g, b uint8) {
	rect = rect.Intersect(image.Rect(0, 0, f.Width, f.Height))
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			f.SetRGB(x, y, r, g, b)
		}
	}
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	c := *f
	c.Pix = make([]byte, len(f.Pix))
	copy(c.Pix, f.Pix)
	return &c
}

// FromMat converts a BGR Mat captured by OpenCV into an RGB Frame.
func FromMat(mat gocv.Mat, ts time.Time) (*Frame, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("convert mat: %w", ErrUnsupportedFrame)
	}
	if mat.Type() != gocv.MatTypeCV8UC3 {
		return nil, fmt.Errorf("convert mat of type %v: %w", mat.Type(), ErrUnsupportedFrame)
	}

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(mat, &rgb, gocv.ColorBGRToRGB)

	return &Frame{
		Pix:       rgb.ToBytes(),
		Width:     rgb.Cols(),
		Height:    rgb.Rows(),
		Channels:  3,
		Timestamp: ts,
	}, nil
}

// ToMat converts the frame back into a BGR Mat for drawing and encoding.
// The caller is responsible for closing the returned Mat.
func (f *Frame) ToMat() (gocv.Mat, error) {
	if f.Empty() {
		return gocv.NewMat(), fmt.Errorf("frame to mat: %w", ErrUnsupportedFrame)
	}

	src := f
	if f.Channels == 4 {
		src = f.toRGB()
	}

	rgb, err := gocv.NewMatFromBytes(src.Height, src.Width, gocv.MatTypeCV8UC3, src.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("frame to mat: %w", err)
	}
	defer rgb.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgb, &bgr, gocv.ColorRGBToBGR)
	return bgr, nil
}

// toRGB drops the alpha channel of an RGBA frame.
func (f *Frame) toRGB() *Frame {
	out := NewFrame(f.Width, f.Height, 3)
	out.Timestamp = f.Timestamp
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			r, g, b := f.RGB(x, y)
			out.SetRGB(x, y, r, g, b)
		}
	}
	return out
}
