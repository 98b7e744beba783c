package capture

import "image"

// Spot describes a rectangular light source painted onto a synthetic frame.
type Spot struct {
	Rect  image.Rectangle
	Level uint8
}

// SyntheticFrame builds a frame with a uniform background and optional bright spots.
// It backs the mock camera and demo mode and keeps tests independent of a real device.
func SyntheticFrame(width, height int, background uint8, spots ...Spot) *Frame {
	f := NewFrame(width, height, 3)
	f.Fill(background, background, background)
	for _, s := range spots {
		f.FillRect(s.Rect, s.Level, s.Level, s.Level)
	}
	return f
}

// Repeat returns n references to the same frame. Frames are immutable, so sharing is safe.
func Repeat(f *Frame, n int) []*Frame {
	out := make([]*Frame, n)
	for i := range out {
		out[i] = f
	}
	return out
}

// DemoSequence returns a looping clip for running without a camera: a dark scene, then a
// small LED lit for ledSeconds near the centre of the default search window, then dark again.
// Calibration only counts frames showing the LED, so pair the clip with DemoIntro to keep
// the first hit at its full length.
func DemoSequence(width, height, fps int, ledSeconds float64) []*Frame {
	if fps <= 0 {
		fps = DefaultFPS
	}
	dark := SyntheticFrame(width, height, 20)
	lit := demoLED(width, height)

	pause := 3 * fps
	on := int(ledSeconds * float64(fps))

	frames := make([]*Frame, 0, 2*pause+on)
	frames = append(frames, Repeat(dark, pause)...)
	frames = append(frames, Repeat(lit, on)...)
	frames = append(frames, Repeat(dark, pause)...)
	return frames
}

// DemoIntro returns n frames of the demo LED, enough for calibration to finish before
// the clip starts.
func DemoIntro(width, height, n int) []*Frame {
	return Repeat(demoLED(width, height), n)
}

func demoLED(width, height int) *Frame {
	cx, cy := width/2, height*3/4
	return SyntheticFrame(width, height, 20, Spot{
		Rect:  image.Rect(cx-1, cy-1, cx+2, cy+2),
		Level: 235,
	})
}
