package capture

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoMoreFrames is returned by a non-looping MockCamera once its sequence is exhausted.
var ErrNoMoreFrames = errors.New("no more frames")

// MockCamera plays back a fixed frame sequence for tests and demo mode.
type MockCamera struct {
	frames  []*Frame
	index   int
	intro   []*Frame
	played  int
	loop    bool
	openErr error
	fps     int
	mu      sync.Mutex
	running bool
}

// NewMockCamera creates a MockCamera that replays frames, optionally looping.
func NewMockCamera(frames []*Frame, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
		fps:    DefaultFPS,
	}
}

// FailOpen makes subsequent Open calls return err, simulating a denied or missing device.
func (c *MockCamera) FailOpen(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openErr = err
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openErr != nil {
		return c.openErr
	}
	c.running = true
	c.index = 0
	c.played = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

func (c *MockCamera) ReadFrame() (*Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}

	if c.played < len(c.intro) {
		frame := c.intro[c.played]
		c.played++
		return frame, nil
	}

	if len(c.frames) == 0 {
		return nil, fmt.Errorf("no frames available")
	}

	if c.index >= len(c.frames) {
		if !c.loop {
			return nil, ErrNoMoreFrames
		}
		c.index = 0
	}

	frame := c.frames[c.index]
	c.index++

	return frame, nil
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// DeviceID returns -1; mock cameras are not backed by a device.
func (c *MockCamera) DeviceID() int { return -1 }

// SetIntro sets frames played once after every Open, before the main sequence.
// Looping never replays them.
func (c *MockCamera) SetIntro(frames []*Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intro = frames
	c.played = 0
}

// SetFrames replaces the frame sequence
func (c *MockCamera) SetFrames(frames []*Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.index = 0
}

// Append adds frames to the end of the sequence.
func (c *MockCamera) Append(frames ...*Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, frames...)
}

// Reset restarts playback from the beginning
func (c *MockCamera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = 0
}
