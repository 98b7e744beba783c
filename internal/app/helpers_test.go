package app

import (
	"image"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/blinker/internal/capture"
	"github.com/ayusman/blinker/internal/clock"
	"github.com/ayusman/blinker/internal/cue"
	"github.com/ayusman/blinker/internal/detector"
	"github.com/ayusman/blinker/internal/store"
)

const tickInterval = 100 * time.Millisecond

var epoch = time.Date(2024, 3, 8, 20, 0, 0, 0, time.UTC)

func litFrame() *capture.Frame {
	return capture.SyntheticFrame(100, 100, 20, capture.Spot{Rect: image.Rect(42, 68, 47, 70), Level: 230})
}

func darkFrame() *capture.Frame {
	return capture.SyntheticFrame(100, 100, 20)
}

// sequence concatenates runs of lit (true) or dark (false) frames.
func sequence(runs ...any) []*capture.Frame {
	var out []*capture.Frame
	for i := 0; i+1 < len(runs); i += 2 {
		f := darkFrame()
		if runs[i].(bool) {
			f = litFrame()
		}
		out = append(out, capture.Repeat(f, runs[i+1].(int))...)
	}
	return out
}

type recordPlayer struct {
	mu     sync.Mutex
	events []cue.Event
}

func (p *recordPlayer) Play(e cue.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordPlayer) Events() []cue.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]cue.Event(nil), p.events...)
}

type testEnv struct {
	app    *App
	store  *store.Store
	camera *capture.MockCamera
	clock  *clock.Mock
	cue    *recordPlayer
	opened []int
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestEnv(t *testing.T, frames []*capture.Frame, mutate ...func(*Config)) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, newTestStore(t), frames, mutate...)
}

func newTestEnvWithStore(t *testing.T, s *store.Store, frames []*capture.Frame, mutate ...func(*Config)) *testEnv {
	t.Helper()

	env := &testEnv{
		store:  s,
		camera: capture.NewMockCamera(frames, false),
		clock:  clock.NewMock(epoch),
		cue:    &recordPlayer{},
	}

	config := Config{
		Store:       s,
		CameraID:    0,
		AltCameraID: 1,
		FPS:         10,
		Detection:   detector.DefaultConfig(),
		Calibration: detector.CalibrationConfig{SampleTarget: 3, MaxAttempts: 10},
		Clock:       env.clock,
		Cue:         env.cue,
		NewCamera: func(id int) capture.Camera {
			env.opened = append(env.opened, id)
			return env.camera
		},
	}
	for _, fn := range mutate {
		fn(&config)
	}

	a, err := New(config)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	env.app = a
	return env
}

// run advances the clock one interval before each of n ticks.
func (e *testEnv) run(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		e.clock.Advance(tickInterval)
		if !e.app.Tick() {
			t.Fatalf("tick %d processed no frame", i)
		}
	}
}

// gatedCamera blocks every read until release is closed, announcing it on reading.
type gatedCamera struct {
	*capture.MockCamera
	reading chan struct{}
	release chan struct{}
}

func newGatedCamera(frames []*capture.Frame) *gatedCamera {
	return &gatedCamera{
		MockCamera: capture.NewMockCamera(frames, false),
		reading:    make(chan struct{}, 1),
		release:    make(chan struct{}),
	}
}

func (c *gatedCamera) ReadFrame() (*capture.Frame, error) {
	select {
	case c.reading <- struct{}{}:
	default:
	}
	<-c.release
	return c.MockCamera.ReadFrame()
}
