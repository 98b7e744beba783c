package capture

import (
	"errors"
	"testing"
)

func TestMockCamera_Playback(t *testing.T) {
	frame1 := SyntheticFrame(64, 48, 0)
	frame2 := SyntheticFrame(64, 48, 255)

	cam := NewMockCamera([]*Frame{frame1, frame2}, false)

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	f1, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if f1 != frame1 {
		t.Error("first read should return the first frame")
	}

	f2, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if f2 != frame2 {
		t.Error("second read should return the second frame")
	}

	_, err = cam.ReadFrame()
	if !errors.Is(err, ErrNoMoreFrames) {
		t.Errorf("ReadFrame() error = %v, want ErrNoMoreFrames", err)
	}
}

func TestMockCamera_Loop(t *testing.T) {
	frame := SyntheticFrame(8, 8, 0)

	cam := NewMockCamera([]*Frame{frame}, true)
	cam.Open()
	defer cam.Close()

	for i := 0; i < 5; i++ {
		if _, err := cam.ReadFrame(); err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
	}
}

func TestMockCamera_NotOpen(t *testing.T) {
	cam := NewMockCamera([]*Frame{SyntheticFrame(8, 8, 0)}, true)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestMockCamera_FailOpen(t *testing.T) {
	denied := errors.New("permission denied")
	cam := NewMockCamera(nil, false)
	cam.FailOpen(denied)

	if err := cam.Open(); !errors.Is(err, denied) {
		t.Errorf("Open() error = %v, want %v", err, denied)
	}
	if cam.IsOpen() {
		t.Error("camera should stay closed after a failed Open")
	}
}

func TestMockCamera_AppendAndReset(t *testing.T) {
	a := SyntheticFrame(4, 4, 1)
	b := SyntheticFrame(4, 4, 2)

	cam := NewMockCamera([]*Frame{a}, false)
	cam.Append(b)
	cam.Open()

	cam.ReadFrame()
	got, _ := cam.ReadFrame()
	if got != b {
		t.Fatal("appended frame should be read second")
	}

	cam.Reset()
	got, _ = cam.ReadFrame()
	if got != a {
		t.Error("Reset should restart playback")
	}
}

func TestMockCamera_IntroPlaysOncePerOpen(t *testing.T) {
	intro := SyntheticFrame(8, 8, 200)
	clip := SyntheticFrame(8, 8, 10)

	cam := NewMockCamera([]*Frame{clip}, true)
	cam.SetIntro([]*Frame{intro, intro})

	for round := 0; round < 2; round++ {
		if err := cam.Open(); err != nil {
			t.Fatalf("Open() error = %v", err)
		}

		var got []*Frame
		for i := 0; i < 4; i++ {
			f, err := cam.ReadFrame()
			if err != nil {
				t.Fatalf("ReadFrame() error = %v", err)
			}
			got = append(got, f)
		}
		want := []*Frame{intro, intro, clip, clip}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("round %d frame %d: wrong frame", round, i)
			}
		}
		cam.Close()
	}
}
