package detector

import (
	"image"
	"math"
	"math/rand"
	"testing"
)

func TestDetect_NoBrightPixels(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 20; i++ {
		f := newTestFrame(64, 48, 0)
		for p := range f.pix {
			v := uint8(rng.Intn(DefaultBrightnessThreshold + 1))
			f.pix[p] = [3]uint8{v, v, v}
		}

		got := Detect(f, DefaultWindow(), DefaultThresholds(), Options{})
		if got.Detected {
			t.Fatalf("frame %d: detected a spot with no pixel above threshold: %+v", i, got)
		}
	}
}

func TestDetect_NothingFoundIsZeroResult(t *testing.T) {
	got := Detect(newTestFrame(100, 100, 20), DefaultWindow(), DefaultThresholds(), Options{})

	want := DetectionResult{}
	if got != want {
		t.Errorf("Detect() = %+v, want zero result", got)
	}
}

func TestDetect_SingleLED(t *testing.T) {
	got := Detect(ledFrame(230), DefaultWindow(), DefaultThresholds(), Options{Stride: LiveStride})

	if !got.Detected {
		t.Fatalf("expected detection, got %+v", got)
	}
	if got.Position != image.Pt(42, 68) {
		t.Errorf("Position = %v, want (42,68)", got.Position)
	}
	if got.Brightness != 230 {
		t.Errorf("Brightness = %v, want 230", got.Brightness)
	}
	if got.Extent != 10 {
		t.Errorf("Extent = %d, want 10", got.Extent)
	}
	if got.Confidence != 100 {
		t.Errorf("Confidence = %v, want 100", got.Confidence)
	}
}

func TestDetect_SensitivityGateAppliedToBestOnly(t *testing.T) {
	// Weaker spot first in scan order, stronger spot later. Both are 3-pixel lines.
	f := newTestFrame(100, 100, 10).
		spot(image.Rect(32, 62, 35, 63), 205).
		spot(image.Rect(60, 80, 63, 81), 210)
	strong := Confidence(210, 3)

	tests := []struct {
		name         string
		sensitivity  float64
		wantDetected bool
	}{
		{name: "best passes", sensitivity: 87, wantDetected: true},
		{name: "best fails", sensitivity: 89, wantDetected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(f, DefaultWindow(), DetectionThresholds{BrightnessThreshold: 200, Sensitivity: tt.sensitivity}, Options{})

			if got.Detected != tt.wantDetected {
				t.Errorf("Detected = %v, want %v", got.Detected, tt.wantDetected)
			}
			if math.Abs(got.Confidence-strong) > 1e-9 {
				t.Errorf("Confidence = %v, want best candidate %v", got.Confidence, strong)
			}
			if got.Position != image.Pt(60, 80) {
				t.Errorf("Position = %v, want the stronger spot at (60,80)", got.Position)
			}
		})
	}
}

func TestDetect_FirstCandidateWinsTies(t *testing.T) {
	f := newTestFrame(100, 100, 10).
		spot(image.Rect(60, 62, 63, 63), 240).
		spot(image.Rect(32, 80, 35, 81), 240)

	got := Detect(f, DefaultWindow(), DefaultThresholds(), Options{})
	if got.Position != image.Pt(60, 62) {
		t.Errorf("Position = %v, want the row-major first spot (60,62)", got.Position)
	}
}

func TestDetect_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		frame  Frame
		window SearchWindow
	}{
		{name: "zero size frame", frame: newTestFrame(0, 0, 0), window: DefaultWindow()},
		{name: "empty window", frame: ledFrame(230), window: SearchWindow{0.5, 0.5, 0.6, 0.9}},
		{name: "coloured light", frame: newTestFrame(100, 100, 10).fill(image.Rect(42, 68, 47, 70), 250, 120, 120), window: DefaultWindow()},
		{name: "bright window in background", frame: newTestFrame(100, 100, 10).spot(image.Rect(30, 60, 70, 90), 250), window: DefaultWindow()},
		{name: "spot outside window", frame: newTestFrame(100, 100, 10).spot(image.Rect(5, 5, 10, 7), 250), window: DefaultWindow()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.frame, tt.window, DefaultThresholds(), Options{})
			if got.Detected {
				t.Errorf("Detect() = %+v, want no detection", got)
			}
		})
	}
}

func TestDetect_NoSensitivityGate(t *testing.T) {
	th := DetectionThresholds{BrightnessThreshold: 100, Sensitivity: 100}

	gated := Detect(ledFrame(230), DefaultWindow(), th, Options{Stride: CalibrationStride})
	if gated.Detected {
		t.Error("confidence 100 should not exceed sensitivity 100")
	}

	ungated := Detect(ledFrame(230), DefaultWindow(), th, Options{Stride: CalibrationStride, NoSensitivityGate: true})
	if !ungated.Detected {
		t.Error("without the gate any candidate counts as detected")
	}
}

func TestSpotDetector_ReadsSharedThresholds(t *testing.T) {
	ts := NewThresholdStore(DefaultThresholds())
	d := NewSpotDetector(DefaultConfig(), ts)

	if !d.Detect(ledFrame(230)).Detected {
		t.Fatal("expected detection with default thresholds")
	}

	ts.Set(DetectionThresholds{BrightnessThreshold: 240, Sensitivity: 50}, true)
	if d.Detect(ledFrame(230)).Detected {
		t.Error("raised brightness threshold should suppress detection")
	}

	if d.Window() != DefaultWindow() {
		t.Errorf("Window() = %+v, want default", d.Window())
	}
}
