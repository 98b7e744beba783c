package observe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumFor(t *testing.T, rm metricdata.ResourceMetrics, name string, attr attribute.KeyValue) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		t.Fatalf("metric %q not found", name)
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %q has data %T, want Sum[int64]", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attr.Key); ok && v.Emit() == attr.Value.Emit() {
			total += dp.Value
		}
	}
	return total
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()

	m.RecordFrame(ctx, "detecting", time.Millisecond)
	m.RecordHitScored(ctx, "blinker", "tiered", 12)
	m.RecordHitRejected(ctx, "too_quick", 0.5)
	m.RecordCalibration(ctx, true)
	m.RecordCaptureError(ctx, "open")
	m.OverlayClientConnected(ctx, 1)
}

func TestRecordCounters(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordFrame(ctx, "calibrating", time.Millisecond)
	m.RecordFrame(ctx, "detecting", time.Millisecond)
	m.RecordFrame(ctx, "detecting", 2*time.Millisecond)
	m.RecordHitScored(ctx, "blinker", "tiered", 12.3)
	m.RecordHitRejected(ctx, "too_long", 31)
	m.RecordCalibration(ctx, false)
	m.RecordCalibration(ctx, true)
	m.RecordCaptureError(ctx, "read")

	rm := collect(t, reader)

	tests := []struct {
		metric string
		attr   attribute.KeyValue
		want   int64
	}{
		{"blinker.frames.processed", attribute.String("phase", "detecting"), 2},
		{"blinker.frames.processed", attribute.String("phase", "calibrating"), 1},
		{"blinker.hits.scored", attribute.String("tier", "blinker"), 1},
		{"blinker.hits.rejected", attribute.String("reason", "too_long"), 1},
		{"blinker.calibrations", attribute.String("outcome", "fallback"), 1},
		{"blinker.calibrations", attribute.String("outcome", "calibrated"), 1},
		{"blinker.capture.errors", attribute.String("op", "read"), 1},
	}
	for _, tt := range tests {
		if got := sumFor(t, rm, tt.metric, tt.attr); got != tt.want {
			t.Errorf("%s{%s=%s} = %d, want %d", tt.metric, tt.attr.Key, tt.attr.Value.AsString(), got, tt.want)
		}
	}

	hd := findMetric(rm, "blinker.hit.duration")
	if hd == nil {
		t.Fatal("blinker.hit.duration not found")
	}
	hist, ok := hd.Data.(metricdata.Histogram[float64])
	if !ok || len(hist.DataPoints) == 0 || hist.DataPoints[0].Count != 2 {
		t.Errorf("hit duration histogram = %+v, want 2 observations", hd.Data)
	}
}

func TestMiddleware_RecordsDuration(t *testing.T) {
	m, reader := newTestMetrics(t)

	h := Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if rr.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", rr.Code)
	}

	rm := collect(t, reader)
	dur := findMetric(rm, "blinker.http.request.duration")
	if dur == nil {
		t.Fatal("blinker.http.request.duration not found")
	}
	hist := dur.Data.(metricdata.Histogram[float64])
	if len(hist.DataPoints) != 1 {
		t.Fatalf("data points = %d, want 1", len(hist.DataPoints))
	}
	if v, ok := hist.DataPoints[0].Attributes.Value("status"); !ok || v.AsString() != "418" {
		t.Errorf("status attribute = %v", v)
	}
}

func TestMiddleware_NilMetricsPassThrough(t *testing.T) {
	called := false
	h := Middleware(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("next handler not called")
	}
}

func TestProvider_Handler(t *testing.T) {
	p, err := InitProvider(context.Background(), ProviderConfig{ServiceVersion: "test"})
	if err != nil {
		t.Fatalf("InitProvider: %v", err)
	}
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	p.Metrics().RecordCalibration(context.Background(), false)

	rr := httptest.NewRecorder()
	p.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "calibrations") {
		t.Errorf("exposition does not contain the calibrations counter:\n%s", rr.Body.String())
	}
}
