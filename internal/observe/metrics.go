// Package observe provides OpenTelemetry metrics for the detection pipeline
// and the HTTP API, exported to Prometheus through [InitProvider].
//
// All Record methods are safe to call on a nil *Metrics, so components can be
// built without observability in tests.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all blinker metrics.
const meterName = "github.com/ayusman/blinker"

// Metrics holds all OpenTelemetry metric instruments for the application.
type Metrics struct {
	// FramesProcessed counts frames handled by the tick loop. Attribute "phase"
	// is "calibrating" or "detecting".
	FramesProcessed metric.Int64Counter

	// ScanDuration tracks the time spent scanning one frame.
	ScanDuration metric.Float64Histogram

	// HitsScored counts accepted hits by "tier" and "mode".
	HitsScored metric.Int64Counter

	// HitsRejected counts rejected hits by "reason".
	HitsRejected metric.Int64Counter

	// HitDuration tracks the duration of every completed hit.
	HitDuration metric.Float64Histogram

	// Calibrations counts finished calibrations by "outcome" (calibrated, fallback).
	Calibrations metric.Int64Counter

	// CaptureErrors counts failed camera opens and frame reads by "op".
	CaptureErrors metric.Int64Counter

	// OverlayClients tracks connected overlay WebSocket clients.
	OverlayClients metric.Int64UpDownCounter

	// HTTPRequestDuration tracks HTTP request processing time by "method", "path" and "status".
	HTTPRequestDuration metric.Float64Histogram
}

// scanBuckets are sized for a per-frame budget of a few milliseconds.
var scanBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1,
}

// hitBuckets follow the scoring tier breakpoints.
var hitBuckets = []float64{
	1, 5, 10, 15, 20, 30, 60,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider].
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.FramesProcessed, err = m.Int64Counter("blinker.frames.processed",
		metric.WithDescription("Frames processed by the tick loop by phase."),
	); err != nil {
		return nil, err
	}
	if met.ScanDuration, err = m.Float64Histogram("blinker.scan.duration",
		metric.WithDescription("Time spent scanning one frame."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(scanBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HitsScored, err = m.Int64Counter("blinker.hits.scored",
		metric.WithDescription("Accepted hits by tier and scoring mode."),
	); err != nil {
		return nil, err
	}
	if met.HitsRejected, err = m.Int64Counter("blinker.hits.rejected",
		metric.WithDescription("Rejected hits by reason."),
	); err != nil {
		return nil, err
	}
	if met.HitDuration, err = m.Float64Histogram("blinker.hit.duration",
		metric.WithDescription("Duration of completed hits."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(hitBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Calibrations, err = m.Int64Counter("blinker.calibrations",
		metric.WithDescription("Finished calibrations by outcome."),
	); err != nil {
		return nil, err
	}
	if met.CaptureErrors, err = m.Int64Counter("blinker.capture.errors",
		metric.WithDescription("Camera open and read failures by operation."),
	); err != nil {
		return nil, err
	}
	if met.OverlayClients, err = m.Int64UpDownCounter("blinker.overlay.clients",
		metric.WithDescription("Connected overlay WebSocket clients."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("blinker.http.request.duration",
		metric.WithDescription("HTTP request latency by method, path and status."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordFrame records one processed frame and its scan time.
func (m *Metrics) RecordFrame(ctx context.Context, phase string, scan time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("phase", phase))
	m.FramesProcessed.Add(ctx, 1, attrs)
	m.ScanDuration.Record(ctx, scan.Seconds(), attrs)
}

// RecordHitScored records an accepted hit.
func (m *Metrics) RecordHitScored(ctx context.Context, tier, mode string, seconds float64) {
	if m == nil {
		return
	}
	m.HitsScored.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tier", tier),
		attribute.String("mode", mode),
	))
	m.HitDuration.Record(ctx, seconds)
}

// RecordHitRejected records a hit the scoring policy refused.
func (m *Metrics) RecordHitRejected(ctx context.Context, reason string, seconds float64) {
	if m == nil {
		return
	}
	m.HitsRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	m.HitDuration.Record(ctx, seconds)
}

// RecordCalibration records a finished calibration.
func (m *Metrics) RecordCalibration(ctx context.Context, fallback bool) {
	if m == nil {
		return
	}
	outcome := "calibrated"
	if fallback {
		outcome = "fallback"
	}
	m.Calibrations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordCaptureError records a failed camera operation ("open" or "read").
func (m *Metrics) RecordCaptureError(ctx context.Context, op string) {
	if m == nil {
		return
	}
	m.CaptureErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

// OverlayClientConnected adjusts the overlay client gauge by delta.
func (m *Metrics) OverlayClientConnected(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.OverlayClients.Add(ctx, delta)
}
