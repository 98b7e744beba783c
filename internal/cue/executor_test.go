package cue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestExecutor_Execute(t *testing.T) {
	program := writeProgram(t, t.TempDir(), "ok", `#!/bin/sh
cat >/dev/null
echo '{"success":true}'
`)

	resp, err := NewExecutor(5000).Execute(context.Background(), program, &Request{Event: EventHitStarted})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	dir := t.TempDir()
	// The script copies its request into received.json next to itself.
	program := writeProgram(t, dir, "echo", `#!/bin/sh
cat > received.json
echo '{"success":true}'
`)

	req := &Request{Event: EventBlinker, Config: json.RawMessage(`{"sound":"bell"}`)}
	if _, err := NewExecutor(5000).Execute(context.Background(), program, req); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	got := readRequest(t, dir)
	if got.Event != EventBlinker {
		t.Errorf("event = %q, want %q", got.Event, EventBlinker)
	}
	if string(got.Config) != `{"sound":"bell"}` {
		t.Errorf("config = %s", got.Config)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	program := writeProgram(t, t.TempDir(), "slow", `#!/bin/sh
sleep 10
echo '{"success":true}'
`)

	_, err := NewExecutor(100).Execute(context.Background(), program, &Request{Event: EventHitStarted})
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error, got %v", err)
	}
}

func TestExecutor_FailureResponse(t *testing.T) {
	program := writeProgram(t, t.TempDir(), "fail", `#!/bin/sh
echo '{"success":false,"error":"no audio device"}'
`)

	_, err := NewExecutor(5000).Execute(context.Background(), program, &Request{Event: EventHitStarted})
	if !errors.Is(err, ErrCueFailed) {
		t.Errorf("Execute() error = %v, want ErrCueFailed", err)
	}
}

func TestExecutor_ExitError(t *testing.T) {
	program := writeProgram(t, t.TempDir(), "crash", `#!/bin/sh
echo boom >&2
exit 3
`)

	_, err := NewExecutor(5000).Execute(context.Background(), program, &Request{Event: EventHitStarted})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("Execute() error = %v, want stderr in message", err)
	}
}

func TestExecutor_InvalidJSON(t *testing.T) {
	program := writeProgram(t, t.TempDir(), "garbage", `#!/bin/sh
echo 'not json'
`)

	if _, err := NewExecutor(5000).Execute(context.Background(), program, &Request{}); err == nil {
		t.Error("expected parse error, got nil")
	}
}
