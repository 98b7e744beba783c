package cue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ErrCueFailed is returned when a cue program reports success=false.
var ErrCueFailed = errors.New("cue program failed")

// Executor runs cue programs with a timeout.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an Executor with the given timeout in milliseconds.
func NewExecutor(timeoutMs int) *Executor {
	return &Executor{
		timeout: time.Duration(timeoutMs) * time.Millisecond,
	}
}

// Execute runs program with req on stdin and parses its stdout as a Response.
func (e *Executor) Execute(ctx context.Context, program *Program, req *Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, program.Executable)
	cmd.Dir = program.Path

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	cmd.Stdin = bytes.NewReader(reqJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("cue %s timed out after %v", program.Manifest.Name, e.timeout)
	}

	if err != nil {
		if s := stderr.String(); s != "" {
			return nil, fmt.Errorf("cue %s failed: %w, stderr: %s", program.Manifest.Name, err, s)
		}
		return nil, fmt.Errorf("cue %s failed: %w", program.Manifest.Name, err)
	}

	var response Response
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		return nil, fmt.Errorf("failed to parse cue response: %w, stdout: %s", err, stdout.String())
	}
	if !response.Success {
		return &response, fmt.Errorf("%w: %s", ErrCueFailed, response.Error)
	}

	return &response, nil
}
