package cue

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
)

// Player is notified of hit events. Play must not block the caller.
type Player interface {
	Play(e Event)
}

// NopPlayer ignores every event.
type NopPlayer struct{}

// Play does nothing.
func (NopPlayer) Play(Event) {}

// CommandPlayer runs a cue program for each event it handles. At most one
// program runs at a time; events arriving meanwhile are dropped.
type CommandPlayer struct {
	program *Program
	exec    *Executor
	busy    atomic.Bool
	wg      sync.WaitGroup
}

// NewCommandPlayer creates a player running program through exec.
func NewCommandPlayer(program *Program, exec *Executor) *CommandPlayer {
	return &CommandPlayer{program: program, exec: exec}
}

// Play starts the cue program in the background and returns immediately.
// Failures are logged and otherwise ignored.
func (p *CommandPlayer) Play(e Event) {
	if !p.program.Manifest.Handles(e) {
		return
	}
	if !p.busy.CompareAndSwap(false, true) {
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.busy.Store(false)

		req := &Request{Event: e, Config: p.program.Manifest.Config}
		if _, err := p.exec.Execute(context.Background(), p.program, req); err != nil {
			log.Printf("Cue %s for %s: %v", p.program.Manifest.Name, e, err)
		}
	}()
}

// Wait blocks until the running cue program, if any, has exited.
func (p *CommandPlayer) Wait() {
	p.wg.Wait()
}

// NewPlayer discovers cue programs in dir and returns a player for the one named
// name. It falls back to NopPlayer when name is empty or cannot be found.
func NewPlayer(dir, name string, timeoutMs int) Player {
	if name == "" {
		return NopPlayer{}
	}

	m := NewManager(dir)
	if err := m.Discover(); err != nil {
		log.Printf("Cue discovery in %s failed: %v", dir, err)
		return NopPlayer{}
	}
	program, err := m.Get(name)
	if err != nil {
		log.Printf("Cue %q not available in %s, audio cues disabled", name, dir)
		return NopPlayer{}
	}

	log.Printf("Using cue program %s (%s)", program.Manifest.Name, program.Executable)
	return NewCommandPlayer(program, NewExecutor(timeoutMs))
}
