package cue

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ErrProgramNotFound is returned when a requested cue program cannot be found.
var ErrProgramNotFound = errors.New("cue program not found")

// ManifestFile is the manifest name looked up in each program directory.
const ManifestFile = "cue.json"

// Manager discovers cue programs in a directory.
type Manager struct {
	dir      string
	programs map[string]*Program
	mu       sync.RWMutex
}

// NewManager creates a Manager scanning dir.
func NewManager(dir string) *Manager {
	return &Manager{
		dir:      dir,
		programs: make(map[string]*Program),
	}
}

// Discover scans the directory for cue.json manifests, replacing any earlier result.
// A missing directory is not an error.
func (m *Manager) Discover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.programs = make(map[string]*Program)

	if m.dir == "" {
		return nil
	}
	info, err := os.Stat(m.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(m.dir, entry.Name())
		data, err := os.ReadFile(filepath.Join(path, ManifestFile))
		if err != nil {
			continue
		}

		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			log.Printf("Skipping cue program %s: %v", entry.Name(), err)
			continue
		}
		if manifest.Name == "" || manifest.Executable == "" {
			continue
		}

		m.programs[manifest.Name] = &Program{
			Manifest:   manifest,
			Path:       path,
			Executable: filepath.Join(path, manifest.Executable),
		}
	}

	return nil
}

// Get returns a program by name.
func (m *Manager) Get(name string) (*Program, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.programs[name]
	if !ok {
		return nil, ErrProgramNotFound
	}
	return p, nil
}

// List returns every discovered program sorted by name.
func (m *Manager) List() []*Program {
	m.mu.RLock()
	defer m.mu.RUnlock()

	programs := make([]*Program, 0, len(m.programs))
	for _, p := range m.programs {
		programs = append(programs, p)
	}
	sort.Slice(programs, func(i, j int) bool {
		return programs[i].Manifest.Name < programs[j].Manifest.Name
	})
	return programs
}
