package cue

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// writeProgram writes an executable shell script named name into dir and returns
// a Program pointing at it.
func writeProgram(t *testing.T, dir, name, script string, events ...Event) *Program {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	path := filepath.Join(dir, name+".sh")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Program{
		Manifest: Manifest{
			Name:       name,
			Version:    "1.0.0",
			Executable: name + ".sh",
			Events:     events,
		},
		Path:       dir,
		Executable: path,
	}
}
