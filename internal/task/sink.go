package task

import (
	"fmt"
	"os"
)

// Sink is the shared output capability handed to every build rule. Modeling
// the output directory as an injected capability instead of ambient global
// state keeps rules independently testable with a fake sink.
type Sink interface {
	// Path returns the output directory path.
	Path() string

	// Ensure creates the output directory idempotently. It is the shared
	// prerequisite of all targets and runs before any conversion.
	Ensure() error

	// Clean removes the output directory and everything beneath it. It never
	// fails when the directory is already absent.
	Clean() error
}

// DirSink is the on-disk Sink used by real builds.
type DirSink struct {
	dir string
}

// NewDirSink creates a sink rooted at the given directory.
func NewDirSink(dir string) *DirSink {
	return &DirSink{dir: dir}
}

func (s *DirSink) Path() string {
	return s.dir
}

func (s *DirSink) Ensure() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

func (s *DirSink) Clean() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to remove output directory: %w", err)
	}
	return nil
}
