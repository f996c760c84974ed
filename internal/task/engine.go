// Package task implements the build-rule dependency and staleness engine:
// a small directed task graph where each target declares its input file set
// and output artifact, rebuilt only when stale. Staleness is decided by
// filesystem modification timestamps; that coarseness (clock skew, sub-second
// writes) is an accepted imprecision of the format, not something this engine
// papers over with content hashing.
package task

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/bookbuilder/internal/metrics"
)

// RunFunc performs the actual conversion for a target. It runs only when the
// target is stale and after the sink has been ensured.
type RunFunc func(ctx context.Context) error

// Target is one independently buildable output with its declared inputs.
// The declared input set must be a superset of every file the conversion
// actually reads, or the staleness rule is unsound.
type Target struct {
	Name   string
	Inputs []string
	Output string
	Run    RunFunc
}

// Engine evaluates targets sequentially against the staleness rule. One
// invocation owns the sink; there is no internal locking or parallelism.
type Engine struct {
	sink     Sink
	targets  map[string]*Target
	order    []string
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewEngine creates an engine writing through the given sink.
func NewEngine(sink Sink) *Engine {
	return &Engine{
		sink:     sink,
		targets:  make(map[string]*Target),
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
}

// WithLogger sets a custom logger.
func (e *Engine) WithLogger(logger *slog.Logger) *Engine {
	e.logger = logger
	return e
}

// WithRecorder sets a metrics recorder.
func (e *Engine) WithRecorder(r metrics.Recorder) *Engine {
	e.recorder = r
	return e
}

// Register adds a target to the engine. Registration order is the order
// targets are evaluated in an aggregate run.
func (e *Engine) Register(t *Target) error {
	if t == nil || t.Name == "" {
		return &DefinitionError{Target: "", Reason: "target name is required"}
	}
	if t.Run == nil {
		return &DefinitionError{Target: t.Name, Reason: "run function is required"}
	}
	if t.Output == "" {
		return &DefinitionError{Target: t.Name, Reason: "output path is required"}
	}
	if len(t.Inputs) == 0 {
		return &DefinitionError{Target: t.Name, Reason: "input set is empty"}
	}
	if _, exists := e.targets[t.Name]; exists {
		return &DefinitionError{Target: t.Name, Reason: "duplicate target name"}
	}
	e.targets[t.Name] = t
	e.order = append(e.order, t.Name)
	return nil
}

// Targets returns the registered target names in registration order.
func (e *Engine) Targets() []string {
	names := make([]string, len(e.order))
	copy(names, e.order)
	return names
}

// Stale reports whether the named target must be rebuilt.
func (e *Engine) Stale(name string) (bool, error) {
	t, exists := e.targets[name]
	if !exists {
		return false, &UnknownTargetError{Target: name}
	}
	return e.stale(t)
}

// Run evaluates the named targets in the given order, rebuilding exactly the
// stale subset. A failed target does not stop its siblings; their failures
// are joined into the returned error. Passing no names runs every registered
// target (the "all" aggregate).
func (e *Engine) Run(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		names = e.order
	}

	// Reject unknown names up front so a typo doesn't half-run an aggregate.
	for _, name := range names {
		if _, exists := e.targets[name]; !exists {
			return &UnknownTargetError{Target: name}
		}
	}

	buildID := uuid.New().String()
	logger := e.logger.With("build_id", buildID)
	logger.Info("Evaluating targets", "requested", names)
	buildStart := time.Now()

	sinkReady := false
	var errs []error

	for _, name := range names {
		t := e.targets[name]

		stale, err := e.stale(t)
		if err != nil {
			logger.Error("Prerequisite check failed", "target", name, "error", err)
			e.recorder.IncTargetResult(name, metrics.TargetFailed)
			errs = append(errs, err)
			continue
		}
		if !stale {
			logger.Info("Target is fresh, skipping", "target", name, "output", t.Output)
			e.recorder.IncTargetResult(name, metrics.TargetFresh)
			continue
		}

		if !sinkReady {
			if err := e.sink.Ensure(); err != nil {
				// Without an output directory no target can write at all.
				return err
			}
			sinkReady = true
		}

		logger.Info("Rebuilding target", "target", name, "output", t.Output)
		start := time.Now()
		if err := t.Run(ctx); err != nil {
			// The artifact stays as the converter left it; the caller must
			// treat a failed target as fully untrusted.
			runErr := &RunError{Target: name, Err: err}
			logger.Error("Target failed", "target", name, "error", err)
			e.recorder.IncTargetResult(name, metrics.TargetFailed)
			errs = append(errs, runErr)
			continue
		}
		e.recorder.ObserveTargetDuration(name, time.Since(start))
		e.recorder.IncTargetResult(name, metrics.TargetRebuilt)
		logger.Info("Target rebuilt", "target", name, "output", t.Output, "duration", time.Since(start))
	}

	e.recorder.ObserveBuildDuration(time.Since(buildStart))
	return errors.Join(errs...)
}

// Clean removes the sink unconditionally, regardless of staleness state.
func (e *Engine) Clean() error {
	e.logger.Info("Removing output directory", "path", e.sink.Path())
	return e.sink.Clean()
}
