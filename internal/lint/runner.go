// Package lint runs the external prose linter as a quality gate. The linter
// is an opaque collaborator: its output streams through verbatim and its
// exit status is the verdict. The gate never mutates content.
package lint

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"git.home.luguber.info/inful/bookbuilder/internal/config"
)

// Runner invokes the configured prose linter over the content directory.
type Runner struct {
	command string
	args    []string
}

// NewRunner creates a runner from the lint configuration.
func NewRunner(cfg *config.LintConfig) *Runner {
	return &Runner{command: cfg.Command, args: cfg.Args}
}

// Run lints the given path. A missing linter binary is reported as such
// rather than as a lint failure.
func (r *Runner) Run(ctx context.Context, path string) error {
	binary, err := exec.LookPath(r.command)
	if err != nil {
		return fmt.Errorf("prose linter %q not found in PATH: %w", r.command, err)
	}

	args := append(append([]string{}, r.args...), path)
	slog.Info("Running prose linter", "command", r.command, "path", path)

	// #nosec G204 -- binary comes from exec.LookPath over the configured command
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s reported issues: %w", r.command, err)
	}
	return nil
}
