package commands

import (
	"context"
	"fmt"
	"os"

	"git.home.luguber.info/inful/bookbuilder/internal/config"
	"git.home.luguber.info/inful/bookbuilder/internal/lint"
)

// LintCmd implements the 'lint' quality gate.
type LintCmd struct {
	Path string `arg:"" optional:"" help:"Path to lint (defaults to the configured content directory)"`
}

func (l *LintCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}

	path := l.Path
	if path == "" {
		path = cfg.Book.ContentDir
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}

	return lint.NewRunner(&cfg.Lint).Run(context.Background(), path)
}
