package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/bookbuilder/internal/build"
	"git.home.luguber.info/inful/bookbuilder/internal/config"
	"git.home.luguber.info/inful/bookbuilder/internal/pandoc"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"book.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	All     AllCmd     `cmd:"" help:"Build every stale target (HTML, EPUB, PDF)"`
	HTML    HTMLCmd    `cmd:"" name:"html" help:"Build or refresh the HTML artifact"`
	EPUB    EPUBCmd    `cmd:"" name:"epub" help:"Build or refresh the EPUB artifact"`
	PDF     PDFCmd     `cmd:"" name:"pdf" help:"Build or refresh the PDF artifact"`
	Clean   CleanCmd   `cmd:"" help:"Remove the output directory"`
	Lint    LintCmd    `cmd:"" help:"Run the prose linter over the book content"`
	Links   LinksCmd   `cmd:"" help:"Check link reachability across all chapters"`
	Init    InitCmd    `cmd:"" help:"Scaffold a new book skeleton"`
	Preview PreviewCmd `cmd:"" help:"Serve the built HTML locally, rebuilding on change"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// newBuilder loads configuration and prepares a builder around the real
// converter binary.
func newBuilder(root *CLI) (*build.Builder, *config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, nil, err
	}

	if v := pandoc.DetectVersion(context.Background(), cfg.Build.Pandoc); v != "" {
		slog.Debug("Detected converter", "binary", cfg.Build.Pandoc, "version", v)
	}

	b := build.New(cfg, pandoc.NewExecConverter(cfg.Build.Pandoc))
	if err := b.Prepare(); err != nil {
		return nil, nil, err
	}
	return b, cfg, nil
}
