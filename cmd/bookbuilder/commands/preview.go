package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/bookbuilder/internal/book"
	"git.home.luguber.info/inful/bookbuilder/internal/build"
	"git.home.luguber.info/inful/bookbuilder/internal/config"
	"git.home.luguber.info/inful/bookbuilder/internal/metrics"
	"git.home.luguber.info/inful/bookbuilder/internal/pandoc"
	"git.home.luguber.info/inful/bookbuilder/internal/preview"
)

// PreviewCmd serves the built HTML locally and rebuilds stale targets when
// sources change.
type PreviewCmd struct {
	Port              int    `short:"p" help:"Override the configured preview port"`
	LinkCheckInterval string `help:"Override the configured periodic link check interval (e.g. 30m)"`
}

func (p *PreviewCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if p.Port > 0 {
		cfg.Preview.Port = p.Port
	}
	if p.LinkCheckInterval != "" {
		cfg.Preview.LinkCheckInterval = p.LinkCheckInterval
	}

	recorder := metrics.NewPrometheusRecorder()
	conv := pandoc.NewExecConverter(cfg.Build.Pandoc)

	// A fresh builder per rebuild picks up added or removed chapters.
	rebuild := func(ctx context.Context) error {
		b := build.New(cfg, conv).WithRecorder(recorder)
		if err := b.Prepare(); err != nil {
			return err
		}
		return b.Run(ctx, build.TargetHTML)
	}

	server := preview.New(cfg, rebuild).WithMetricsHandler(recorder.Handler())

	if cfg.Preview.LinkCheckInterval != "" {
		server = server.WithLinkCheck(func(ctx context.Context) error {
			return runLinkGate(ctx, cfg, recorder)
		})
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return server.Run(ctx)
}

// runLinkGate performs one scheduled link check pass.
func runLinkGate(ctx context.Context, cfg *config.Config, recorder metrics.Recorder) error {
	checker, cleanup, err := newLinkChecker(cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()
	checker.WithRecorder(recorder)

	sources, err := book.NewResolver(&cfg.Book).Resolve()
	if err != nil {
		return err
	}

	report, err := checker.Check(ctx, sources.Chapters)
	if err != nil {
		return err
	}
	if !report.OK() {
		return fmt.Errorf("%d broken link(s) found", len(report.Broken))
	}
	return nil
}
