package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/bookbuilder/internal/book"
	"git.home.luguber.info/inful/bookbuilder/internal/config"
	"git.home.luguber.info/inful/bookbuilder/internal/linkcheck"
)

// LinksCmd implements the 'links' quality gate.
type LinksCmd struct {
	NoCache bool `help:"Probe every URL even when a fresh cached verdict exists"`
}

func (l *LinksCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}

	sources, err := book.NewResolver(&cfg.Book).Resolve()
	if err != nil {
		return err
	}

	checker, cleanup, err := newLinkChecker(cfg, l.NoCache)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := checker.Check(context.Background(), sources.Chapters)
	if err != nil {
		return err
	}

	for _, broken := range report.Broken {
		slog.Error("Broken link",
			"chapter", broken.Chapter,
			"destination", broken.Destination,
			"reason", broken.Reason)
	}
	if !report.OK() {
		return fmt.Errorf("%d broken link(s) found", len(report.Broken))
	}
	return nil
}

// newLinkChecker builds a checker from configuration, returning a cleanup
// function for the cache handle.
func newLinkChecker(cfg *config.Config, noCache bool) (*linkcheck.Checker, func(), error) {
	timeout, err := time.ParseDuration(cfg.Links.RequestTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid request_timeout: %w", err)
	}

	var cache *linkcheck.Cache
	cleanup := func() {}
	if !noCache {
		ttl, err := time.ParseDuration(cfg.Links.CacheTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid cache_ttl: %w", err)
		}
		cache, err = linkcheck.OpenCache(cfg.Links.CachePath, ttl)
		if err != nil {
			// A broken cache should not block the gate.
			slog.Warn("Link cache unavailable, probing without cache", "error", err)
		} else {
			cleanup = func() { _ = cache.Close() }
		}
	}

	return linkcheck.NewChecker(cache, timeout, cfg.Links.MaxConcurrent, cfg.Links.Exclude), cleanup, nil
}
