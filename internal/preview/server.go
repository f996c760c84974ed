// Package preview serves the built HTML artifact locally, rebuilding stale
// targets when the book's sources change. It optionally re-runs the link
// gate on a schedule and exposes Prometheus metrics for both.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/bookbuilder/internal/config"
)

const debounceWindow = 300 * time.Millisecond

// Server wires the watcher, the scheduler and the HTTP endpoints together.
// Build and link-check behavior is injected so the server stays testable
// without a real converter.
type Server struct {
	cfg        *config.Config
	rebuild    func(context.Context) error
	checkLinks func(context.Context) error // nil disables scheduled checks
	metricsH   http.Handler                // nil disables /metrics
}

// New creates a preview server. rebuild runs on startup and after every
// debounced source change; it is expected to rebuild only the stale subset.
func New(cfg *config.Config, rebuild func(context.Context) error) *Server {
	return &Server{cfg: cfg, rebuild: rebuild}
}

// WithLinkCheck enables periodic link gate runs.
func (s *Server) WithLinkCheck(fn func(context.Context) error) *Server {
	s.checkLinks = fn
	return s
}

// WithMetricsHandler exposes the given handler on /metrics.
func (s *Server) WithMetricsHandler(h http.Handler) *Server {
	s.metricsH = h
	return s
}

// Run blocks until ctx is canceled. A failed rebuild keeps the server alive
// serving the last good artifact; the failure is logged and the next change
// retries.
func (s *Server) Run(ctx context.Context) error {
	if err := s.rebuild(ctx); err != nil {
		// First build failing is tolerable: the author may be mid-edit.
		slog.Error("Initial build failed, serving stale output if any", "error", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range s.watchPaths() {
		if err := watcher.Add(dir); err != nil {
			slog.Warn("Cannot watch path", "path", dir, "error", err)
		}
	}

	scheduler, err := s.startScheduler(ctx)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() { _ = scheduler.Shutdown() }()
	}

	srv := s.httpServer()
	errChan := make(chan error, 1)
	go func() {
		slog.Info("Preview server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	go s.watchLoop(ctx, watcher)

	select {
	case err := <-errChan:
		return fmt.Errorf("preview server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) watchPaths() []string {
	paths := []string{
		s.cfg.Book.ContentDir,
		s.cfg.Book.StylesDir,
		s.cfg.Book.ImagesDir,
		filepath.Dir(s.cfg.Book.Metadata),
	}
	seen := make(map[string]struct{}, len(paths))
	var out []string
	for _, p := range paths {
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// watchLoop coalesces bursts of filesystem events into one rebuild.
func (s *Server) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			slog.Debug("Source change detected", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerC = timer.C
			} else {
				timer.Reset(debounceWindow)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Watcher error", "error", err)
		case <-timerC:
			timer = nil
			timerC = nil
			if err := s.rebuild(ctx); err != nil {
				slog.Error("Rebuild failed", "error", err)
			}
		}
	}
}

// startScheduler wires the periodic link re-check when configured.
func (s *Server) startScheduler(ctx context.Context) (gocron.Scheduler, error) {
	if s.checkLinks == nil || s.cfg.Preview.LinkCheckInterval == "" {
		return nil, nil
	}

	interval, err := time.ParseDuration(s.cfg.Preview.LinkCheckInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid link_check_interval: %w", err)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := s.checkLinks(ctx); err != nil {
				slog.Warn("Scheduled link check reported problems", "error", err)
			}
		}),
		gocron.WithName("link-check"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule link check: %w", err)
	}

	scheduler.Start()
	slog.Info("Scheduled periodic link check", "interval", interval)
	return scheduler, nil
}

func (s *Server) httpServer() *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.cfg.Build.Directory)))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.metricsH != nil {
		mux.Handle("/metrics", s.metricsH)
	}

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Preview.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
