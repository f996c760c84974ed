package linkcheck

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/bookbuilder/internal/book"
	"git.home.luguber.info/inful/bookbuilder/internal/metrics"
)

// BrokenLink describes one unreachable or unresolvable destination.
type BrokenLink struct {
	Chapter     string // Chapter file the link came from
	Destination string
	Reason      string
}

// Report summarizes one gate run.
type Report struct {
	Checked int
	Skipped int
	Broken  []BrokenLink
}

// OK reports whether the gate passed.
func (r *Report) OK() bool {
	return len(r.Broken) == 0
}

// Checker runs the link reachability gate. External URLs are probed with a
// bounded number of concurrent requests; relative links resolve against the
// chapter's directory. The gate never mutates content.
type Checker struct {
	client    *http.Client
	cache     *Cache
	sem       chan struct{}
	exclude   []string
	recorder  metrics.Recorder
	userAgent string
}

// NewChecker creates a checker. cache may be nil to disable caching.
func NewChecker(cache *Cache, timeout time.Duration, maxConcurrent int, exclude []string) *Checker {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	return &Checker{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		cache:     cache,
		sem:       make(chan struct{}, maxConcurrent),
		exclude:   exclude,
		recorder:  metrics.NoopRecorder{},
		userAgent: "bookbuilder-linkcheck/1.0",
	}
}

// WithRecorder sets a metrics recorder.
func (c *Checker) WithRecorder(r metrics.Recorder) *Checker {
	c.recorder = r
	return c
}

// Check examines every link in every chapter and returns the aggregate
// report. It only errors on chapter read failures, not on broken links; the
// caller turns a non-OK report into a non-zero exit.
func (c *Checker) Check(ctx context.Context, chapters []book.Chapter) (*Report, error) {
	report := &Report{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, ch := range chapters {
		body, err := os.ReadFile(ch.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read chapter %s: %w", ch.RelativePath, err)
		}

		for _, link := range ExtractLinks(body) {
			dest := strings.TrimSpace(link.Destination)
			switch classify(dest) {
			case destSkip:
				mu.Lock()
				report.Skipped++
				mu.Unlock()
			case destRelative:
				reason, broken := c.checkRelative(ch, dest)
				c.recorder.IncLinkChecked(broken)
				mu.Lock()
				report.Checked++
				if broken {
					report.Broken = append(report.Broken, BrokenLink{
						Chapter: ch.RelativePath, Destination: dest, Reason: reason,
					})
				}
				mu.Unlock()
			case destExternal:
				if c.excluded(dest) {
					mu.Lock()
					report.Skipped++
					mu.Unlock()
					continue
				}
				wg.Add(1)
				go func(ch book.Chapter, dest string) {
					defer wg.Done()
					c.sem <- struct{}{}
					defer func() { <-c.sem }()

					reason, broken := c.checkExternal(ctx, dest)
					c.recorder.IncLinkChecked(broken)

					mu.Lock()
					report.Checked++
					if broken {
						report.Broken = append(report.Broken, BrokenLink{
							Chapter: ch.RelativePath, Destination: dest, Reason: reason,
						})
					}
					mu.Unlock()
				}(ch, dest)
			}
		}
	}

	wg.Wait()
	slog.Info("Link check completed",
		"checked", report.Checked,
		"skipped", report.Skipped,
		"broken", len(report.Broken))
	return report, nil
}

type destClass int

const (
	destSkip destClass = iota
	destRelative
	destExternal
)

func classify(dest string) destClass {
	if dest == "" || strings.HasPrefix(dest, "#") {
		return destSkip
	}
	u, err := url.Parse(dest)
	if err != nil {
		return destRelative // let the filesystem check report it
	}
	switch u.Scheme {
	case "http", "https":
		return destExternal
	case "":
		return destRelative
	default:
		// mailto:, tel:, etc. are out of scope for reachability.
		return destSkip
	}
}

func (c *Checker) excluded(dest string) bool {
	for _, prefix := range c.exclude {
		if strings.HasPrefix(dest, prefix) {
			return true
		}
	}
	return false
}

// checkRelative verifies a repository-relative destination resolves to an
// existing file, ignoring any fragment.
func (c *Checker) checkRelative(ch book.Chapter, dest string) (string, bool) {
	path := dest
	if idx := strings.IndexByte(path, '#'); idx >= 0 {
		path = path[:idx]
	}
	if path == "" {
		return "", false
	}
	resolved := filepath.Join(filepath.Dir(ch.Path), filepath.FromSlash(path))
	if _, err := os.Stat(resolved); err != nil {
		return "file not found", true
	}
	return "", false
}

// checkExternal probes a URL, answering from the cache when possible. A HEAD
// request is tried first; servers that reject HEAD get one GET retry.
func (c *Checker) checkExternal(ctx context.Context, dest string) (string, bool) {
	if c.cache != nil {
		if entry, ok, err := c.cache.Get(ctx, dest); err == nil && ok {
			c.recorder.IncLinkCacheHit()
			if entry.Broken {
				return fmt.Sprintf("cached: HTTP %d", entry.Status), true
			}
			return "", false
		}
	}

	status, err := c.probe(ctx, http.MethodHead, dest)
	if err != nil || status == http.StatusMethodNotAllowed || status == http.StatusForbidden {
		status, err = c.probe(ctx, http.MethodGet, dest)
	}

	broken := false
	reason := ""
	switch {
	case err != nil:
		broken = true
		reason = err.Error()
	case status >= 400:
		broken = true
		reason = fmt.Sprintf("HTTP %d", status)
	}

	if c.cache != nil {
		_ = c.cache.Put(ctx, &CacheEntry{
			URL: dest, Broken: broken, Status: status, CheckedAt: time.Now(),
		})
	}
	return reason, broken
}

func (c *Checker) probe(ctx context.Context, method, dest string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, dest, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode, nil
}
