package linkcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bookbuilder/internal/book"
)

func chapterWith(t *testing.T, content string) book.Chapter {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "01-test.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return book.Chapter{Path: path, RelativePath: "01-test.md"}
}

func TestCheck_HealthyExternalLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := chapterWith(t, "A [link]("+srv.URL+"/page).\n")
	checker := NewChecker(nil, 5*time.Second, 4, nil)

	report, err := checker.Check(context.Background(), []book.Chapter{ch})
	require.NoError(t, err)
	require.True(t, report.OK())
	require.Equal(t, 1, report.Checked)
}

func TestCheck_BrokenExternalLink(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ch := chapterWith(t, "A [dead link]("+srv.URL+"/missing).\n")
	checker := NewChecker(nil, 5*time.Second, 4, nil)

	report, err := checker.Check(context.Background(), []book.Chapter{ch})
	require.NoError(t, err)
	require.False(t, report.OK())
	require.Len(t, report.Broken, 1)
	require.Equal(t, "01-test.md", report.Broken[0].Chapter)
	require.Contains(t, report.Broken[0].Reason, "404")
}

func TestCheck_HeadRejectedFallsBackToGet(t *testing.T) {
	var gets atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		gets.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := chapterWith(t, "A [link]("+srv.URL+").\n")
	checker := NewChecker(nil, 5*time.Second, 4, nil)

	report, err := checker.Check(context.Background(), []book.Chapter{ch})
	require.NoError(t, err)
	require.True(t, report.OK())
	require.Equal(t, int32(1), gets.Load())
}

func TestCheck_RelativeLinks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "02-other.md"), []byte("# Other\n"), 0o644))
	path := filepath.Join(dir, "01-test.md")
	content := "Good [sibling](02-other.md#setup), bad [ghost](03-ghost.md).\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	checker := NewChecker(nil, time.Second, 4, nil)
	report, err := checker.Check(context.Background(), []book.Chapter{
		{Path: path, RelativePath: "01-test.md"},
	})
	require.NoError(t, err)
	require.Len(t, report.Broken, 1)
	require.Equal(t, "03-ghost.md", report.Broken[0].Destination)
	require.Equal(t, "file not found", report.Broken[0].Reason)
}

func TestCheck_SkipsAnchorsAndMailto(t *testing.T) {
	ch := chapterWith(t, "See [above](#intro) or [write](mailto:a@example.com).\n")
	checker := NewChecker(nil, time.Second, 4, nil)

	report, err := checker.Check(context.Background(), []book.Chapter{ch})
	require.NoError(t, err)
	require.Equal(t, 0, report.Checked)
	require.Equal(t, 2, report.Skipped)
}

func TestCheck_ExcludedPrefixIsSkipped(t *testing.T) {
	ch := chapterWith(t, "An [intranet link](https://intranet.example/page).\n")
	checker := NewChecker(nil, time.Second, 4, []string{"https://intranet.example"})

	report, err := checker.Check(context.Background(), []book.Chapter{ch})
	require.NoError(t, err)
	require.Equal(t, 0, report.Checked)
	require.Equal(t, 1, report.Skipped)
}

func TestCheck_CacheShortCircuitsSecondProbe(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cache, err := OpenCache(":memory:", time.Hour)
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	ch := chapterWith(t, "A [link]("+srv.URL+").\n")
	checker := NewChecker(cache, 5*time.Second, 4, nil)

	_, err = checker.Check(context.Background(), []book.Chapter{ch})
	require.NoError(t, err)
	first := hits.Load()

	report, err := checker.Check(context.Background(), []book.Chapter{ch})
	require.NoError(t, err)
	require.True(t, report.OK())
	require.Equal(t, first, hits.Load())
}
