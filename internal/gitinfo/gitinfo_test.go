package gitinfo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func TestDetect_NoRepository(t *testing.T) {
	require.Nil(t, Detect(t.TempDir()))
}

func TestDetect_ReturnsHeadStamp(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "chapter.md"), []byte("# Hi\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("chapter.md")
	require.NoError(t, err)

	when := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: when},
	})
	require.NoError(t, err)

	stamp := Detect(dir)
	require.NotNil(t, stamp)
	require.Equal(t, hash.String(), stamp.Commit)
	require.Equal(t, hash.String()[:12], stamp.Short())
	require.True(t, stamp.CommitTime.Equal(when))
}

func TestDetect_DetectsFromSubdirectory(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	sub := filepath.Join(dir, "content")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "01.md"), []byte("# One\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("content/01.md")
	require.NoError(t, err)
	_, err = wt.Commit("add chapter", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	require.NotNil(t, Detect(sub))
}
