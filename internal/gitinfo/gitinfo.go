// Package gitinfo reads the book repository's HEAD so builds can stamp the
// commit into the published artifacts' metadata.
package gitinfo

import (
	"log/slog"
	"time"

	git "github.com/go-git/go-git/v5"
)

// Stamp identifies the source revision a build was produced from.
type Stamp struct {
	Commit     string
	CommitTime time.Time
}

// Detect looks for a git work tree at or above dir and returns its HEAD
// stamp. Books don't have to live in git; absence of a repository (or a
// repository without commits) returns nil without error.
func Detect(dir string) *Stamp {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		slog.Debug("No git repository detected", "dir", dir, "error", err)
		return nil
	}

	head, err := repo.Head()
	if err != nil {
		slog.Debug("Git repository has no HEAD", "dir", dir, "error", err)
		return nil
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		slog.Debug("Failed to resolve HEAD commit", "hash", head.Hash().String(), "error", err)
		return nil
	}

	return &Stamp{
		Commit:     head.Hash().String(),
		CommitTime: commit.Committer.When,
	}
}

// Short returns the abbreviated commit hash.
func (s *Stamp) Short() string {
	if len(s.Commit) < 12 {
		return s.Commit
	}
	return s.Commit[:12]
}
