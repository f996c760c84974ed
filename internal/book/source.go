package book

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/bookbuilder/internal/config"
)

// Chapter represents one ordered unit of book content.
type Chapter struct {
	Path         string // Absolute or config-relative path to the file
	RelativePath string // Path relative to the content directory
	Name         string // File name without extension
	Order        int    // Position in the chapter sequence (0-based)
}

// SourceSet is the resolved input universe for a build: the ordered chapters
// plus every style asset. The build rules derive their declared input sets
// from it, so it must cover every file the converter will actually read.
type SourceSet struct {
	Chapters []Chapter
	Styles   []string // Stylesheet and font files under the styles directory
}

// Resolver enumerates chapter files and style assets from the configured
// content layout.
type Resolver struct {
	cfg *config.BookConfig
}

// NewResolver creates a source resolver for the given book layout.
func NewResolver(cfg *config.BookConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve enumerates the source set. Chapter order is the lexical order of
// file names in the content directory, which is why chapters carry numeric
// prefixes (01-intro.md, 02-setup.md, ...).
func (r *Resolver) Resolve() (*SourceSet, error) {
	chapters, err := r.resolveChapters()
	if err != nil {
		return nil, err
	}
	if len(chapters) == 0 {
		return nil, fmt.Errorf("no chapter files found in %s", r.cfg.ContentDir)
	}

	styles, err := r.resolveStyles()
	if err != nil {
		return nil, err
	}

	slog.Debug("Resolved book sources",
		"chapters", len(chapters),
		"styles", len(styles),
		"content_dir", r.cfg.ContentDir)

	return &SourceSet{Chapters: chapters, Styles: styles}, nil
}

func (r *Resolver) resolveChapters() ([]Chapter, error) {
	entries, err := os.ReadDir(r.cfg.ContentDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read content directory: %w", err)
	}

	var chapters []Chapter
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".md" && ext != ".markdown" {
			continue
		}
		chapters = append(chapters, Chapter{
			Path:         filepath.Join(r.cfg.ContentDir, name),
			RelativePath: name,
			Name:         strings.TrimSuffix(name, filepath.Ext(name)),
		})
	}

	sort.Slice(chapters, func(i, j int) bool {
		return chapters[i].RelativePath < chapters[j].RelativePath
	})
	for i := range chapters {
		chapters[i].Order = i
	}

	return chapters, nil
}

func (r *Resolver) resolveStyles() ([]string, error) {
	info, err := os.Stat(r.cfg.StylesDir)
	if os.IsNotExist(err) {
		// A book without custom styles is legal; PDF builds never use them.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat styles directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("styles path is not a directory: %s", r.cfg.StylesDir)
	}

	var styles []string
	err = filepath.WalkDir(r.cfg.StylesDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		styles = append(styles, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk styles directory: %w", err)
	}

	sort.Strings(styles)
	return styles, nil
}

// ChapterPaths returns the chapter file paths in declared order, the exact
// argument order handed to the converter.
func (s *SourceSet) ChapterPaths() []string {
	paths := make([]string, len(s.Chapters))
	for i, ch := range s.Chapters {
		paths[i] = ch.Path
	}
	return paths
}
