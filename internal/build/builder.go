// Package build assembles the three publication targets from the resolved
// book sources and evaluates them through the staleness engine.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/bookbuilder/internal/book"
	"git.home.luguber.info/inful/bookbuilder/internal/config"
	"git.home.luguber.info/inful/bookbuilder/internal/gitinfo"
	"git.home.luguber.info/inful/bookbuilder/internal/metrics"
	"git.home.luguber.info/inful/bookbuilder/internal/pandoc"
	"git.home.luguber.info/inful/bookbuilder/internal/task"
)

// Target names as exposed on the CLI.
const (
	TargetHTML = "html"
	TargetEPUB = "epub"
	TargetPDF  = "pdf"
)

// Builder owns the task engine and the converter for one configuration.
type Builder struct {
	cfg      *config.Config
	conv     pandoc.Converter
	engine   *task.Engine
	recorder metrics.Recorder
	sources  *book.SourceSet
	meta     *book.Metadata
}

// New creates a builder using the real on-disk output sink.
func New(cfg *config.Config, conv pandoc.Converter) *Builder {
	return &Builder{
		cfg:      cfg,
		conv:     conv,
		recorder: metrics.NoopRecorder{},
	}
}

// WithRecorder sets a metrics recorder, propagated into the engine.
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	b.recorder = r
	return b
}

// Prepare resolves sources, loads metadata and registers the three targets.
// It must run before Run; Clean works without it.
func (b *Builder) Prepare() error {
	sources, err := book.NewResolver(&b.cfg.Book).Resolve()
	if err != nil {
		return err
	}
	b.sources = sources

	meta, err := book.LoadMetadata(b.cfg.Book.Metadata)
	if err != nil {
		return err
	}
	b.meta = meta

	slog.Info("Prepared book build",
		"title", meta.Title,
		"chapters", len(sources.Chapters),
		"output", b.cfg.Build.Directory)

	b.engine = task.NewEngine(task.NewDirSink(b.cfg.Build.Directory)).WithRecorder(b.recorder)

	variables := b.stampVariables()
	for _, def := range b.targetDefs(variables) {
		if err := b.engine.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// Run rebuilds the stale subset of the named targets; no names means all
// three. Sibling targets keep building past a failed one.
func (b *Builder) Run(ctx context.Context, targets ...string) error {
	if b.engine == nil {
		return fmt.Errorf("builder is not prepared")
	}
	return b.engine.Run(ctx, targets...)
}

// Clean removes the output directory wholesale, regardless of staleness.
func (b *Builder) Clean() error {
	return task.NewDirSink(b.cfg.Build.Directory).Clean()
}

// ArtifactPath returns the output path of a target.
func (b *Builder) ArtifactPath(target string) string {
	ext := map[string]string{TargetHTML: ".html", TargetEPUB: ".epub", TargetPDF: ".pdf"}[target]
	return filepath.Join(b.cfg.Build.Directory, b.cfg.Build.BaseName+ext)
}

// Sources returns the resolved source set; nil before Prepare.
func (b *Builder) Sources() *book.SourceSet {
	return b.sources
}

// stampVariables derives extra converter metadata from the git work tree the
// content lives in, when there is one.
func (b *Builder) stampVariables() map[string]string {
	stamp := gitinfo.Detect(b.cfg.Book.ContentDir)
	if stamp == nil {
		return nil
	}
	slog.Debug("Stamping build with git revision", "commit", stamp.Short())
	return map[string]string{
		"commit":     stamp.Short(),
		"commitdate": stamp.CommitTime.Format("2006-01-02"),
	}
}

// targetDefs declares the three build rules. Each input set covers every
// file the conversion reads plus the shared metadata file, keeping the
// staleness rule sound.
func (b *Builder) targetDefs(variables map[string]string) []*task.Target {
	chapters := b.sources.ChapterPaths()

	baseInputs := append([]string{}, chapters...)
	baseInputs = append(baseInputs, b.cfg.Book.Metadata)

	styledInputs := append([]string{}, baseInputs...)
	styledInputs = append(styledInputs, b.sources.Styles...)

	epubInputs := append([]string{}, styledInputs...)
	if b.cfg.Book.Cover != "" {
		epubInputs = append(epubInputs, b.cfg.Book.Cover)
	}

	htmlOut := b.ArtifactPath(TargetHTML)
	epubOut := b.ArtifactPath(TargetEPUB)
	pdfOut := b.ArtifactPath(TargetPDF)

	return []*task.Target{
		{
			Name:   TargetHTML,
			Inputs: styledInputs,
			Output: htmlOut,
			Run: func(ctx context.Context) error {
				return b.conv.Convert(ctx, pandoc.Invocation{
					From:         "markdown",
					To:           "html5",
					Standalone:   true,
					Stylesheet:   b.cfg.Book.Stylesheet,
					MetadataFile: b.cfg.Book.Metadata,
					Variables:    variables,
					Output:       htmlOut,
					Inputs:       chapters,
				})
			},
		},
		{
			Name:   TargetEPUB,
			Inputs: epubInputs,
			Output: epubOut,
			Run: func(ctx context.Context) error {
				return b.conv.Convert(ctx, pandoc.Invocation{
					From:         "markdown",
					To:           "epub3",
					Stylesheet:   b.cfg.Book.Stylesheet,
					MetadataFile: b.cfg.Book.Metadata,
					CoverImage:   b.cfg.Book.Cover,
					Variables:    variables,
					Output:       epubOut,
					Inputs:       chapters,
				})
			},
		},
		{
			// The PDF route goes through a typesetting engine that ignores
			// the hypertext stylesheet, so styles are neither flagged nor
			// declared as inputs.
			Name:   TargetPDF,
			Inputs: baseInputs,
			Output: pdfOut,
			Run: func(ctx context.Context) error {
				return b.conv.Convert(ctx, pandoc.Invocation{
					From:         "markdown",
					PDFEngine:    b.cfg.Build.PDFEngine,
					MetadataFile: b.cfg.Book.Metadata,
					Variables:    variables,
					Output:       pdfOut,
					Inputs:       chapters,
				})
			},
		},
	}
}
