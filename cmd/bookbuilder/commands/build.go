package commands

import (
	"context"

	"git.home.luguber.info/inful/bookbuilder/internal/build"
	"git.home.luguber.info/inful/bookbuilder/internal/config"
	"git.home.luguber.info/inful/bookbuilder/internal/task"
)

// AllCmd implements the 'all' command.
type AllCmd struct{}

func (a *AllCmd) Run(_ *Global, root *CLI) error {
	b, _, err := newBuilder(root)
	if err != nil {
		return err
	}
	return b.Run(context.Background())
}

// HTMLCmd implements the 'html' command.
type HTMLCmd struct {
	Verify bool `help:"Verify the artifact's structure after building (CI smoke check)"`
}

func (h *HTMLCmd) Run(_ *Global, root *CLI) error {
	b, _, err := newBuilder(root)
	if err != nil {
		return err
	}
	if err := b.Run(context.Background(), build.TargetHTML); err != nil {
		return err
	}
	if h.Verify {
		return b.VerifyHTMLArtifact()
	}
	return nil
}

// EPUBCmd implements the 'epub' command.
type EPUBCmd struct{}

func (e *EPUBCmd) Run(_ *Global, root *CLI) error {
	b, _, err := newBuilder(root)
	if err != nil {
		return err
	}
	return b.Run(context.Background(), build.TargetEPUB)
}

// PDFCmd implements the 'pdf' command.
type PDFCmd struct{}

func (p *PDFCmd) Run(_ *Global, root *CLI) error {
	b, _, err := newBuilder(root)
	if err != nil {
		return err
	}
	return b.Run(context.Background(), build.TargetPDF)
}

// CleanCmd implements the 'clean' command. It only needs the output
// directory, so a missing content tree never blocks cleaning.
type CleanCmd struct{}

func (c *CleanCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	return task.NewDirSink(cfg.Build.Directory).Clean()
}
