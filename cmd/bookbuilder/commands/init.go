package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/bookbuilder/internal/config"
)

// InitCmd scaffolds a new book: configuration, metadata, a first chapter and
// a starter stylesheet. Existing files are never overwritten unless --force.
type InitCmd struct {
	Force bool `help:"Overwrite existing files"`
}

const starterChapter = `# Introduction

Welcome to your book. Chapters are Markdown files in the content directory,
built in file-name order; keep the numeric prefixes.
`

const starterStylesheet = `body {
  max-width: 44em;
  margin: 0 auto;
  padding: 0 1em;
  font-family: Georgia, serif;
  line-height: 1.6;
}
`

const starterMetadata = `title: My Book
author: Your Name
lang: en
date: ""
rights: ""
identifier: ""
`

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}

	files := map[string]string{
		filepath.Join("content", "01-introduction.md"): starterChapter,
		filepath.Join("styles", "book.css"):            starterStylesheet,
		"metadata.yaml":                                starterMetadata,
	}
	for path, content := range files {
		if err := writeSkeletonFile(path, content, i.Force); err != nil {
			return err
		}
	}
	if err := os.MkdirAll("images", 0o755); err != nil {
		return fmt.Errorf("failed to create images directory: %w", err)
	}

	slog.Info("Book skeleton created", "config", root.Config)
	fmt.Println("Initialized a new book. Add a cover at images/cover.png, then run 'bookbuilder all'.")
	return nil
}

func writeSkeletonFile(path, content string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		slog.Info("Keeping existing file", "path", path)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
