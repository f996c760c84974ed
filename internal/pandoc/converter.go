// Package pandoc wraps the external document converter. The converter is an
// opaque collaborator: this package builds its argument list, runs it, and
// propagates its exit status. It never inspects or repairs partial output.
package pandoc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
)

// Converter abstracts the converter invocation so build rules stay testable
// with a stubbed implementation.
type Converter interface {
	Convert(ctx context.Context, inv Invocation) error
}

// Invocation describes a single conversion: formats, flags, inputs and the
// output artifact. Flag placement is deterministic so invocations are
// reproducible and comparable in tests.
type Invocation struct {
	From         string            // Input format, e.g. "markdown"
	To           string            // Output format, e.g. "html5", "epub3"; empty lets the converter infer from the output path
	Standalone   bool              // Wrap output in a full standalone document
	Stylesheet   string            // --css value; not applied on the PDF route
	MetadataFile string            // Publication metadata file
	CoverImage   string            // --epub-cover-image, EPUB only
	PDFEngine    string            // --pdf-engine, PDF only
	Variables    map[string]string // Extra --metadata key=value pairs
	Output       string            // Artifact path
	Inputs       []string          // Chapter files in declared order
}

// Args renders the invocation as a converter argument list.
func (inv Invocation) Args() []string {
	var args []string
	if inv.From != "" {
		args = append(args, "-f", inv.From)
	}
	if inv.To != "" {
		args = append(args, "-t", inv.To)
	}
	if inv.Standalone {
		args = append(args, "--standalone")
	}
	if inv.Stylesheet != "" {
		args = append(args, "--css", inv.Stylesheet)
	}
	if inv.MetadataFile != "" {
		args = append(args, "--metadata-file", inv.MetadataFile)
	}
	if inv.CoverImage != "" {
		args = append(args, "--epub-cover-image", inv.CoverImage)
	}
	if inv.PDFEngine != "" {
		args = append(args, "--pdf-engine", inv.PDFEngine)
	}
	if len(inv.Variables) > 0 {
		keys := make([]string, 0, len(inv.Variables))
		for k := range inv.Variables {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			args = append(args, "--metadata", k+"="+inv.Variables[k])
		}
	}
	args = append(args, "-o", inv.Output)
	args = append(args, inv.Inputs...)
	return args
}

// ExecConverter runs the real converter binary.
type ExecConverter struct {
	binary string
}

// NewExecConverter creates a converter around the given binary name or path.
func NewExecConverter(binary string) *ExecConverter {
	return &ExecConverter{binary: binary}
}

// Convert runs the converter. Its stdout/stderr stream through so tool
// diagnostics reach the operator verbatim. A non-zero exit fails the target;
// whatever the converter left at the output path stays there.
func (c *ExecConverter) Convert(ctx context.Context, inv Invocation) error {
	args := inv.Args()
	slog.Info("Running converter", "binary", c.binary, "output", inv.Output, "inputs", len(inv.Inputs))
	slog.Debug("Converter arguments", "args", args)

	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s command failed: %w", c.binary, err)
	}
	return nil
}
