package pandoc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArgs_HTMLInvocation(t *testing.T) {
	inv := Invocation{
		From:         "markdown",
		To:           "html5",
		Standalone:   true,
		Stylesheet:   "styles/book.css",
		MetadataFile: "metadata.yaml",
		Output:       "build/book.html",
		Inputs:       []string{"content/01-intro.md", "content/02-setup.md"},
	}

	require.Equal(t, []string{
		"-f", "markdown",
		"-t", "html5",
		"--standalone",
		"--css", "styles/book.css",
		"--metadata-file", "metadata.yaml",
		"-o", "build/book.html",
		"content/01-intro.md", "content/02-setup.md",
	}, inv.Args())
}

func TestArgs_EPUBInvocationCarriesCover(t *testing.T) {
	inv := Invocation{
		From:         "markdown",
		To:           "epub3",
		Stylesheet:   "styles/book.css",
		MetadataFile: "metadata.yaml",
		CoverImage:   "images/cover.png",
		Output:       "build/book.epub",
		Inputs:       []string{"content/01-intro.md"},
	}

	args := inv.Args()
	require.Contains(t, args, "--epub-cover-image")
	require.Equal(t, "images/cover.png", args[indexOf(t, args, "--epub-cover-image")+1])
	require.NotContains(t, args, "--standalone")
}

func TestArgs_PDFInvocationHasNoStylesheet(t *testing.T) {
	inv := Invocation{
		From:         "markdown",
		PDFEngine:    "xelatex",
		MetadataFile: "metadata.yaml",
		Output:       "build/book.pdf",
		Inputs:       []string{"content/01-intro.md"},
	}

	args := inv.Args()
	require.NotContains(t, args, "--css")
	require.NotContains(t, args, "-t")
	require.Equal(t, "xelatex", args[indexOf(t, args, "--pdf-engine")+1])
}

func TestArgs_VariablesAreSortedAndLast_BeforeOutput(t *testing.T) {
	inv := Invocation{
		From:      "markdown",
		Variables: map[string]string{"commit": "abc123", "builddate": "2026-08-30"},
		Output:    "build/book.html",
		Inputs:    []string{"a.md"},
	}

	require.Equal(t, []string{
		"-f", "markdown",
		"--metadata", "builddate=2026-08-30",
		"--metadata", "commit=abc123",
		"-o", "build/book.html",
		"a.md",
	}, inv.Args())
}

func TestParseVersion(t *testing.T) {
	require.Equal(t, "3.1.9", parseVersion("pandoc 3.1.9\nFeatures: +server +lua\n"))
	require.Equal(t, "3.141592653", parseVersion("XeTeX 3.141592653-2.6-0.999995 (TeX Live 2023)"))
	require.Equal(t, "", parseVersion("no version here"))
}

func indexOf(t *testing.T, args []string, flag string) int {
	t.Helper()
	for i, a := range args {
		if a == flag {
			return i
		}
	}
	t.Fatalf("flag %s not found in %v", flag, args)
	return -1
}
