package book

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeMetadata(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metadata.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMetadata_TypedFields(t *testing.T) {
	path := writeMetadata(t, `title: The Practice of Everything
subtitle: A Field Guide
author:
  - Ada Example
  - Grace Sample
lang: en-US
date: 2026-08-01
rights: CC BY-SA 4.0
identifier: urn:isbn:978-0-00-000000-0
`)

	meta, err := LoadMetadata(path)
	require.NoError(t, err)
	require.Equal(t, "The Practice of Everything", meta.Title)
	require.Equal(t, []string{"Ada Example", "Grace Sample"}, meta.Author)
	require.Equal(t, "en-US", meta.Language)
	require.Equal(t, "urn:isbn:978-0-00-000000-0", meta.Identifier)
	require.Nil(t, meta.Extra)
}

func TestLoadMetadata_SingleAuthorString(t *testing.T) {
	path := writeMetadata(t, "title: T\nauthor: Solo Writer\n")

	meta, err := LoadMetadata(path)
	require.NoError(t, err)
	require.Equal(t, []string{"Solo Writer"}, meta.Author)
}

func TestLoadMetadata_ExtraKeysPreserved(t *testing.T) {
	path := writeMetadata(t, "title: T\ntoc-depth: 2\n")

	meta, err := LoadMetadata(path)
	require.NoError(t, err)
	require.Equal(t, 2, meta.Extra["toc-depth"])
}

func TestLoadMetadata_MissingTitle(t *testing.T) {
	path := writeMetadata(t, "author: Nobody\n")

	_, err := LoadMetadata(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing a title")
}

func TestLoadMetadata_InvalidLanguageTag(t *testing.T) {
	path := writeMetadata(t, "title: T\nlang: not a tag\n")

	_, err := LoadMetadata(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid language tag")
}

func TestLoadMetadata_MissingFile(t *testing.T) {
	_, err := LoadMetadata(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
