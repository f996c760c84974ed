package build

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

const goodArtifact = `<!DOCTYPE html>
<html lang="en">
<head>
  <title>Test Book</title>
  <link rel="stylesheet" href="../styles/book.css" />
</head>
<body>
  <h1>Introduction</h1>
  <p>Welcome.</p>
  <h2>A subsection</h2>
  <h1>Setting Up</h1>
  <p>Install things.</p>
</body>
</html>
`

func TestVerifyHTMLArtifact_HappyPath(t *testing.T) {
	cfg := bookFixture(t)
	b := New(cfg, &stubConverter{artifact: []byte(goodArtifact)})
	require.NoError(t, b.Prepare())
	require.NoError(t, b.Run(context.Background(), TargetHTML))

	require.NoError(t, b.VerifyHTMLArtifact())
}

func TestVerifyHTMLArtifact_MissingStylesheetReference(t *testing.T) {
	cfg := bookFixture(t)
	artifact := `<html><head></head><body><h1>Introduction</h1><h1>Setting Up</h1></body></html>`
	b := New(cfg, &stubConverter{artifact: []byte(artifact)})
	require.NoError(t, b.Prepare())
	require.NoError(t, b.Run(context.Background(), TargetHTML))

	err := b.VerifyHTMLArtifact()
	require.Error(t, err)
	require.Contains(t, err.Error(), "stylesheet")
}

func TestVerifyHTMLArtifact_ChaptersOutOfOrder(t *testing.T) {
	cfg := bookFixture(t)
	artifact := `<html><head><link rel="stylesheet" href="book.css"></head>` +
		`<body><h1>Setting Up</h1><h1>Introduction</h1></body></html>`
	b := New(cfg, &stubConverter{artifact: []byte(artifact)})
	require.NoError(t, b.Prepare())
	require.NoError(t, b.Run(context.Background(), TargetHTML))

	err := b.VerifyHTMLArtifact()
	require.Error(t, err)
	require.Contains(t, err.Error(), "out of order")
}

func TestVerifyHTMLArtifact_MissingArtifact(t *testing.T) {
	cfg := bookFixture(t)
	b := New(cfg, &stubConverter{})
	require.NoError(t, b.Prepare())

	require.Error(t, b.VerifyHTMLArtifact())
}
