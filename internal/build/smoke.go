package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/bookbuilder/internal/book"
)

// VerifyHTMLArtifact is the structural smoke check run by CI after an HTML
// build: the artifact must be a standalone document that references the
// configured stylesheet and contains every chapter's first heading in
// declared chapter order.
func (b *Builder) VerifyHTMLArtifact() error {
	if b.sources == nil {
		return fmt.Errorf("builder is not prepared")
	}

	path := b.ArtifactPath(TargetHTML)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open HTML artifact: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc, err := html.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse HTML artifact: %w", err)
	}

	stylesheets, headings := collectDocumentFacts(doc)

	if b.cfg.Book.Stylesheet != "" {
		want := filepath.Base(b.cfg.Book.Stylesheet)
		if !referencesStylesheet(stylesheets, want) {
			return fmt.Errorf("HTML artifact does not reference stylesheet %s", want)
		}
	}

	var expected []string
	for _, ch := range b.sources.Chapters {
		h, err := book.FirstHeading(ch.Path)
		if err != nil {
			return err
		}
		if h != "" {
			expected = append(expected, h)
		}
	}

	if !isOrderedSubsequence(expected, headings) {
		return fmt.Errorf("HTML artifact is missing chapter headings or has them out of order (want %v)", expected)
	}

	return nil
}

// collectDocumentFacts walks the parsed document once, gathering stylesheet
// hrefs and heading texts in document order.
func collectDocumentFacts(doc *html.Node) (stylesheets, headings []string) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "link":
				if linkRel(n) == "stylesheet" {
					if href := attr(n, "href"); href != "" {
						stylesheets = append(stylesheets, href)
					}
				}
			case "h1", "h2", "h3", "h4", "h5", "h6":
				if text := nodeText(n); text != "" {
					headings = append(headings, text)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return stylesheets, headings
}

func linkRel(n *html.Node) string {
	return strings.ToLower(attr(n, "rel"))
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func referencesStylesheet(hrefs []string, base string) bool {
	for _, href := range hrefs {
		if filepath.Base(href) == base {
			return true
		}
	}
	return false
}

// isOrderedSubsequence reports whether want appears within have, in order,
// allowing extra headings (sections, subsections) in between.
func isOrderedSubsequence(want, have []string) bool {
	i := 0
	for _, h := range have {
		if i < len(want) && h == want[i] {
			i++
		}
	}
	return i == len(want)
}
