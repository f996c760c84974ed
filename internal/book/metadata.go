package book

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Metadata holds the publication metadata the converter embeds into every
// target. The field set mirrors what pandoc's metadata file understands; extra
// keys are preserved so authors can add converter variables without code
// changes here.
type Metadata struct {
	Title      string   `yaml:"title"`
	Subtitle   string   `yaml:"subtitle,omitempty"`
	Author     []string `yaml:"author,omitempty"`
	Language   string   `yaml:"lang,omitempty"`
	Date       string   `yaml:"date,omitempty"`
	Rights     string   `yaml:"rights,omitempty"`
	Identifier string   `yaml:"identifier,omitempty"`

	// Extra carries any keys beyond the typed set, round-tripped untouched.
	Extra map[string]any `yaml:"-"`
}

// LoadMetadata reads and validates the publication metadata file.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	for _, key := range []string{"title", "subtitle", "author", "lang", "date", "rights", "identifier"} {
		delete(raw, key)
	}
	if len(raw) > 0 {
		meta.Extra = raw
	}

	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Validate checks the invariants every target relies on.
func (m *Metadata) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("metadata is missing a title")
	}
	if m.Language != "" {
		if _, err := language.Parse(m.Language); err != nil {
			return fmt.Errorf("metadata has invalid language tag %q: %w", m.Language, err)
		}
	}
	return nil
}

// UnmarshalYAML accepts both a single author string and a list of authors,
// since both forms are common in hand-written metadata files.
func (m *Metadata) UnmarshalYAML(value *yaml.Node) error {
	type plain struct {
		Title      string    `yaml:"title"`
		Subtitle   string    `yaml:"subtitle"`
		Author     yaml.Node `yaml:"author"`
		Language   string    `yaml:"lang"`
		Date       string    `yaml:"date"`
		Rights     string    `yaml:"rights"`
		Identifier string    `yaml:"identifier"`
	}

	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}

	m.Title = p.Title
	m.Subtitle = p.Subtitle
	m.Language = p.Language
	m.Date = p.Date
	m.Rights = p.Rights
	m.Identifier = p.Identifier

	switch p.Author.Kind {
	case 0: // absent
	case yaml.ScalarNode:
		var single string
		if err := p.Author.Decode(&single); err != nil {
			return err
		}
		if single != "" {
			m.Author = []string{single}
		}
	case yaml.SequenceNode:
		if err := p.Author.Decode(&m.Author); err != nil {
			return err
		}
	default:
		return fmt.Errorf("author must be a string or a list of strings")
	}

	return nil
}
