package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Book    BookConfig    `yaml:"book"`
	Build   BuildConfig   `yaml:"build"`
	Lint    LintConfig    `yaml:"lint"`
	Links   LinksConfig   `yaml:"links"`
	Preview PreviewConfig `yaml:"preview"`
}

// BookConfig describes where the book's inputs live.
type BookConfig struct {
	ContentDir string `yaml:"content_dir"`         // Ordered chapter files (*.md)
	StylesDir  string `yaml:"styles_dir"`          // Stylesheets and fonts
	ImagesDir  string `yaml:"images_dir"`          // Figures and the cover
	Cover      string `yaml:"cover,omitempty"`     // Cover image path, used by the EPUB target
	Metadata   string `yaml:"metadata"`            // Publication metadata file
	Stylesheet string `yaml:"stylesheet,omitempty"` // Stylesheet applied to HTML/EPUB
}

// BuildConfig controls the output directory and the external converter.
type BuildConfig struct {
	Directory string `yaml:"directory"`            // Output directory, removed wholesale by clean
	Pandoc    string `yaml:"pandoc,omitempty"`     // Converter binary name or path
	PDFEngine string `yaml:"pdf_engine,omitempty"` // Typesetting engine for the PDF target
	BaseName  string `yaml:"base_name,omitempty"`  // Artifact base name (book -> book.html etc.)
}

// LintConfig describes the external prose linter gate.
type LintConfig struct {
	Command string   `yaml:"command,omitempty"` // Linter binary, e.g. "vale"
	Args    []string `yaml:"args,omitempty"`    // Extra arguments before the content path
}

// LinksConfig controls the link reachability gate.
type LinksConfig struct {
	RequestTimeout string   `yaml:"request_timeout,omitempty"` // Per-request HTTP timeout
	MaxConcurrent  int      `yaml:"max_concurrent,omitempty"`  // Concurrent URL checks
	CachePath      string   `yaml:"cache_path,omitempty"`      // SQLite cache location
	CacheTTL       string   `yaml:"cache_ttl,omitempty"`       // How long a URL verdict stays valid
	Exclude        []string `yaml:"exclude,omitempty"`         // URL prefixes to skip
}

// PreviewConfig controls the preview server.
type PreviewConfig struct {
	Port              int    `yaml:"port,omitempty"`
	LinkCheckInterval string `yaml:"link_check_interval,omitempty"` // Periodic link re-check, empty disables
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists; missing files are fine.
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

// applyDefaults fills in defaults for anything the file left unset.
func (c *Config) applyDefaults() {
	if c.Book.ContentDir == "" {
		c.Book.ContentDir = "content"
	}
	if c.Book.StylesDir == "" {
		c.Book.StylesDir = "styles"
	}
	if c.Book.ImagesDir == "" {
		c.Book.ImagesDir = "images"
	}
	if c.Book.Metadata == "" {
		c.Book.Metadata = "metadata.yaml"
	}
	if c.Build.Directory == "" {
		c.Build.Directory = "build"
	}
	if c.Build.Pandoc == "" {
		c.Build.Pandoc = "pandoc"
	}
	if c.Build.PDFEngine == "" {
		c.Build.PDFEngine = "xelatex"
	}
	if c.Build.BaseName == "" {
		c.Build.BaseName = "book"
	}
	if c.Lint.Command == "" {
		c.Lint.Command = "vale"
	}
	if c.Links.RequestTimeout == "" {
		c.Links.RequestTimeout = "10s"
	}
	if c.Links.MaxConcurrent <= 0 {
		c.Links.MaxConcurrent = 10
	}
	if c.Links.CachePath == "" {
		c.Links.CachePath = ".bookbuilder/linkcache.db"
	}
	if c.Links.CacheTTL == "" {
		c.Links.CacheTTL = "24h"
	}
	if c.Preview.Port <= 0 {
		c.Preview.Port = 1313
	}
}

const exampleConfig = `# bookbuilder configuration
book:
  content_dir: content
  styles_dir: styles
  images_dir: images
  cover: images/cover.png
  metadata: metadata.yaml
  stylesheet: styles/book.css

build:
  directory: build
  pandoc: pandoc
  pdf_engine: xelatex
  base_name: book

lint:
  command: vale
  args: []

links:
  request_timeout: 10s
  max_concurrent: 10
  cache_path: .bookbuilder/linkcache.db
  cache_ttl: 24h
  exclude: []

preview:
  port: 1313
  link_check_interval: ""
`

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
