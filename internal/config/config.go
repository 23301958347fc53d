// Package config loads and validates the YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-md2docx/internal/docconv"
	"github.com/alnah/go-md2docx/internal/fileutil"
	"github.com/alnah/go-md2docx/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppName names the per-user config directory.
const AppName = "go-md2docx"

// Limits for numeric settings.
const (
	MaxScale        = 10
	MaxViewport     = 10000
	MaxWorkers      = 64
	MaxTimeout      = 10 * time.Minute
	MaxStringLength = 1024
)

// Duration is a time.Duration written as "60s" or "2m" in YAML.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML writes the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config holds all configuration for document generation.
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Diagrams DiagramsConfig `yaml:"diagrams"`
	Pandoc   PandocConfig   `yaml:"pandoc"`
	HTML     HTMLConfig     `yaml:"html"`
	PDF      PDFConfig      `yaml:"pdf"`
}

// OutputConfig defines where and in which format the document is written.
type OutputConfig struct {
	Dir      string `yaml:"dir"`      // Build directory (default: build)
	Filename string `yaml:"filename"` // Document name, extension added if missing
	Format   string `yaml:"format"`   // docx, html or pdf
	Title    string `yaml:"title"`    // HTML/PDF document title
}

// DiagramsConfig defines diagram extraction and rendering.
type DiagramsConfig struct {
	Fence      string   `yaml:"fence"`      // Code fence language tag
	ImagesDir  string   `yaml:"imagesDir"`  // Image store, relative to the output dir
	Binary     string   `yaml:"binary"`     // Mermaid CLI executable
	Theme      string   `yaml:"theme"`      // default, dark, forest, neutral
	Background string   `yaml:"background"` // Image background color
	Scale      int      `yaml:"scale"`
	Width      int      `yaml:"width"`
	Height     int      `yaml:"height"`
	Timeout    Duration `yaml:"timeout"` // Per diagram
	Workers    int      `yaml:"workers"` // Parallel renders, 1 = sequential
}

// PandocConfig defines the docx backend.
type PandocConfig struct {
	Binary   string `yaml:"binary"`
	Template string `yaml:"template"` // Reference .docx for styles
}

// HTMLConfig defines the html backend (also used by pdf).
type HTMLConfig struct {
	HighlightStyle string `yaml:"highlightStyle"` // chroma style name
	CSS            string `yaml:"css"`            // Stylesheet replacing the built-in one
}

// PDFConfig defines the pdf backend.
type PDFConfig struct {
	Timeout Duration `yaml:"timeout"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Dir:      "build",
			Filename: "output",
			Format:   string(docconv.FormatDOCX),
		},
		Diagrams: DiagramsConfig{
			Fence:      "mermaid",
			ImagesDir:  "images",
			Binary:     "mmdc",
			Theme:      "default",
			Background: "white",
			Scale:      2,
			Width:      1200,
			Height:     800,
			Timeout:    Duration(60 * time.Second),
			Workers:    1,
		},
		Pandoc: PandocConfig{Binary: docconv.DefaultPandocBinary},
		HTML:   HTMLConfig{HighlightStyle: docconv.DefaultHighlightStyle},
		PDF:    PDFConfig{Timeout: Duration(docconv.DefaultPDFTimeout)},
	}
}

// Validate checks values that would otherwise fail late, mid-run.
func (c *Config) Validate() error {
	strs := []struct {
		field string
		value string
	}{
		{"output.dir", c.Output.Dir},
		{"output.filename", c.Output.Filename},
		{"output.title", c.Output.Title},
		{"diagrams.fence", c.Diagrams.Fence},
		{"diagrams.imagesDir", c.Diagrams.ImagesDir},
		{"diagrams.binary", c.Diagrams.Binary},
		{"diagrams.theme", c.Diagrams.Theme},
		{"diagrams.background", c.Diagrams.Background},
		{"pandoc.binary", c.Pandoc.Binary},
		{"pandoc.template", c.Pandoc.Template},
		{"html.highlightStyle", c.HTML.HighlightStyle},
		{"html.css", c.HTML.CSS},
	}
	for _, f := range strs {
		if len(f.value) > MaxStringLength {
			return fmt.Errorf("%w: %s (%d chars, max %d)", ErrInvalidValue, f.field, len(f.value), MaxStringLength)
		}
	}

	if c.Output.Format != "" {
		if _, err := docconv.ParseFormat(c.Output.Format); err != nil {
			return fmt.Errorf("%w: output.format: %v", ErrInvalidValue, err)
		}
	}
	if strings.ContainsAny(c.Output.Filename, `/\`) {
		return fmt.Errorf("%w: output.filename: %q must be a file name, not a path", ErrInvalidValue, c.Output.Filename)
	}
	if strings.ContainsAny(c.Diagrams.Fence, " \t\r\n`") {
		return fmt.Errorf("%w: diagrams.fence: %q must be a single word", ErrInvalidValue, c.Diagrams.Fence)
	}
	if d := c.Diagrams.ImagesDir; d != "" {
		if filepath.IsAbs(d) || strings.HasPrefix(filepath.ToSlash(filepath.Clean(d)), "..") {
			return fmt.Errorf("%w: diagrams.imagesDir: %q must stay inside the output directory", ErrInvalidValue, d)
		}
	}

	if err := checkRange("diagrams.scale", c.Diagrams.Scale, 0, MaxScale); err != nil {
		return err
	}
	if err := checkRange("diagrams.width", c.Diagrams.Width, 0, MaxViewport); err != nil {
		return err
	}
	if err := checkRange("diagrams.height", c.Diagrams.Height, 0, MaxViewport); err != nil {
		return err
	}
	if err := checkRange("diagrams.workers", c.Diagrams.Workers, 0, MaxWorkers); err != nil {
		return err
	}
	if err := checkTimeout("diagrams.timeout", c.Diagrams.Timeout); err != nil {
		return err
	}
	return checkTimeout("pdf.timeout", c.PDF.Timeout)
}

func checkRange(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%w: %s: must be between %d and %d, got %d", ErrInvalidValue, field, lo, hi, v)
	}
	return nil
}

func checkTimeout(field string, d Duration) error {
	if d < 0 || time.Duration(d) > MaxTimeout {
		return fmt.Errorf("%w: %s: must be between 0 and %s, got %s", ErrInvalidValue, field, MaxTimeout, time.Duration(d))
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields missing from the file keep their DefaultConfig value.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Marshal renders cfg as YAML, for "md2docx config" output.
func Marshal(cfg *Config) ([]byte, error) {
	return yamlutil.Marshal(cfg)
}

// SearchPaths lists where a config name is looked up, in order:
// the current directory, then <user config dir>/go-md2docx/, each with
// .yaml before .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file from SearchPaths.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
