// Package render invokes the Mermaid CLI to turn diagram sources into PNG images.
package render

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-md2docx/internal/process"
)

// ErrTimeout indicates a single render exceeded its time budget.
var ErrTimeout = errors.New("diagram render timed out")

// Default rendering options. They favour crisp images over small files.
const (
	DefaultBinary     = "mmdc"
	DefaultTheme      = "default"
	DefaultBackground = "white"
	DefaultScale      = 2
	DefaultWidth      = 1200
	DefaultHeight     = 800
	DefaultTimeout    = 60 * time.Second
)

// MermaidCLI renders diagrams by running mmdc once per diagram.
// It implements diagram.Renderer.
type MermaidCLI struct {
	binary     string
	theme      string
	background string
	scale      int
	width      int
	height     int
	timeout    time.Duration
	runner     process.CommandRunner
}

// Option configures a MermaidCLI.
type Option func(*MermaidCLI)

// WithBinary sets the mmdc executable name or path.
func WithBinary(path string) Option {
	return func(m *MermaidCLI) {
		if path != "" {
			m.binary = path
		}
	}
}

// WithTheme sets the Mermaid theme (default, dark, forest, neutral).
func WithTheme(theme string) Option {
	return func(m *MermaidCLI) {
		if theme != "" {
			m.theme = theme
		}
	}
}

// WithBackground sets the image background color.
func WithBackground(color string) Option {
	return func(m *MermaidCLI) {
		if color != "" {
			m.background = color
		}
	}
}

// WithScale sets the device scale factor.
func WithScale(scale int) Option {
	return func(m *MermaidCLI) {
		if scale > 0 {
			m.scale = scale
		}
	}
}

// WithViewport sets the page width and height in pixels.
func WithViewport(width, height int) Option {
	return func(m *MermaidCLI) {
		if width > 0 {
			m.width = width
		}
		if height > 0 {
			m.height = height
		}
	}
}

// WithTimeout bounds each render. Zero or negative keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(m *MermaidCLI) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithRunner replaces the command runner (used by tests).
func WithRunner(r process.CommandRunner) Option {
	return func(m *MermaidCLI) {
		if r != nil {
			m.runner = r
		}
	}
}

// NewMermaidCLI creates a renderer with the default options.
func NewMermaidCLI(opts ...Option) *MermaidCLI {
	m := &MermaidCLI{
		binary:     DefaultBinary,
		theme:      DefaultTheme,
		background: DefaultBackground,
		scale:      DefaultScale,
		width:      DefaultWidth,
		height:     DefaultHeight,
		timeout:    DefaultTimeout,
		runner:     &process.ExecRunner{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Binary returns the configured executable.
func (m *MermaidCLI) Binary() string {
	return m.binary
}

// Args returns the mmdc arguments for one render.
func (m *MermaidCLI) Args(inputPath, outputPath string) []string {
	return []string{
		"-i", inputPath,
		"-o", outputPath,
		"--theme", m.theme,
		"--backgroundColor", m.background,
		"--scale", strconv.Itoa(m.scale),
		"--width", strconv.Itoa(m.width),
		"--height", strconv.Itoa(m.height),
	}
}

// Render runs mmdc on inputPath, writing the image to outputPath.
func (m *MermaidCLI) Render(ctx context.Context, inputPath, outputPath string) error {
	rctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	_, stderr, err := m.runner.Run(rctx, "", m.binary, m.Args(inputPath, outputPath)...)
	if err == nil {
		return nil
	}

	// Only the per-render deadline is a timeout; parent cancellation is not.
	if ctx.Err() == nil && errors.Is(rctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, m.timeout)
	}
	if msg := firstLine(stderr); msg != "" {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return err
}

// firstLine returns the first non-blank line of s, trimmed.
func firstLine(s string) string {
	for line := range strings.Lines(s) {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// Version runs "mmdc --version" and returns its trimmed output.
func (m *MermaidCLI) Version(ctx context.Context) (string, error) {
	vctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stdout, _, err := m.runner.Run(vctx, "", m.binary, "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}
