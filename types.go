package md2docx

import (
	"time"

	"github.com/alnah/go-md2docx/internal/collect"
	"github.com/alnah/go-md2docx/internal/diagram"
	"github.com/alnah/go-md2docx/internal/docconv"
)

// Format is an output document format.
type Format = docconv.Format

// Supported output formats.
const (
	FormatDOCX = docconv.FormatDOCX
	FormatHTML = docconv.FormatHTML
	FormatPDF  = docconv.FormatPDF
)

// Renderer turns one diagram source file into one PNG file.
type Renderer = diagram.Renderer

// Converter turns combined.md into the final document.
type Converter = docconv.Converter

// Job is the conversion request handed to a Converter.
type Job = docconv.Job

// DiagramSummary reports what the diagram pipeline did during one run.
type DiagramSummary = diagram.Summary

// Skipped is a Markdown file left out of the combined document.
type Skipped = collect.Skipped

// Artifact names inside the output directory.
const (
	OriginalName = "combined-original.md"
	CombinedName = "combined.md"
	scratchName  = ".scratch"
)

// Input describes one generation.
type Input struct {
	Root      string // Directory scanned for Markdown files
	OutputDir string // Build directory, created if missing
	Filename  string // Document name, the format extension is added if missing
	Format    Format // Empty means docx
	Template  string // Reference document for docx, ignored when missing
	Title     string // html/pdf title, defaults to the filename
}

// Result describes a completed generation.
type Result struct {
	Output   string          // Final document path
	Original string          // combined-original.md path
	Combined string          // combined.md path
	Files    []string        // Collected files, relative to Root, in order
	Skipped  []Skipped       // Files left out (unreadable, not UTF-8)
	Diagrams *DiagramSummary // Diagram pipeline outcome
	Template string          // Template actually passed to the converter
}

// MermaidSettings configures the default Mermaid CLI renderer.
// Zero values keep the renderer defaults.
type MermaidSettings struct {
	Binary     string
	Theme      string
	Background string
	Scale      int
	Width      int
	Height     int
	Timeout    time.Duration
}
