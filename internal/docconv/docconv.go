// Package docconv turns the combined Markdown file into the final document.
//
// Three backends share one interface: Pandoc (docx), goldmark (html) and
// goldmark followed by headless Chrome (pdf). Every backend reads and writes
// inside Job.WorkDir so relative image references resolve.
package docconv

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for document conversion.
var (
	ErrConverterFailed = errors.New("document conversion failed")
	ErrBrowserConnect  = errors.New("failed to connect to browser")
	ErrUnknownFormat   = errors.New("unknown output format")
)

// Format is an output document format.
type Format string

// Supported formats.
const (
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// Formats lists the supported formats in help order.
var Formats = []Format{FormatDOCX, FormatHTML, FormatPDF}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatDOCX, FormatHTML, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q (want docx, html or pdf)", ErrUnknownFormat, s)
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	return string(f)
}

// Job describes one conversion. Input and Output are relative to WorkDir.
// SourceDir is searched for images the Markdown references relative to
// the source tree.
type Job struct {
	WorkDir   string
	Input     string
	Output    string
	SourceDir string
	Template  string // reference document, docx only
	Title     string
}

// Converter produces the final document for a Job.
type Converter interface {
	Convert(ctx context.Context, job Job) error
}

// Closer is implemented by converters holding external resources (a browser).
type Closer interface {
	Close() error
}
