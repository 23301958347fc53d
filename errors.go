package md2docx

import (
	"errors"

	"github.com/alnah/go-md2docx/internal/collect"
	"github.com/alnah/go-md2docx/internal/diagram"
)

// Sentinel errors for document generation.
var (
	ErrRootNotFound  = errors.New("source directory not found")
	ErrNoMarkdown    = collect.ErrNoMarkdown
	ErrInvalidFormat = errors.New("invalid output format")
	ErrInvalidInput  = errors.New("invalid input")
	ErrOutputDir     = errors.New("cannot write output directory")
	ErrConversion    = errors.New("document conversion failed")

	// ErrStoreIO is returned when the diagram image store cannot be written.
	ErrStoreIO = diagram.ErrStoreIO
)
