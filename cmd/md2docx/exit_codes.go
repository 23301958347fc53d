package main

import (
	"errors"
	"os"

	md2docx "github.com/alnah/go-md2docx"
	"github.com/alnah/go-md2docx/internal/config"
	"github.com/alnah/go-md2docx/internal/docconv"
	"github.com/alnah/go-md2docx/internal/fileutil"
	"github.com/alnah/go-md2docx/internal/hints"
	"github.com/alnah/go-md2docx/internal/process"
)

// Exit codes for the md2docx CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess   = 0 // Document generated
	ExitGeneral   = 1 // General/unexpected error
	ExitUsage     = 2 // Invalid flags, config, or validation
	ExitIO        = 3 // Source tree, output directory or image store
	ExitConverter = 4 // pandoc, browser or other converter failure
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Converter errors (exit 4) first: they may wrap I/O errors.
	if errors.Is(err, md2docx.ErrConversion) ||
		errors.Is(err, docconv.ErrConverterFailed) ||
		errors.Is(err, docconv.ErrBrowserConnect) {
		return ExitConverter
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, md2docx.ErrInvalidFormat) ||
		errors.Is(err, md2docx.ErrInvalidInput) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, md2docx.ErrRootNotFound) ||
		errors.Is(err, md2docx.ErrNoMarkdown) ||
		errors.Is(err, md2docx.ErrOutputDir) ||
		errors.Is(err, md2docx.ErrStoreIO) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	var cfgErr *configError
	switch {
	case errors.As(err, &cfgErr) && errors.Is(err, config.ErrConfigNotFound):
		if fileutil.IsFilePath(cfgErr.name) {
			return hints.ForConfigNotFound(nil)
		}
		return hints.ForConfigNotFound(config.SearchPaths(cfgErr.name))
	case errors.Is(err, docconv.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, md2docx.ErrConversion) && errors.Is(err, process.ErrCommandNotFound):
		return hints.ForPandoc()
	case errors.Is(err, md2docx.ErrRootNotFound), errors.Is(err, md2docx.ErrNoMarkdown):
		return hints.ForRootNotFound()
	case errors.Is(err, md2docx.ErrOutputDir), errors.Is(err, md2docx.ErrStoreIO):
		return hints.ForOutputDirectory()
	}
	return ""
}
