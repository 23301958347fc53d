package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// ErrUsage wraps flag parsing failures.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// diagramFlags holds diagram rendering overrides.
type diagramFlags struct {
	fence     string
	imagesDir string
	mmdc      string
	timeout   time.Duration
	workers   int
}

// generateFlags holds all flags for the generate command.
type generateFlags struct {
	common   commonFlags
	output   string
	filename string
	format   string
	template string
	title    string
	pandoc   string
	css      string
	diagrams diagramFlags
	watch    bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addDiagramFlags adds diagram flags to a FlagSet.
func addDiagramFlags(fs *flag.FlagSet, f *diagramFlags) {
	fs.StringVar(&f.fence, "fence", "", "code fence language of diagram blocks (default: mermaid)")
	fs.StringVar(&f.imagesDir, "images-dir", "", "image cache directory inside the output dir (default: images)")
	fs.StringVar(&f.mmdc, "mmdc", "", "Mermaid CLI executable (default: mmdc)")
	fs.DurationVar(&f.timeout, "diagram-timeout", 0, "timeout per diagram render (e.g., 60s, 2m)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel diagram renders (default: 1)")
}

// addGenerateFlags registers every generate flag on fs.
func addGenerateFlags(fs *flag.FlagSet, f *generateFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output directory (default: build)")
	fs.StringVarP(&f.filename, "filename", "f", "", "document file name (default: output)")
	fs.StringVar(&f.format, "format", "", "output format: docx, html, pdf")
	fs.StringVarP(&f.template, "template", "t", "", "reference .docx for styles")
	fs.StringVar(&f.title, "title", "", "html/pdf document title")
	fs.StringVar(&f.pandoc, "pandoc", "", "pandoc executable (default: pandoc)")
	fs.StringVar(&f.css, "css", "", "stylesheet replacing the built-in html/pdf one")
	fs.BoolVar(&f.watch, "watch", false, "regenerate when Markdown files change")

	addCommonFlags(fs, &f.common)
	addDiagramFlags(fs, &f.diagrams)
}

// buildGenerateFlagSet returns the generate FlagSet bound to f.
func buildGenerateFlagSet(f *generateFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	addGenerateFlags(fs, f)
	return fs
}

// parseGenerateFlags parses generate command flags and returns positional args.
func parseGenerateFlags(args []string, stderr io.Writer) (*generateFlags, []string, error) {
	f := &generateFlags{}
	fs := buildGenerateFlagSet(f)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { printGenerateUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printGenerateUsage(stderr)
		}
		return nil, nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if f.common.quiet && f.common.verbose {
		return nil, nil, fmt.Errorf("%w: --quiet and --verbose are mutually exclusive", ErrUsage)
	}
	return f, fs.Args(), nil
}
