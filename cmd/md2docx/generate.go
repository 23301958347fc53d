package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	md2docx "github.com/alnah/go-md2docx"
	"github.com/alnah/go-md2docx/internal/config"
	"github.com/alnah/go-md2docx/internal/fileutil"
	"github.com/alnah/go-md2docx/internal/hints"
	"github.com/alnah/go-md2docx/internal/process"
	"github.com/alnah/go-md2docx/internal/render"
	"github.com/alnah/go-md2docx/internal/watch"
)

// defaultRoot is scanned when no source directory is given.
const defaultRoot = "."

// runGenerate parses flags, resolves configuration and builds the document,
// then keeps rebuilding on changes when --watch is set.
func runGenerate(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseGenerateFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: expected one source directory, got %d", ErrUsage, len(positional))
	}
	root := defaultRoot
	if len(positional) == 1 {
		root = positional[0]
	}

	cfg, err := resolveConfig(flags, env)
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common)
	gen := env.NewGenerator(generatorOptions(cfg, logger)...)
	defer func() { _ = gen.Close() }()

	in := md2docx.Input{
		Root:      root,
		OutputDir: cfg.Output.Dir,
		Filename:  cfg.Output.Filename,
		Format:    md2docx.Format(cfg.Output.Format),
		Template:  cfg.Pandoc.Template,
		Title:     cfg.Output.Title,
	}
	if in.Template != "" && !fileutil.FileExists(in.Template) {
		if !flags.common.quiet {
			fmt.Fprintf(env.Stderr, "warning: template %s not found, generating without it%s\n", in.Template, hints.ForTemplateNotFound())
		}
		in.Template = ""
	}

	res, err := gen.Generate(ctx, in)
	if err != nil && !flags.watch {
		return err
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	} else {
		printResult(env.Stdout, res, flags.common.quiet)
	}

	if !flags.watch {
		return nil
	}
	return watchAndRegenerate(ctx, gen, in, logger, env, flags.common.quiet)
}

// resolveConfig applies, in increasing precedence: defaults, the config
// file, MD2DOCX_* variables, then flags.
func resolveConfig(flags *generateFlags, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig(env.Getenv)
	if !flags.common.quiet {
		warnUnknownEnvVars(env.Stderr, env.Environ())
	}

	cfg, err := loadConfigOrDefault(flags.common.config, envCfg)
	if err != nil {
		return nil, err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadConfigOrDefault loads the config named by the flag, or by
// MD2DOCX_CONFIG, or returns the defaults.
func loadConfigOrDefault(name string, envCfg *envConfig) (*config.Config, error) {
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(name)
	if err != nil {
		return nil, &configError{name: name, err: err}
	}
	return cfg, nil
}

// configError remembers which config name failed so the hint can list
// the searched locations.
type configError struct {
	name string
	err  error
}

func (e *configError) Error() string { return "loading config: " + e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// mergeFlags overrides cfg with explicitly set flags (non-zero values).
func mergeFlags(flags *generateFlags, cfg *config.Config) {
	if flags.output != "" {
		cfg.Output.Dir = flags.output
	}
	if flags.filename != "" {
		cfg.Output.Filename = flags.filename
	}
	if flags.format != "" {
		cfg.Output.Format = strings.ToLower(flags.format)
	}
	if flags.title != "" {
		cfg.Output.Title = flags.title
	}
	if flags.template != "" {
		cfg.Pandoc.Template = flags.template
	}
	if flags.pandoc != "" {
		cfg.Pandoc.Binary = flags.pandoc
	}
	if flags.css != "" {
		cfg.HTML.CSS = flags.css
	}

	d := flags.diagrams
	if d.fence != "" {
		cfg.Diagrams.Fence = d.fence
	}
	if d.imagesDir != "" {
		cfg.Diagrams.ImagesDir = d.imagesDir
	}
	if d.mmdc != "" {
		cfg.Diagrams.Binary = d.mmdc
	}
	if d.timeout > 0 {
		cfg.Diagrams.Timeout = config.Duration(d.timeout)
	}
	if d.workers > 0 {
		cfg.Diagrams.Workers = d.workers
	}
}

// generatorOptions maps the resolved configuration onto generator options.
func generatorOptions(cfg *config.Config, logger *slog.Logger) []md2docx.Option {
	return []md2docx.Option{
		md2docx.WithLogger(logger),
		md2docx.WithMermaid(md2docx.MermaidSettings{
			Binary:     cfg.Diagrams.Binary,
			Theme:      cfg.Diagrams.Theme,
			Background: cfg.Diagrams.Background,
			Scale:      cfg.Diagrams.Scale,
			Width:      cfg.Diagrams.Width,
			Height:     cfg.Diagrams.Height,
			Timeout:    time.Duration(cfg.Diagrams.Timeout),
		}),
		md2docx.WithFence(cfg.Diagrams.Fence),
		md2docx.WithImagesDir(cfg.Diagrams.ImagesDir),
		md2docx.WithWorkers(cfg.Diagrams.Workers),
		md2docx.WithPandocBinary(cfg.Pandoc.Binary),
		md2docx.WithHighlightStyle(cfg.HTML.HighlightStyle),
		md2docx.WithStylesheet(cfg.HTML.CSS),
		md2docx.WithPDFTimeout(time.Duration(cfg.PDF.Timeout)),
	}
}

// newLogger returns a text logger on w: warn level with --quiet, debug
// with --verbose, info otherwise.
func newLogger(w io.Writer, f commonFlags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case f.quiet:
		level = slog.LevelWarn
	case f.verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// watchAndRegenerate rebuilds after every burst of Markdown changes until
// ctx is canceled. Build errors are printed and watching continues.
func watchAndRegenerate(ctx context.Context, gen generator, in md2docx.Input, logger *slog.Logger, env *Environment, quiet bool) error {
	w, err := watch.New(in.Root, watch.WithIgnore(in.OutputDir), watch.WithLogger(logger))
	if err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(env.Stdout, "Watching %s for changes (Ctrl+C to stop)\n", in.Root)
	}

	return w.Run(ctx, func(ctx context.Context, changed []string) error {
		if !quiet {
			fmt.Fprintf(env.Stdout, "\nChanged: %s\n", strings.Join(relativePaths(in.Root, changed), ", "))
		}
		res, err := gen.Generate(ctx, in)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
			return nil
		}
		printResult(env.Stdout, res, quiet)
		return nil
	})
}

func relativePaths(root string, paths []string) []string {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return paths
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.ToSlash(fileutil.RelativeTo(absRoot, p))
	}
	return out
}

// printResult prints the generation summary. Diagram failures are listed
// with their block index so they can be found in combined-original.md.
func printResult(w io.Writer, res *md2docx.Result, quiet bool) {
	if quiet || res == nil {
		return
	}

	fmt.Fprintf(w, "Collected %d file(s)", len(res.Files))
	if n := len(res.Skipped); n > 0 {
		fmt.Fprintf(w, ", skipped %d", n)
	}
	fmt.Fprintln(w)
	for _, s := range res.Skipped {
		fmt.Fprintf(w, "  skipped %s: %s\n", s.Path, s.Reason)
	}

	if d := res.Diagrams; d != nil {
		fmt.Fprintf(w, "Diagrams: %d found, %d generated, %d cached, %d failed\n", d.Blocks, d.Generated, d.Cached, d.Failed)
		for _, f := range d.Failures {
			fmt.Fprintf(w, "  FAILED diagram %d (%s): %s\n", f.Index, f.Identity, f.Reason)
		}
		if hint := failureHint(d); hint != "" {
			fmt.Fprintf(w, "%s\n", strings.TrimPrefix(hint, "\n"))
		}
		if n := len(d.Removed); n > 0 {
			fmt.Fprintf(w, "Removed %d unused image(s)\n", n)
		}
	}

	fmt.Fprintf(w, "Created %s\n", res.Output)
}

// failureHint returns a hint when render failures share a known cause.
func failureHint(d *md2docx.DiagramSummary) string {
	for _, f := range d.Failures {
		switch {
		case strings.Contains(f.Reason, process.ErrCommandNotFound.Error()):
			return hints.ForMermaidCLI()
		case strings.Contains(f.Reason, render.ErrTimeout.Error()):
			return hints.ForTimeout()
		}
	}
	return ""
}
