package md2docx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/alnah/go-md2docx/internal/collect"
	"github.com/alnah/go-md2docx/internal/diagram"
	"github.com/alnah/go-md2docx/internal/docconv"
	"github.com/alnah/go-md2docx/internal/fileutil"
	"github.com/alnah/go-md2docx/internal/render"
)

const outputDirPermissions = 0o750

// Generator runs the collect, diagram and convert stages.
// A Generator may be reused across runs (watch mode); it is not safe for
// concurrent Generate calls.
type Generator struct {
	logger         *slog.Logger
	renderer       Renderer
	mermaid        MermaidSettings
	fence          string
	imagesDir      string
	workers        int
	pandocBinary   string
	highlightStyle string
	stylesheet     string
	pdfTimeout     time.Duration

	mu         sync.Mutex
	converters map[Format]Converter
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger shared by every stage.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithRenderer replaces the Mermaid CLI renderer.
func WithRenderer(r Renderer) Option {
	return func(g *Generator) {
		g.renderer = r
	}
}

// WithMermaid configures the default Mermaid CLI renderer.
func WithMermaid(s MermaidSettings) Option {
	return func(g *Generator) {
		g.mermaid = s
	}
}

// WithConverter replaces the converter used for format.
func WithConverter(format Format, c Converter) Option {
	return func(g *Generator) {
		g.converters[format] = c
	}
}

// WithFence sets the code fence language tag of diagram blocks.
func WithFence(fence string) Option {
	return func(g *Generator) {
		if fence != "" {
			g.fence = fence
		}
	}
}

// WithImagesDir sets the image store, relative to the output directory.
func WithImagesDir(dir string) Option {
	return func(g *Generator) {
		if dir != "" {
			g.imagesDir = dir
		}
	}
}

// WithWorkers sets how many diagrams render in parallel.
func WithWorkers(n int) Option {
	return func(g *Generator) {
		g.workers = n
	}
}

// WithPandocBinary sets the pandoc executable used for docx.
func WithPandocBinary(binary string) Option {
	return func(g *Generator) {
		g.pandocBinary = binary
	}
}

// WithHighlightStyle sets the chroma style for html and pdf code blocks.
func WithHighlightStyle(style string) Option {
	return func(g *Generator) {
		g.highlightStyle = style
	}
}

// WithStylesheet replaces the built-in html/pdf stylesheet with the CSS
// file at path.
func WithStylesheet(path string) Option {
	return func(g *Generator) {
		g.stylesheet = path
	}
}

// WithPDFTimeout bounds page load and printing for pdf output.
func WithPDFTimeout(d time.Duration) Option {
	return func(g *Generator) {
		g.pdfTimeout = d
	}
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		logger:     slog.Default(),
		fence:      diagram.DefaultFence,
		imagesDir:  diagram.DefaultRefDir,
		workers:    1,
		converters: make(map[Format]Converter),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.renderer == nil {
		g.renderer = newMermaidRenderer(g.mermaid)
	}
	return g
}

func newMermaidRenderer(s MermaidSettings) *render.MermaidCLI {
	opts := []render.Option{
		render.WithBinary(s.Binary),
		render.WithTheme(s.Theme),
		render.WithBackground(s.Background),
		render.WithScale(s.Scale),
		render.WithViewport(s.Width, s.Height),
		render.WithTimeout(s.Timeout),
	}
	return render.NewMermaidCLI(opts...)
}

// Generate builds the document described by in.
func (g *Generator) Generate(ctx context.Context, in Input) (*Result, error) {
	format, err := g.validateInput(&in)
	if err != nil {
		return nil, err
	}

	outDir, err := filepath.Abs(in.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputDir, err)
	}
	if err := os.MkdirAll(outDir, outputDirPermissions); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputDir, err)
	}

	res := &Result{
		Output:   filepath.Join(outDir, fileutil.EnsureExtension(in.Filename, format.Ext())),
		Original: filepath.Join(outDir, OriginalName),
		Combined: filepath.Join(outDir, CombinedName),
	}

	doc, err := g.collect(ctx, in.Root, outDir)
	if err != nil {
		return nil, err
	}
	res.Files = doc.Files
	res.Skipped = doc.Skipped

	if err := writeArtifact(res.Original, doc.Text); err != nil {
		return nil, err
	}

	text, summary, err := g.processDiagrams(ctx, outDir, doc.Text)
	if err != nil {
		return nil, err
	}
	res.Diagrams = summary

	if err := writeArtifact(res.Combined, text); err != nil {
		return nil, err
	}

	res.Template = g.resolveTemplate(ctx, in.Template)

	conv, err := g.converter(format)
	if err != nil {
		return nil, err
	}
	g.logger.InfoContext(ctx, "converting document", "format", string(format), "output", res.Output)
	job := docconv.Job{
		WorkDir:   outDir,
		Input:     CombinedName,
		Output:    filepath.Base(res.Output),
		SourceDir: in.Root,
		Template:  res.Template,
		Title:     in.Title,
	}
	if err := conv.Convert(ctx, job); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrConversion, err)
	}

	return res, nil
}

// Close releases converters holding external resources (the pdf browser).
func (g *Generator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var errs []error
	for _, c := range g.converters {
		if closer, ok := c.(docconv.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}
	return errors.Join(errs...)
}

// validateInput fills defaults and returns the parsed format.
func (g *Generator) validateInput(in *Input) (Format, error) {
	if in.Format == "" {
		in.Format = FormatDOCX
	}
	format, err := docconv.ParseFormat(string(in.Format))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	if strings.TrimSpace(in.Root) == "" {
		return "", fmt.Errorf("%w: source directory is required", ErrInvalidInput)
	}
	if !fileutil.DirExists(in.Root) {
		return "", fmt.Errorf("%w: %s", ErrRootNotFound, in.Root)
	}
	if strings.TrimSpace(in.OutputDir) == "" {
		return "", fmt.Errorf("%w: output directory is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Filename) == "" {
		return "", fmt.Errorf("%w: filename is required", ErrInvalidInput)
	}
	if strings.ContainsAny(in.Filename, `/\`) {
		return "", fmt.Errorf("%w: filename %q must not contain a path separator", ErrInvalidInput, in.Filename)
	}
	if in.Title == "" {
		in.Title = strings.TrimSuffix(in.Filename, filepath.Ext(in.Filename))
	}
	return format, nil
}

// collect reads the source tree, leaving out the output directory when it
// sits inside it.
func (g *Generator) collect(ctx context.Context, root, outDir string) (*collect.Document, error) {
	opts := []collect.Option{collect.WithLogger(g.logger)}
	if absRoot, err := filepath.Abs(root); err == nil {
		if rel, err := filepath.Rel(absRoot, outDir); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			opts = append(opts, collect.WithExclude(filepath.ToSlash(rel)))
		}
	}

	doc, err := collect.New(os.DirFS(root), opts...).Collect(ctx)
	if err != nil {
		if errors.Is(err, collect.ErrNoMarkdown) {
			return nil, fmt.Errorf("%w in %s", err, root)
		}
		return nil, fmt.Errorf("collecting %s: %w", root, err)
	}
	g.logger.InfoContext(ctx, "collected markdown", "files", len(doc.Files), "skipped", len(doc.Skipped))
	return doc, nil
}

func (g *Generator) processDiagrams(ctx context.Context, outDir, text string) (string, *DiagramSummary, error) {
	scratch := filepath.Join(outDir, scratchName)
	defer func() { _ = os.RemoveAll(scratch) }()

	p, err := diagram.NewPipeline(g.renderer, diagram.Options{
		StoreDir:   filepath.Join(outDir, filepath.FromSlash(g.imagesDir)),
		ScratchDir: scratch,
		RefDir:     filepath.ToSlash(g.imagesDir),
		Fence:      g.fence,
		Workers:    g.workers,
		Logger:     g.logger,
	})
	if err != nil {
		return "", nil, err
	}
	return p.Process(ctx, text)
}

// resolveTemplate returns the absolute template path, or "" when no
// template was given or it does not exist.
func (g *Generator) resolveTemplate(ctx context.Context, template string) string {
	if template == "" {
		return ""
	}
	if !fileutil.FileExists(template) {
		g.logger.WarnContext(ctx, "template not found, continuing without it", "template", template)
		return ""
	}
	abs, err := filepath.Abs(template)
	if err != nil {
		return template
	}
	return abs
}

// converter returns the converter for format, building the default one on
// first use and keeping it for later runs.
func (g *Generator) converter(format Format) (Converter, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.converters[format]; ok {
		return c, nil
	}

	var c Converter
	switch format {
	case FormatDOCX:
		c = docconv.NewPandoc(g.pandocBinary)
	case FormatHTML, FormatPDF:
		html, err := g.newHTML()
		if err != nil {
			return nil, err
		}
		c = html
		if format == FormatPDF {
			c = docconv.NewPDF(html, g.pdfTimeout)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
	g.converters[format] = c
	return c, nil
}

func writeArtifact(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { // #nosec G306 -- build artifacts are meant to be read
		return fmt.Errorf("%w: writing %s: %w", ErrOutputDir, filepath.Base(path), err)
	}
	return nil
}

func (g *Generator) newHTML() (*docconv.HTML, error) {
	if g.stylesheet == "" {
		return docconv.NewHTML(g.highlightStyle), nil
	}
	css, err := os.ReadFile(g.stylesheet) // #nosec G304 -- stylesheet path is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: stylesheet: %w", ErrInvalidInput, err)
	}
	return docconv.NewHTML(g.highlightStyle, docconv.WithCSS(string(css))), nil
}
