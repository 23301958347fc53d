package docconv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates Markdown to HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// DefaultHighlightStyle is the chroma style used for code blocks.
const DefaultHighlightStyle = "github"

const defaultTitle = "Document"

// documentTemplate wraps goldmark's fragment output in a complete HTML5 document.
const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
%s
%s
</style>
</head>
<body>
%s
</body>
</html>
`

const baseCSS = `body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; line-height: 1.5; max-width: 960px; margin: 0 auto; padding: 2em; }
img { max-width: 100%; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 8px; }
pre { padding: 1em; overflow-x: auto; }`

// HTML converts Markdown to a standalone HTML5 file using goldmark.
type HTML struct {
	md        goldmark.Markdown
	css       string
	chromaCSS string
}

// HTMLOption configures an HTML converter.
type HTMLOption func(*HTML)

// WithCSS replaces the built-in page stylesheet. Code highlighting rules
// are still appended.
func WithCSS(css string) HTMLOption {
	return func(c *HTML) {
		if strings.TrimSpace(css) != "" {
			c.css = css
		}
	}
}

// Compile-time interface check.
var _ Converter = (*HTML)(nil)

// NewHTML creates an HTML converter with GFM extensions and syntax highlighting.
// An unknown style name falls back to chroma's default style.
func NewHTML(style string, opts ...HTMLOption) *HTML {
	if style == "" {
		style = DefaultHighlightStyle
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithXHTML(),
		),
	)

	var css bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&css, styles.Get(style)); err != nil {
		css.Reset()
	}

	c := &HTML{md: md, css: baseCSS, chromaCSS: css.String()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render converts Markdown content to a standalone HTML5 document.
// Goldmark has no context support, so conversion runs in a goroutine
// and the caller stops waiting when ctx is done.
func (c *HTML) Render(ctx context.Context, content, title string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if title == "" {
		title = defaultTitle
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: fmt.Sprintf(documentTemplate, html.EscapeString(title), c.css, c.chromaCSS, buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// Convert writes job.Output as HTML rendered from job.Input.
func (c *HTML) Convert(ctx context.Context, job Job) error {
	content, err := os.ReadFile(filepath.Join(job.WorkDir, job.Input)) // #nosec G304 -- combined file written by the generator
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrConverterFailed, job.Input, err)
	}

	doc, err := c.Render(ctx, string(content), job.Title)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", ErrConverterFailed, err)
	}

	doc, err = ResolveAssets(doc, job.WorkDir, job.SourceDir)
	if err != nil {
		return fmt.Errorf("%w: resolving images: %v", ErrConverterFailed, err)
	}

	if err := os.WriteFile(filepath.Join(job.WorkDir, job.Output), []byte(doc), 0o644); err != nil { // #nosec G306 -- output documents are meant to be shared
		return fmt.Errorf("%w: writing %s: %v", ErrConverterFailed, job.Output, err)
	}
	return nil
}
