// Package collect discovers the Markdown files of a documentation tree and
// concatenates them into one text with source markers.
package collect

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// ErrNoMarkdown indicates the tree holds no Markdown file.
var ErrNoMarkdown = errors.New("no Markdown files found")

// DefaultExtension is the suffix of collected files.
const DefaultExtension = ".md"

// SourceMarker returns the comment placed before each file's content.
func SourceMarker(rel string) string {
	return "<!-- Source: " + rel + " -->"
}

// Skipped is a file left out of the combined text.
type Skipped struct {
	Path   string
	Reason string
}

// Document is the result of a collection.
type Document struct {
	Text    string
	Files   []string // included, in order
	Skipped []Skipped
}

// Collector walks an fs.FS rooted at the documentation tree.
type Collector struct {
	fsys    fs.FS
	ext     string
	exclude map[string]struct{}
	logger  *slog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithExclude skips the given directories (slash-separated, relative to the root).
func WithExclude(dirs ...string) Option {
	return func(c *Collector) {
		for _, d := range dirs {
			d = path.Clean(strings.TrimPrefix(d, "./"))
			if d != "." && d != "" {
				c.exclude[d] = struct{}{}
			}
		}
	}
}

// WithLogger sets the logger used for skipped-file warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Collector) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Collector over fsys.
func New(fsys fs.FS, opts ...Option) *Collector {
	c := &Collector{
		fsys:    fsys,
		ext:     DefaultExtension,
		exclude: make(map[string]struct{}),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Files returns every Markdown file below the root in natural order.
func (c *Collector) Files(ctx context.Context) ([]string, error) {
	var files []string
	err := fs.WalkDir(c.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if _, skip := c.exclude[p]; skip {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && strings.EqualFold(path.Ext(p), c.ext) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking tree: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoMarkdown
	}
	SortNatural(files)
	return files, nil
}

// Collect finds and concatenates the tree's Markdown files. Each file is
// preceded by its source marker and followed by a blank line. Files that
// cannot be read or are not valid UTF-8 are skipped with a warning.
func (c *Collector) Collect(ctx context.Context) (*Document, error) {
	files, err := c.Files(ctx)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	var b strings.Builder
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := c.read(rel)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping file", "path", rel, "reason", err)
			doc.Skipped = append(doc.Skipped, Skipped{Path: rel, Reason: err.Error()})
			continue
		}

		b.WriteString("\n\n")
		b.WriteString(SourceMarker(rel))
		b.WriteString("\n\n")
		b.WriteString(content)
		b.WriteString("\n\n")
		doc.Files = append(doc.Files, rel)
	}

	if len(doc.Files) == 0 {
		return nil, fmt.Errorf("%w: all %d files were skipped", ErrNoMarkdown, len(files))
	}
	doc.Text = b.String()
	return doc, nil
}

var errNotUTF8 = errors.New("not valid UTF-8")

// read returns the file content with any UTF-8 byte order mark removed.
func (c *Collector) read(rel string) (string, error) {
	data, err := fs.ReadFile(c.fsys, rel)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", errNotUTF8
	}
	out, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
