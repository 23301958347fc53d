package docconv

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alnah/go-md2docx/internal/fileutil"
	"github.com/alnah/go-md2docx/internal/process"
)

// DefaultPandocBinary is the pandoc executable looked up on PATH.
const DefaultPandocBinary = "pandoc"

// Pandoc converts Markdown by invoking the Pandoc CLI.
type Pandoc struct {
	Binary string
	Runner process.CommandRunner
}

// Compile-time interface check.
var _ Converter = (*Pandoc)(nil)

// NewPandoc creates a Pandoc converter with a real command runner.
func NewPandoc(binary string) *Pandoc {
	if binary == "" {
		binary = DefaultPandocBinary
	}
	return &Pandoc{Binary: binary, Runner: &process.ExecRunner{}}
}

// Args returns the pandoc arguments for job. The reference document is
// expressed relative to the working directory when possible. Images are
// looked up in the working directory first, then in job.SourceDir.
func (p *Pandoc) Args(job Job) []string {
	args := []string{job.Input, "-o", job.Output, "--standalone"}
	if job.SourceDir != "" {
		args = append(args, "--resource-path", "."+string(filepath.ListSeparator)+absOrSelf(job.SourceDir))
	}
	if job.Template != "" {
		args = append(args, "--reference-doc", templatePath(job.WorkDir, job.Template))
	}
	return args
}

// Convert runs pandoc from job.WorkDir.
func (p *Pandoc) Convert(ctx context.Context, job Job) error {
	_, stderr, err := p.Runner.Run(ctx, job.WorkDir, p.Binary, p.Args(job)...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if msg := strings.TrimSpace(stderr); msg != "" {
			return fmt.Errorf("%w: pandoc: %s: %w", ErrConverterFailed, msg, err)
		}
		return fmt.Errorf("%w: pandoc: %w", ErrConverterFailed, err)
	}
	return nil
}

func templatePath(workDir, template string) string {
	absTemplate, err := filepath.Abs(template)
	if err != nil {
		return template
	}
	absWork, err := filepath.Abs(workDir)
	if err != nil {
		return absTemplate
	}
	return fileutil.RelativeTo(absWork, absTemplate)
}

func absOrSelf(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
