package docconv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-md2docx/internal/process"
)

// ---------------------------------------------------------------------------
// TestPandoc_Args - Command line
// ---------------------------------------------------------------------------

func TestPandoc_Args(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	work := filepath.Join(root, "build")
	template := filepath.Join(root, "styles", "reference.docx")

	tests := []struct {
		name string
		job  Job
		want []string
	}{
		{
			name: "without template",
			job:  Job{WorkDir: work, Input: "combined.md", Output: "output.docx"},
			want: []string{"combined.md", "-o", "output.docx", "--standalone"},
		},
		{
			name: "template relative to work dir",
			job:  Job{WorkDir: work, Input: "combined.md", Output: "Final Report.docx", Template: template},
			want: []string{
				"combined.md", "-o", "Final Report.docx", "--standalone",
				"--reference-doc", filepath.Join("..", "styles", "reference.docx"),
			},
		},
		{
			name: "source directory on resource path",
			job:  Job{WorkDir: work, Input: "combined.md", Output: "output.docx", SourceDir: filepath.Join(root, "docs")},
			want: []string{
				"combined.md", "-o", "output.docx", "--standalone",
				"--resource-path", "." + string(filepath.ListSeparator) + filepath.Join(root, "docs"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := NewPandoc("").Args(tt.job)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Args() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPandoc_Convert - Runner outcomes
// ---------------------------------------------------------------------------

func TestPandoc_Convert(t *testing.T) {
	t.Parallel()

	t.Run("runs from the work dir", func(t *testing.T) {
		t.Parallel()

		r := &mockRunner{}
		p := &Pandoc{Binary: "/usr/local/bin/pandoc", Runner: r}
		job := Job{WorkDir: "build", Input: "combined.md", Output: "output.docx"}

		if err := p.Convert(context.Background(), job); err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if r.dir != "build" {
			t.Errorf("Convert() ran in %q, want %q", r.dir, "build")
		}
		if r.calledWith[0] != "/usr/local/bin/pandoc" {
			t.Errorf("Convert() ran %q, want %q", r.calledWith[0], "/usr/local/bin/pandoc")
		}
	})

	t.Run("failure includes stderr", func(t *testing.T) {
		t.Parallel()

		r := &mockRunner{stderr: "pandoc: combined.md: openBinaryFile: does not exist\n", err: errors.New("exit status 1")}
		err := (&Pandoc{Binary: "pandoc", Runner: r}).Convert(context.Background(), Job{})
		if !errors.Is(err, ErrConverterFailed) {
			t.Fatalf("Convert() error = %v, want %v", err, ErrConverterFailed)
		}
		if !strings.Contains(err.Error(), "openBinaryFile") {
			t.Errorf("Convert() error = %q, want stderr included", err.Error())
		}
	})

	t.Run("missing binary stays classifiable", func(t *testing.T) {
		t.Parallel()

		r := &mockRunner{err: process.ErrCommandNotFound}
		err := (&Pandoc{Binary: "pandoc", Runner: r}).Convert(context.Background(), Job{})
		if !errors.Is(err, ErrConverterFailed) || !errors.Is(err, process.ErrCommandNotFound) {
			t.Errorf("Convert() error = %v, want both %v and %v", err, ErrConverterFailed, process.ErrCommandNotFound)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		r := &mockRunner{err: errors.New("signal: killed")}
		err := (&Pandoc{Binary: "pandoc", Runner: r}).Convert(ctx, Job{})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Convert() error = %v, want %v", err, context.Canceled)
		}
	})
}

func TestNewPandoc_DefaultBinary(t *testing.T) {
	t.Parallel()

	if got := NewPandoc("").Binary; got != DefaultPandocBinary {
		t.Errorf("NewPandoc(\"\").Binary = %q, want %q", got, DefaultPandocBinary)
	}
	if _, ok := NewPandoc("pandoc").Runner.(*process.ExecRunner); !ok {
		t.Error("NewPandoc() runner is not an ExecRunner")
	}
}

func TestTemplatePath_Absolute(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tmpl := filepath.Join(dir, "ref.docx")
	if err := os.WriteFile(tmpl, []byte("x"), 0o644); err != nil {
		t.Fatalf("writing template: %v", err)
	}

	if got := templatePath(dir, tmpl); got != "ref.docx" {
		t.Errorf("templatePath() = %q, want %q", got, "ref.docx")
	}
}
