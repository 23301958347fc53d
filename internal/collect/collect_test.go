package collect

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---------------------------------------------------------------------------
// TestCollector_Files - Discovery
// ---------------------------------------------------------------------------

func TestCollector_Files(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"10-end.md":            {Data: []byte("end")},
		"2-middle.md":          {Data: []byte("middle")},
		"1-start.MD":           {Data: []byte("start")},
		"notes.txt":            {Data: []byte("ignored")},
		"guide/part10.md":      {Data: []byte("p10")},
		"guide/part9.md":       {Data: []byte("p9")},
		"build/combined.md":    {Data: []byte("generated")},
		"build/images/a.png":   {Data: []byte("png")},
		"assets/diagram.mmd":   {Data: []byte("graph TD")},
		"guide/deep/nested.md": {Data: []byte("nested")},
	}

	got, err := New(fsys, WithExclude("./build")).Files(context.Background())
	if err != nil {
		t.Fatalf("Files() error = %v", err)
	}

	want := []string{"1-start.MD", "2-middle.md", "10-end.md", "guide/deep/nested.md", "guide/part9.md", "guide/part10.md"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Files() mismatch (-want +got):\n%s", diff)
	}
}

func TestCollector_Files_NoMarkdown(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"readme.txt": {Data: []byte("x")}}
	_, err := New(fsys).Files(context.Background())
	if !errors.Is(err, ErrNoMarkdown) {
		t.Errorf("Files() error = %v, want %v", err, ErrNoMarkdown)
	}
}

// ---------------------------------------------------------------------------
// TestCollector_Collect - Concatenation
// ---------------------------------------------------------------------------

func TestCollector_Collect(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"b.md":     {Data: []byte("# B\n")},
		"a.md":     {Data: []byte("\ufeff# A")},
		"sub/c.md": {Data: []byte("C")},
	}

	doc, err := New(fsys, WithLogger(quietLogger())).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	want := "\n\n<!-- Source: a.md -->\n\n# A\n\n" +
		"\n\n<!-- Source: b.md -->\n\n# B\n\n\n" +
		"\n\n<!-- Source: sub/c.md -->\n\nC\n\n"
	if doc.Text != want {
		t.Errorf("Collect() text = %q, want %q", doc.Text, want)
	}
	if diff := cmp.Diff([]string{"a.md", "b.md", "sub/c.md"}, doc.Files); diff != "" {
		t.Errorf("Collect() files mismatch (-want +got):\n%s", diff)
	}
	if len(doc.Skipped) != 0 {
		t.Errorf("Collect() skipped = %v, want none", doc.Skipped)
	}
}

func TestCollector_Collect_SkipsInvalidUTF8(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"good.md":   {Data: []byte("fine")},
		"latin1.md": {Data: []byte("caf\xe9")},
	}

	doc, err := New(fsys, WithLogger(quietLogger())).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if strings.Contains(doc.Text, "latin1.md") {
		t.Errorf("Collect() text includes skipped file:\n%s", doc.Text)
	}
	want := []Skipped{{Path: "latin1.md", Reason: "not valid UTF-8"}}
	if diff := cmp.Diff(want, doc.Skipped); diff != "" {
		t.Errorf("Collect() skipped mismatch (-want +got):\n%s", diff)
	}
}

func TestCollector_Collect_AllSkipped(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"bad.md": {Data: []byte{0xff, 0xfe}}}
	_, err := New(fsys, WithLogger(quietLogger())).Collect(context.Background())
	if !errors.Is(err, ErrNoMarkdown) {
		t.Errorf("Collect() error = %v, want %v", err, ErrNoMarkdown)
	}
}

func TestCollector_Collect_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fsys := fstest.MapFS{"a.md": {Data: []byte("A")}}
	_, err := New(fsys).Collect(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Collect() error = %v, want %v", err, context.Canceled)
	}
}
