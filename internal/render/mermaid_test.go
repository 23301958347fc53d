package render

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type mockRunner struct {
	stdout     string
	stderr     string
	err        error
	block      bool
	calledWith []string
	dir        string
}

func (m *mockRunner) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	m.calledWith = append([]string{name}, args...)
	m.dir = dir
	if m.block {
		<-ctx.Done()
		return "", "", ctx.Err()
	}
	return m.stdout, m.stderr, m.err
}

// ---------------------------------------------------------------------------
// TestMermaidCLI_Args - Command line
// ---------------------------------------------------------------------------

func TestMermaidCLI_Args(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []Option
		want []string
	}{
		{
			name: "defaults",
			want: []string{
				"-i", "in.mmd", "-o", "out.png",
				"--theme", "default", "--backgroundColor", "white",
				"--scale", "2", "--width", "1200", "--height", "800",
			},
		},
		{
			name: "custom options",
			opts: []Option{WithTheme("dark"), WithBackground("transparent"), WithScale(3), WithViewport(800, 600)},
			want: []string{
				"-i", "in.mmd", "-o", "out.png",
				"--theme", "dark", "--backgroundColor", "transparent",
				"--scale", "3", "--width", "800", "--height", "600",
			},
		},
		{
			name: "zero values keep defaults",
			opts: []Option{WithTheme(""), WithScale(0), WithViewport(0, -1)},
			want: []string{
				"-i", "in.mmd", "-o", "out.png",
				"--theme", "default", "--backgroundColor", "white",
				"--scale", "2", "--width", "1200", "--height", "800",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := NewMermaidCLI(tt.opts...).Args("in.mmd", "out.png")
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Args() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestMermaidCLI_Render - Runner outcomes
// ---------------------------------------------------------------------------

func TestMermaidCLI_Render(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		r := &mockRunner{}
		m := NewMermaidCLI(WithRunner(r), WithBinary("/opt/mmdc"))
		if err := m.Render(context.Background(), "in.mmd", "out.png"); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if r.calledWith[0] != "/opt/mmdc" {
			t.Errorf("Render() ran %q, want %q", r.calledWith[0], "/opt/mmdc")
		}
	})

	t.Run("failure reports first stderr line", func(t *testing.T) {
		t.Parallel()

		exitErr := errors.New("exit status 1")
		r := &mockRunner{stderr: "\nError: Parse error on line 2:\n...graph TD\n", err: exitErr}
		err := NewMermaidCLI(WithRunner(r)).Render(context.Background(), "in.mmd", "out.png")
		if !errors.Is(err, exitErr) {
			t.Fatalf("Render() error = %v, want wrapping %v", err, exitErr)
		}
		if !strings.HasPrefix(err.Error(), "Error: Parse error on line 2:") {
			t.Errorf("Render() error = %q, want stderr first line", err.Error())
		}
	})

	t.Run("failure without stderr", func(t *testing.T) {
		t.Parallel()

		exitErr := errors.New("exit status 1")
		err := NewMermaidCLI(WithRunner(&mockRunner{err: exitErr})).Render(context.Background(), "in.mmd", "out.png")
		if err != exitErr {
			t.Errorf("Render() error = %v, want %v", err, exitErr)
		}
	})
}

func TestMermaidCLI_Render_Timeout(t *testing.T) {
	t.Parallel()

	m := NewMermaidCLI(WithRunner(&mockRunner{block: true}), WithTimeout(20*time.Millisecond))
	err := m.Render(context.Background(), "in.mmd", "out.png")
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Render() error = %v, want %v", err, ErrTimeout)
	}
}

func TestMermaidCLI_Render_ParentCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMermaidCLI(WithRunner(&mockRunner{block: true}))
	err := m.Render(ctx, "in.mmd", "out.png")
	if errors.Is(err, ErrTimeout) {
		t.Errorf("Render() error = %v, parent cancellation must not be reported as a timeout", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want %v", err, context.Canceled)
	}
}

func TestMermaidCLI_Version(t *testing.T) {
	t.Parallel()

	r := &mockRunner{stdout: "11.4.0\n"}
	got, err := NewMermaidCLI(WithRunner(r)).Version(context.Background())
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if got != "11.4.0" {
		t.Errorf("Version() = %q, want %q", got, "11.4.0")
	}
	if diff := cmp.Diff([]string{"mmdc", "--version"}, r.calledWith); diff != "" {
		t.Errorf("Version() command mismatch (-want +got):\n%s", diff)
	}
}
