package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	md2docx "github.com/alnah/go-md2docx"
	"github.com/alnah/go-md2docx/internal/process"
)

// fakeGenerator records inputs and options and returns canned results.
type fakeGenerator struct {
	mu     sync.Mutex
	inputs []md2docx.Input
	nOpts  int
	result *md2docx.Result
	err    error
	closed bool
	onCall func()
}

func (f *fakeGenerator) Generate(_ context.Context, in md2docx.Input) (*md2docx.Result, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	onCall := f.onCall
	f.mu.Unlock()

	if onCall != nil {
		onCall()
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &md2docx.Result{Output: in.OutputDir + "/" + in.Filename, Diagrams: &md2docx.DiagramSummary{}}, nil
}

func (f *fakeGenerator) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeGenerator) lastInput(t *testing.T) md2docx.Input {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.inputs) == 0 {
		t.Fatal("Generate() was not called")
	}
	return f.inputs[len(f.inputs)-1]
}

// fakeRunner answers "--version" for any binary.
type fakeRunner struct {
	versions map[string]string
}

func (r *fakeRunner) Run(_ context.Context, _, name string, _ ...string) (string, string, error) {
	if v, ok := r.versions[name]; ok {
		return v, "", nil
	}
	return "", "", errors.New("exit status 1")
}

// testEnv returns an Environment with captured output, the given
// variables, no tools installed, and gen as generator.
func testEnv(gen *fakeGenerator, vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Stdout: &stdout,
		Stderr: &stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			var out []string
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		NewGenerator: func(opts ...md2docx.Option) generator {
			gen.mu.Lock()
			gen.nOpts = len(opts)
			gen.mu.Unlock()
			return gen
		},
		LookPath: func(name string) (string, error) {
			return "", process.ErrCommandNotFound
		},
		ChromePath: func() (string, bool) { return "", false },
		Runner:     &fakeRunner{},
	}
	return env, &stdout, &stderr
}

func assertContains(t *testing.T, label, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("%s should contain %q, got:\n%s", label, want, got)
		}
	}
}
