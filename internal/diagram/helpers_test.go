package diagram

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

// errRenderRejected is returned by fakeRenderer for sources containing "FAIL".
var errRenderRejected = errors.New("parse error on line 1")

// fakeRenderer writes "PNG:<source>" to the output path. Sources containing
// "FAIL" are rejected, sources containing "EMPTY" produce no file.
type fakeRenderer struct {
	mu      sync.Mutex
	calls   []string
	inputs  []string
	delay   time.Duration
	onStart func()
}

func (f *fakeRenderer) Render(ctx context.Context, inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	src := string(data)

	f.mu.Lock()
	f.calls = append(f.calls, src)
	f.inputs = append(f.inputs, inputPath)
	onStart := f.onStart
	f.mu.Unlock()

	if onStart != nil {
		onStart()
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	switch {
	case strings.Contains(src, "FAIL"):
		return errRenderRejected
	case strings.Contains(src, "EMPTY"):
		return nil
	}
	return os.WriteFile(outputPath, []byte("PNG:"+src), 0o644)
}

func (f *fakeRenderer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// storeFiles returns the names of the regular files in dir.
func storeFiles(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		t.Fatalf("ReadDir(%s) error = %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}
