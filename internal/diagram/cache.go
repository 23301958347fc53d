package diagram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/alnah/go-md2docx/internal/fileutil"
)

// Renderer turns a diagram source file into an image file.
// Implementations must not leave a partial file at outputPath on failure;
// the cache discards it anyway.
type Renderer interface {
	Render(ctx context.Context, inputPath, outputPath string) error
}

// Status is the outcome of resolving one diagram.
type Status int

const (
	StatusCached Status = iota + 1
	StatusGenerated
	StatusFailed
)

// String returns the status name used in logs.
func (s Status) String() string {
	switch s {
	case StatusCached:
		return "cached"
	case StatusGenerated:
		return "generated"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of resolving a diagram. Ref is set on success,
// Reason on failure.
type Result struct {
	Identity Identity
	Status   Status
	Ref      string
	Reason   string
}

// OK reports whether the diagram has an image to reference.
func (r Result) OK() bool {
	return r.Status == StatusCached || r.Status == StatusGenerated
}

// Cache resolves diagram identities to rendered images in a Store.
// An entry that exists on disk is trusted without looking at its content.
type Cache struct {
	store    *Store
	scratch  string
	renderer Renderer
	logger   *slog.Logger
	flight   singleflight.Group
}

// NewCache returns a cache writing to store and rendering through renderer.
// Scratch inputs and outputs live in scratchDir until they are persisted or discarded.
func NewCache(store *Store, scratchDir string, renderer Renderer, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:    store,
		scratch:  scratchDir,
		renderer: renderer,
		logger:   logger,
	}
}

// Resolve returns the image for id, rendering content only when the store
// has no usable entry. Render failures are reported in the Result; the
// returned error is reserved for store failures and cancellation.
// Concurrent calls for the same identity share one render.
func (c *Cache) Resolve(ctx context.Context, id Identity, content string) (Result, error) {
	v, err, _ := c.flight.Do(string(id), func() (any, error) {
		return c.resolve(ctx, id, content)
	})
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

func (c *Cache) resolve(ctx context.Context, id Identity, content string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if c.lookup(ctx, id) {
		return Result{Identity: id, Status: StatusCached, Ref: c.store.Ref(id)}, nil
	}
	return c.render(ctx, id, content)
}

// lookup reports whether a readable entry exists for id.
// An entry that exists but cannot be opened counts as a miss.
func (c *Cache) lookup(ctx context.Context, id Identity) bool {
	p := c.store.Path(id)
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	if err != nil {
		c.logger.WarnContext(ctx, "unreadable cache entry, rendering again", "entry", EntryName(id), "reason", err)
		return false
	}
	if !info.Mode().IsRegular() {
		c.logger.WarnContext(ctx, "cache entry is not a regular file, rendering again", "entry", EntryName(id))
		return false
	}

	f, err := os.Open(p) // #nosec G304 -- path built from a validated identity
	if err != nil {
		c.logger.WarnContext(ctx, "unreadable cache entry, rendering again", "entry", EntryName(id), "reason", err)
		return false
	}
	_ = f.Close()
	return true
}

func (c *Cache) render(ctx context.Context, id Identity, content string) (Result, error) {
	if err := os.MkdirAll(c.scratch, storeDirPermissions); err != nil {
		return Result{}, fmt.Errorf("%w: creating scratch directory: %v", ErrStoreIO, err)
	}
	if err := c.store.Ensure(); err != nil {
		return Result{}, err
	}

	input, cleanup, err := fileutil.WriteTempFile(c.scratch, content, "mmd")
	if err != nil {
		return Result{}, fmt.Errorf("%w: writing scratch input: %v", ErrStoreIO, err)
	}
	defer cleanup()

	output := strings.TrimSuffix(input, ".mmd") + ".png"
	defer func() { _ = os.Remove(output) }()

	if err := c.renderer.Render(ctx, input, output); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return failed(id, err.Error()), nil
	}

	info, err := os.Stat(output)
	if err != nil || info.Size() == 0 {
		return failed(id, "renderer produced no output"), nil
	}

	if err := moveFile(output, c.store.Path(id)); err != nil {
		return Result{}, fmt.Errorf("%w: persisting %s: %v", ErrStoreIO, EntryName(id), err)
	}
	return Result{Identity: id, Status: StatusGenerated, Ref: c.store.Ref(id)}, nil
}

func failed(id Identity, reason string) Result {
	return Result{Identity: id, Status: StatusFailed, Reason: reason}
}

// moveFile renames src to dst, copying through a temporary sibling of dst
// when a rename is not possible (scratch and store on different devices).
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src) // #nosec G304 -- scratch file created by this package
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".partial"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) // #nosec G302 G304 -- images are meant to be read by the document converter
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
