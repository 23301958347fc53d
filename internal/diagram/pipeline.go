package diagram

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// ErrNoStore indicates the pipeline was configured without an image store.
var ErrNoStore = errors.New("image store directory is required")

// Options configures a Pipeline. StoreDir and ScratchDir are the only
// filesystem locations the pipeline writes to.
type Options struct {
	StoreDir   string       // rendered images (diagram-<id>.png)
	ScratchDir string       // renderer scratch space, <StoreDir>/.scratch removed after Process if empty
	RefDir     string       // prefix of image references in the output text
	Fence      string       // code fence language tag, DefaultFence if empty
	Workers    int          // parallel renders, <= 1 means sequential
	Logger     *slog.Logger // slog.Default() if nil
}

// Failure identifies a block whose diagram could not be rendered.
type Failure struct {
	Index    int
	Identity Identity
	Reason   string
}

// Summary reports what one pipeline run did. Counts are per block: the
// first block of a freshly rendered identity is Generated, later blocks
// sharing it are Cached.
type Summary struct {
	Blocks    int
	Generated int
	Cached    int
	Failed    int
	Failures  []Failure
	Removed   []string
}

func (s *Summary) record(b Block, r Result) {
	switch r.Status {
	case StatusGenerated:
		s.Generated++
	case StatusCached:
		s.Cached++
	default:
		s.Failed++
		s.Failures = append(s.Failures, Failure{Index: b.Index, Identity: r.Identity, Reason: r.Reason})
	}
}

// Pipeline extracts diagram blocks, resolves them through the cache,
// prunes unused cache entries and rewrites the text.
type Pipeline struct {
	extractor *Extractor
	store     *Store
	cache     *Cache
	scratch   string // removed after each Process call when non-empty
	workers   int
	logger    *slog.Logger
}

// NewPipeline wires a pipeline around renderer.
func NewPipeline(renderer Renderer, opts Options) (*Pipeline, error) {
	if opts.StoreDir == "" {
		return nil, ErrNoStore
	}
	if opts.Fence == "" {
		opts.Fence = DefaultFence
	}
	var ownScratch string
	if opts.ScratchDir == "" {
		opts.ScratchDir = filepath.Join(opts.StoreDir, ".scratch")
		ownScratch = opts.ScratchDir
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	extractor, err := NewExtractor(opts.Fence)
	if err != nil {
		return nil, err
	}
	store := NewStore(opts.StoreDir, opts.RefDir)

	return &Pipeline{
		extractor: extractor,
		store:     store,
		cache:     NewCache(store, opts.ScratchDir, renderer, opts.Logger),
		scratch:   ownScratch,
		workers:   opts.Workers,
		logger:    opts.Logger,
	}, nil
}

// Store returns the image store the pipeline writes to.
func (p *Pipeline) Store() *Store {
	return p.store
}

// Process runs the pipeline over text and returns the rewritten text.
// Render failures become placeholders and are listed in the summary;
// an error is returned only for store failures or cancellation.
// Calls on the same pipeline must not overlap.
func (p *Pipeline) Process(ctx context.Context, text string) (string, *Summary, error) {
	if p.scratch != "" {
		defer func() {
			if err := os.RemoveAll(p.scratch); err != nil {
				p.logger.WarnContext(ctx, "removing scratch directory", "dir", p.scratch, "error", err)
			}
		}()
	}

	blocks := p.extractor.Extract(text)
	summary := &Summary{Blocks: len(blocks)}

	if len(blocks) == 0 {
		p.logger.InfoContext(ctx, "no diagrams found", "fence", p.extractor.Fence())
	} else {
		p.logger.InfoContext(ctx, "processing diagrams", "count", len(blocks))
	}

	ids := make([]Identity, len(blocks))
	first := make(map[Identity]int, len(blocks))
	var unique []Identity
	for i, b := range blocks {
		id := Identify(b.Content)
		ids[i] = id
		if _, seen := first[id]; !seen {
			first[id] = i
			unique = append(unique, id)
		}
	}

	resolved, err := p.resolveAll(ctx, blocks, unique, first)
	if err != nil {
		return "", nil, err
	}

	results := make([]Result, len(blocks))
	used := make(map[Identity]struct{}, len(unique))
	for i, id := range ids {
		used[id] = struct{}{}
		r := resolved[id]
		if r.Status == StatusGenerated && first[id] != i {
			r.Status = StatusCached
		}
		results[i] = r
		summary.record(blocks[i], r)
		p.logResult(ctx, blocks[i], r)
	}

	// Reconciliation only starts once every render above has returned.
	removed, err := p.store.Reconcile(used)
	if err != nil {
		return "", nil, err
	}
	for _, name := range removed {
		p.logger.InfoContext(ctx, "removed unused diagram", "entry", name)
	}
	summary.Removed = removed

	return Substitute(text, blocks, results), summary, nil
}

// resolveAll resolves each unique identity once, using the content of the
// first block that carries it.
func (p *Pipeline) resolveAll(ctx context.Context, blocks []Block, unique []Identity, first map[Identity]int) (map[Identity]Result, error) {
	out := make([]Result, len(unique))

	if p.workers <= 1 {
		for i, id := range unique {
			r, err := p.cache.Resolve(ctx, id, blocks[first[id]].Content)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.workers)
		for i, id := range unique {
			g.Go(func() error {
				r, err := p.cache.Resolve(gctx, id, blocks[first[id]].Content)
				if err != nil {
					return err
				}
				out[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	resolved := make(map[Identity]Result, len(unique))
	for i, id := range unique {
		resolved[id] = out[i]
	}
	return resolved, nil
}

func (p *Pipeline) logResult(ctx context.Context, b Block, r Result) {
	entry := EntryName(r.Identity)
	switch r.Status {
	case StatusGenerated:
		p.logger.InfoContext(ctx, "generated diagram", "diagram", b.Index, "entry", entry)
	case StatusCached:
		p.logger.InfoContext(ctx, "using cached diagram", "diagram", b.Index, "entry", entry)
	default:
		p.logger.WarnContext(ctx, "diagram generation failed", "diagram", b.Index, "identity", r.Identity, "reason", r.Reason)
	}
}
