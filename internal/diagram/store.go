package diagram

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
)

// ErrStoreIO indicates the image store could not be read or written.
// The run cannot continue without a usable store.
var ErrStoreIO = errors.New("image store I/O failure")

// DefaultRefDir is the directory prefix used in image references.
const DefaultRefDir = "images"

const storeDirPermissions = 0o750

var entryPattern = regexp.MustCompile(`^diagram-([a-f0-9]{8})\.png$`)

// Store is the directory of rendered diagram images.
type Store struct {
	dir    string
	refDir string
}

// NewStore returns a store rooted at dir. Image references are written
// relative to the document as refDir/diagram-<id>.png.
func NewStore(dir, refDir string) *Store {
	if refDir == "" {
		refDir = DefaultRefDir
	}
	return &Store{dir: dir, refDir: refDir}
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// EntryName returns the file name of the cache entry for id.
func EntryName(id Identity) string {
	return "diagram-" + string(id) + ".png"
}

// ParseEntryName extracts the identity from a cache entry file name.
func ParseEntryName(name string) (Identity, bool) {
	m := entryPattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return Identity(m[1]), true
}

// Path returns the on-disk path of the cache entry for id.
func (s *Store) Path(id Identity) string {
	return filepath.Join(s.dir, EntryName(id))
}

// Ref returns the document-relative image reference for id.
// Forward slashes are used on every platform.
func (s *Store) Ref(id Identity) string {
	return path.Join(filepath.ToSlash(s.refDir), EntryName(id))
}

// Ensure creates the store directory if needed.
func (s *Store) Ensure() error {
	if err := os.MkdirAll(s.dir, storeDirPermissions); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrStoreIO, s.dir, err)
	}
	return nil
}

// Entries lists the identities that currently have a cache entry, sorted.
// Files that do not follow the entry naming pattern are ignored.
func (s *Store) Entries() ([]Identity, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: listing %s: %v", ErrStoreIO, s.dir, err)
	}

	var ids []Identity
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		if id, ok := ParseEntryName(de.Name()); ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Reconcile deletes every cache entry whose identity is not in used and
// returns the removed file names. Only files matching diagram-<id>.png are
// candidates; anything else in the directory is left alone.
func (s *Store) Reconcile(used map[Identity]struct{}) ([]string, error) {
	ids, err := s.Entries()
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, id := range ids {
		if _, ok := used[id]; ok {
			continue
		}
		name := EntryName(id)
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("%w: removing %s: %v", ErrStoreIO, name, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}
