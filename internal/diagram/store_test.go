package diagram

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ---------------------------------------------------------------------------
// TestEntryName - Cache entry naming
// ---------------------------------------------------------------------------

func TestParseEntryName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		wantID Identity
		wantOK bool
	}{
		{name: "diagram-60dd1d35.png", wantID: "60dd1d35", wantOK: true},
		{name: "diagram-60DD1D35.png", wantOK: false},
		{name: "diagram-60dd1d35.mmd", wantOK: false},
		{name: "diagram-60dd1d3.png", wantOK: false},
		{name: "xdiagram-60dd1d35.png", wantOK: false},
		{name: "diagram-60dd1d35.png.bak", wantOK: false},
		{name: "logo.png", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, ok := ParseEntryName(tt.name)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("ParseEntryName(%q) = (%q, %v), want (%q, %v)", tt.name, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}

	if got := EntryName("60dd1d35"); got != "diagram-60dd1d35.png" {
		t.Errorf("EntryName() = %q, want %q", got, "diagram-60dd1d35.png")
	}
}

func TestStore_Ref(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		refDir string
		want   string
	}{
		{name: "default prefix", refDir: "", want: "images/diagram-60dd1d35.png"},
		{name: "custom prefix", refDir: "assets/img", want: "assets/img/diagram-60dd1d35.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewStore(t.TempDir(), tt.refDir)
			if got := s.Ref("60dd1d35"); got != tt.want {
				t.Errorf("Ref() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestStore_Reconcile - Cache garbage collection
// ---------------------------------------------------------------------------

func TestStore_Reconcile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := []string{
		"diagram-aaaaaaaa.png", // used
		"diagram-bbbbbbbb.png", // stale
		"diagram-cccccccc.png", // stale
		"diagram-bbbbbbbb.mmd", // not a cache entry
		"logo.png",             // not a cache entry
		"notes.txt",            // not a cache entry
	}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "diagram-dddddddd.png"), 0o755); err != nil {
		t.Fatalf("creating directory: %v", err)
	}

	s := NewStore(dir, "")
	removed, err := s.Reconcile(map[Identity]struct{}{"aaaaaaaa": {}})
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	wantRemoved := []string{"diagram-bbbbbbbb.png", "diagram-cccccccc.png"}
	if diff := cmp.Diff(wantRemoved, removed); diff != "" {
		t.Errorf("Reconcile() removed mismatch (-want +got):\n%s", diff)
	}

	wantLeft := []string{"diagram-aaaaaaaa.png", "diagram-bbbbbbbb.mmd", "logo.png", "notes.txt"}
	if diff := cmp.Diff(wantLeft, storeFiles(t, dir)); diff != "" {
		t.Errorf("store contents mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(dir, "diagram-dddddddd.png")); err != nil {
		t.Errorf("directory matching the entry pattern was touched: %v", err)
	}
}

func TestStore_Reconcile_EmptyUsedSet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"diagram-aaaaaaaa.png", "keep.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	removed, err := NewStore(dir, "").Reconcile(nil)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(removed) != 1 {
		t.Errorf("Reconcile() removed %v, want one entry", removed)
	}
	if diff := cmp.Diff([]string{"keep.md"}, storeFiles(t, dir)); diff != "" {
		t.Errorf("store contents mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Reconcile_MissingDirectory(t *testing.T) {
	t.Parallel()

	s := NewStore(filepath.Join(t.TempDir(), "images"), "")
	removed, err := s.Reconcile(nil)
	if err != nil {
		t.Errorf("Reconcile() error = %v, want nil", err)
	}
	if len(removed) != 0 {
		t.Errorf("Reconcile() removed %v, want none", removed)
	}
}

func TestStore_Ensure_NotADirectory(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "images")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	err := NewStore(file, "").Ensure()
	if !errors.Is(err, ErrStoreIO) {
		t.Errorf("Ensure() error = %v, want %v", err, ErrStoreIO)
	}
}

func TestStore_Entries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"diagram-bbbbbbbb.png", "diagram-aaaaaaaa.png", "other.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	got, err := NewStore(dir, "").Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	want := []Identity{"aaaaaaaa", "bbbbbbbb"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
}
