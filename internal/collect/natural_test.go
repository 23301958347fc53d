package collect

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// ---------------------------------------------------------------------------
// TestSortNatural - File ordering
// ---------------------------------------------------------------------------

func TestSortNatural(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "numbers compared by value",
			input: []string{"file10.md", "file2.md", "file1.md"},
			want:  []string{"file1.md", "file2.md", "file10.md"},
		},
		{
			name:  "case-insensitive",
			input: []string{"B.md", "a.md", "C.md"},
			want:  []string{"a.md", "B.md", "C.md"},
		},
		{
			name:  "shorter text chunk first",
			input: []string{"b.md", "A.md", "a2.md"},
			want:  []string{"a2.md", "A.md", "b.md"},
		},
		{
			name:  "case-only difference tie broken bytewise",
			input: []string{"a.md", "A.md"},
			want:  []string{"A.md", "a.md"},
		},
		{
			name:  "full path order across directories",
			input: []string{"02-guide/intro.md", "01-intro.md", "10-appendix/a.md", "02-guide/01-setup.md"},
			want:  []string{"01-intro.md", "02-guide/01-setup.md", "02-guide/intro.md", "10-appendix/a.md"},
		},
		{
			name:  "leading zeros tie broken bytewise",
			input: []string{"1.md", "01.md"},
			want:  []string{"01.md", "1.md"},
		},
		{
			name:  "long digit runs do not overflow",
			input: []string{"99999999999999999999999.md", "100000000000000000000000.md"},
			want:  []string{"99999999999999999999999.md", "100000000000000000000000.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := append([]string(nil), tt.input...)
			SortNatural(got)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SortNatural() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNaturalLess(t *testing.T) {
	t.Parallel()

	if !NaturalLess("chapter9.md", "chapter10.md") {
		t.Error(`NaturalLess("chapter9.md", "chapter10.md") = false, want true`)
	}
	if NaturalLess("chapter10.md", "chapter9.md") {
		t.Error(`NaturalLess("chapter10.md", "chapter9.md") = true, want false`)
	}
}

// ---------------------------------------------------------------------------
// TestNaturalCompareProperties - Ordering laws
// ---------------------------------------------------------------------------

func TestNaturalCompareProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234) // For reproducible results

	properties := gopter.NewProperties(parameters)
	name := gen.RegexMatch(`[a-cA-C0-9/]{0,8}`)

	properties.Property("antisymmetric", prop.ForAll(
		func(a, b string) bool {
			return sign(NaturalCompare(a, b)) == -sign(NaturalCompare(b, a))
		},
		name, name,
	))

	properties.Property("zero only for equal strings", prop.ForAll(
		func(a, b string) bool {
			return (NaturalCompare(a, b) == 0) == (a == b)
		},
		name, name,
	))

	properties.Property("transitive", prop.ForAll(
		func(a, b, c string) bool {
			if NaturalCompare(a, b) <= 0 && NaturalCompare(b, c) <= 0 {
				return NaturalCompare(a, c) <= 0
			}
			return true
		},
		name, name, name,
	))

	properties.TestingRun(t)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
