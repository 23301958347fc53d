package diagram

import (
	"fmt"
	"sort"
	"strings"
)

// Edit replaces text[Start:End] with Text.
type Edit struct {
	Start int
	End   int
	Text  string
}

// ImageMarkdown returns the Markdown image reference for ref.
func ImageMarkdown(ref string) string {
	return "![](" + ref + ")"
}

// FailurePlaceholder returns the visible stand-in for a block that failed to render.
func FailurePlaceholder(index int) string {
	return fmt.Sprintf("[Diagram %d - Generation Failed]", index)
}

// Substitute replaces every block span of text with its image reference,
// or with a failure placeholder when the render failed.
// blocks and results are parallel slices.
func Substitute(text string, blocks []Block, results []Result) string {
	if len(blocks) == 0 {
		return text
	}

	edits := make([]Edit, 0, len(blocks))
	for i, b := range blocks {
		replacement := FailurePlaceholder(b.Index)
		if i < len(results) && results[i].OK() {
			replacement = ImageMarkdown(results[i].Ref)
		}
		edits = append(edits, Edit{Start: b.Start, End: b.End, Text: replacement})
	}
	return ApplyEdits(text, edits)
}

// ApplyEdits applies non-overlapping edits to text. Edits are processed from
// the highest offset down, so no edit shifts the offsets of one still pending.
// Text outside the edited spans is copied unchanged.
// Edits that overlap a previously applied one, or fall outside text, are dropped.
func ApplyEdits(text string, edits []Edit) string {
	if len(edits) == 0 {
		return text
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start > sorted[j].Start })

	// Segments are collected back to front, then joined in reverse.
	segments := make([]string, 0, 2*len(sorted)+1)
	tail := len(text)
	for _, e := range sorted {
		if e.Start < 0 || e.End > tail || e.Start > e.End {
			continue
		}
		segments = append(segments, text[e.End:tail], e.Text)
		tail = e.Start
	}
	segments = append(segments, text[:tail])

	var b strings.Builder
	b.Grow(len(text))
	for i := len(segments) - 1; i >= 0; i-- {
		b.WriteString(segments[i])
	}
	return b.String()
}
