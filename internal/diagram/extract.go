package diagram

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultFence is the info string that marks a diagram code fence.
const DefaultFence = "mermaid"

// ErrInvalidFence indicates an unusable fence language tag.
var ErrInvalidFence = errors.New("invalid diagram fence")

// Block is one fenced diagram found in the combined text.
// Start and End are byte offsets of the whole fence, End exclusive.
type Block struct {
	Index   int // 1-based, document order
	Start   int
	End     int
	Content string
}

// Extractor locates fenced diagram blocks.
type Extractor struct {
	fence   string
	pattern *regexp.Regexp
}

// NewExtractor builds an extractor for ```<fence> blocks.
// The fence must be a single word without whitespace or backticks.
func NewExtractor(fence string) (*Extractor, error) {
	if fence == "" || strings.ContainsAny(fence, " \t\r\n`") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFence, fence)
	}

	// Group 1 is the body (whole lines), group 2 the closing fence. The
	// closing fence must start and end its own line, so "```python" never
	// closes a diagram and an empty block cannot reach into the next one.
	expr := "```" + regexp.QuoteMeta(fence) + `[ \t]*\r?\n((?:[^\n]*\n)*?)(` + "```" + `[ \t]*)(?:\r?\n|$)`
	return &Extractor{
		fence:   fence,
		pattern: regexp.MustCompile(expr),
	}, nil
}

// Fence returns the language tag the extractor matches.
func (e *Extractor) Fence() string {
	return e.fence
}

// Extract returns the diagram blocks of text in document order.
// Unterminated fences are not matched and blocks with blank bodies are skipped;
// both pass through the pipeline as plain text. Skipped blocks take no Index,
// so numbering (and failure placeholders) counts only the returned blocks.
func (e *Extractor) Extract(text string) []Block {
	matches := e.pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	blocks := make([]Block, 0, len(matches))
	for _, m := range matches {
		content := strings.TrimSpace(text[m[2]:m[3]])
		if content == "" {
			continue
		}
		blocks = append(blocks, Block{
			Index:   len(blocks) + 1,
			Start:   m[0],
			End:     m[5],
			Content: content,
		})
	}
	if len(blocks) == 0 {
		return nil
	}
	return blocks
}
