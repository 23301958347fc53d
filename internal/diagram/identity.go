package diagram

import (
	"crypto/md5" // #nosec G501 -- cache key, not a security boundary
	"encoding/hex"
	"strings"
)

// IdentityLength is the number of hex characters kept from the digest.
const IdentityLength = 8

// Identity is the content-addressed key of a diagram. It names the cache
// entry on disk and the image referenced from the rewritten text.
type Identity string

// Identify derives the identity of a diagram from its source.
// Whitespace runs (newlines included) collapse to a single space and the
// ends are trimmed before hashing, so reformatted diagrams share an identity.
func Identify(content string) Identity {
	normalized := NormalizeContent(content)
	sum := md5.Sum([]byte(normalized)) // #nosec G401 -- see import
	return Identity(hex.EncodeToString(sum[:])[:IdentityLength])
}

// NormalizeContent collapses every whitespace run to one space and trims both ends.
func NormalizeContent(content string) string {
	return strings.Join(strings.Fields(content), " ")
}

// String implements fmt.Stringer.
func (id Identity) String() string {
	return string(id)
}
