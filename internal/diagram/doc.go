// Package diagram replaces fenced diagram blocks in Markdown with image
// references backed by a content-addressed image cache.
//
// A block's identity is derived from its trimmed source, so identical
// diagrams anywhere in a document share one rendered image, and a rerun over
// unchanged text renders nothing. After every block has been resolved the
// store is reconciled: cache entries no block references are removed, other
// files in the store are never touched.
//
// Blocks are rewritten from the last to the first so that earlier offsets
// stay valid while the text grows or shrinks. A block that fails to render
// becomes a numbered placeholder and the run continues.
package diagram
