// Package process runs external tools (the diagram renderer, the document
// converter) with context cancellation and process-tree cleanup.
package process
