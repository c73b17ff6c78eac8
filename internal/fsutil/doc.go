// Package fsutil holds the filesystem primitives folio builds on: verified
// copies, recursive tree copies, and a move that falls back to copy-then-delete
// when a rename crosses filesystems.
package fsutil
