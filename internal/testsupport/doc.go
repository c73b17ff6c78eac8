// Package testsupport provides fixtures shared by folio's package tests:
// throwaway configs rooted in t.TempDir and helpers that lay out and inspect
// small directory trees.
package testsupport
