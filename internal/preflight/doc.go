// Package preflight inspects the directories a relocation run will touch
// without changing anything.
//
// The CLI "folio check" command renders these results so an operator can see
// which sources exist, whether the destination is already present, and
// whether the base directory is writable before moving anything. Missing
// sources are reported as skipped, not failed, because a run skips them too.
package preflight
