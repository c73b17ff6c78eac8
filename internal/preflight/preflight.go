package preflight

import (
	"path/filepath"

	"folio/internal/config"
	"folio/internal/fsutil"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Passed  bool   `json:"passed"`
	Skipped bool   `json:"skipped,omitempty"`
	Detail  string `json:"detail"`
	// Entries counts the immediate children of a source folder.
	Entries int `json:"entries,omitempty"`
}

// RunAll checks the base directory, the destination, and every source folder
// named in cfg, in that order.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := make([]Result, 0, len(cfg.Relocation.Sources)+2)
	results = append(results, CheckBaseDirectory(cfg.Paths.BaseDir))
	results = append(results, CheckDestination(resolvePath(cfg.Paths.BaseDir, cfg.Relocation.Destination)))
	for _, name := range cfg.Relocation.Sources {
		results = append(results, CheckSource(name, resolvePath(cfg.Paths.BaseDir, name)))
	}
	return results
}

// Passed reports whether every result passed. Skipped results count as passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// resolvePath matches the folder lookup a run performs.
func resolvePath(base, name string) string {
	resolved, _ := fsutil.ResolveName(base, name)
	return filepath.Join(base, resolved)
}
