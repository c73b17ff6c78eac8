package relocate

import (
	"errors"
	"time"
)

var (
	// ErrDestination marks the fatal failure to provide the destination folder.
	ErrDestination = errors.New("destination unavailable")
	// ErrSourceUnavailable marks a source folder that is missing, not a
	// directory, or cannot be listed.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrMove marks a single entry that could not be moved.
	ErrMove = errors.New("move failed")
	// ErrCleanup marks a source folder that could not be removed.
	ErrCleanup = errors.New("cleanup failed")
)

// Kind classifies one step of a run.
type Kind string

const (
	KindDestinationCreated Kind = "destination_created"
	KindDestinationExists  Kind = "destination_exists"
	KindSourceSkipped      Kind = "source_skipped"
	KindPlanned            Kind = "planned"
	KindMoved              Kind = "moved"
	KindMoveFailed         Kind = "move_failed"
	KindSourceRemoved      Kind = "source_removed"
	KindSourceRetained     Kind = "source_retained"
	KindCleanupFailed      Kind = "cleanup_failed"
)

// EntryType is the filesystem type of a moved entry.
type EntryType string

const (
	EntryFile      EntryType = "file"
	EntryDirectory EntryType = "directory"
	EntrySymlink   EntryType = "symlink"
	EntryOther     EntryType = "other"
)

// Outcome records the result of one step.
type Outcome struct {
	Kind Kind `json:"kind"`
	// Folder is the source folder name; empty for destination outcomes.
	Folder    string    `json:"folder,omitempty"`
	Source    string    `json:"source,omitempty"`
	Target    string    `json:"target,omitempty"`
	EntryType EntryType `json:"entry_type,omitempty"`
	Size      int64     `json:"size,omitempty"`
	// Replaced is set when a same-named entry already existed at Target.
	Replaced bool   `json:"replaced,omitempty"`
	Err      error  `json:"-"`
	Error    string `json:"error,omitempty"`
}

// Report is the ordered transcript of a run.
type Report struct {
	BaseDir     string    `json:"base_dir"`
	Destination string    `json:"destination"`
	DryRun      bool      `json:"dry_run"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Outcomes    []Outcome `json:"outcomes"`
}

// Totals aggregates a Report.
type Totals struct {
	Moved           int   `json:"moved"`
	Planned         int   `json:"planned"`
	BytesMoved      int64 `json:"bytes_moved"`
	Replaced        int   `json:"replaced"`
	Failed          int   `json:"failed"`
	SkippedSources  int   `json:"skipped_sources"`
	RemovedSources  int   `json:"removed_sources"`
	RetainedSources int   `json:"retained_sources"`
	CleanupFailures int   `json:"cleanup_failures"`
}

func (r *Report) add(o Outcome) {
	if o.Err != nil {
		o.Error = o.Err.Error()
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Totals counts outcomes by kind.
func (r Report) Totals() Totals {
	var t Totals
	for _, o := range r.Outcomes {
		switch o.Kind {
		case KindMoved:
			t.Moved++
			t.BytesMoved += o.Size
			if o.Replaced {
				t.Replaced++
			}
		case KindPlanned:
			t.Planned++
			t.BytesMoved += o.Size
		case KindMoveFailed:
			t.Failed++
		case KindSourceSkipped:
			t.SkippedSources++
		case KindSourceRemoved:
			t.RemovedSources++
		case KindSourceRetained:
			t.RetainedSources++
		case KindCleanupFailed:
			t.CleanupFailures++
		}
	}
	return t
}

// Clean reports whether the run finished without any per-item or cleanup
// failure. Skipped sources do not count as failures.
func (r Report) Clean() bool {
	t := r.Totals()
	return t.Failed == 0 && t.CleanupFailures == 0
}

// Duration returns the wall time of the run.
func (r Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Folder returns the outcomes that belong to one source folder, in order.
func (r Report) Folder(name string) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Folder == name {
			out = append(out, o)
		}
	}
	return out
}
