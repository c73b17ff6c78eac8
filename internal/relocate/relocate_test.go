package relocate_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"folio/internal/fsutil"
	"folio/internal/logging"
	"folio/internal/relocate"
	"folio/internal/testsupport"
)

// selectiveMover fails moves whose entry name is listed and delegates the rest.
type selectiveMover struct {
	fail map[string]bool
	next relocate.Mover
}

func (m selectiveMover) Move(src, dst string) error {
	if m.fail[filepath.Base(src)] {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: os.ErrPermission}
	}
	return m.next.Move(src, dst)
}

func newRelocator(t *testing.T, opts ...relocate.Option) (*relocate.Relocator, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	return relocate.New(logger, opts...), &buf
}

func TestRunConsolidatesWithLastWriteWins(t *testing.T) {
	base := filepath.Join(t.TempDir(), "data")
	testsupport.WriteTree(t, base, map[string]string{
		"A/x.txt": "from A",
		"B/y.txt": "y",
		"B/x.txt": "from B",
	})

	r, logs := newRelocator(t)
	report, err := r.Run(context.Background(), relocate.Request{BaseDir: base, Sources: []string{"A", "B"}, Destination: "C"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	dest := filepath.Join(base, "C")
	if got := strings.Join(testsupport.ListNames(t, dest), ","); got != "x.txt,y.txt" {
		t.Fatalf("destination entries = %q", got)
	}
	if got := testsupport.ReadFile(t, filepath.Join(dest, "x.txt")); got != "from B" {
		t.Fatalf("x.txt = %q, want content from the later source", got)
	}
	testsupport.RequireAbsent(t, filepath.Join(base, "A"))
	testsupport.RequireAbsent(t, filepath.Join(base, "B"))

	totals := report.Totals()
	if totals.Moved != 3 || totals.Replaced != 1 || totals.RemovedSources != 2 || totals.Failed != 0 {
		t.Fatalf("unexpected totals %+v", totals)
	}
	if !report.Clean() {
		t.Fatal("expected clean report")
	}
	if report.Outcomes[0].Kind != relocate.KindDestinationCreated {
		t.Fatalf("first outcome = %s", report.Outcomes[0].Kind)
	}
	for _, want := range []string{"created destination directory", "moved file", "deleted empty source folder", "replaced=true"} {
		if !strings.Contains(logs.String(), want) {
			t.Fatalf("log transcript missing %q:\n%s", want, logs.String())
		}
	}
}

func TestRunCreatesMissingBaseAndDestination(t *testing.T) {
	base := filepath.Join(t.TempDir(), "not", "yet", "there")

	r, _ := newRelocator(t)
	report, err := r.Run(context.Background(), relocate.Request{BaseDir: base, Sources: []string{"A"}, Destination: "kneel"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	info, err := os.Stat(filepath.Join(base, "kneel"))
	if err != nil || !info.IsDir() {
		t.Fatalf("destination not created: %v", err)
	}
	if report.Totals().SkippedSources != 1 {
		t.Fatalf("expected missing source to be skipped, got %+v", report.Totals())
	}
}

func TestRunReportsExistingDestination(t *testing.T) {
	base := t.TempDir()
	testsupport.WriteTree(t, base, map[string]string{"C/keep.txt": "keep", "A/new.txt": "new"})

	r, logs := newRelocator(t)
	report, err := r.Run(context.Background(), relocate.Request{BaseDir: base, Sources: []string{"A"}, Destination: "C"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Outcomes[0].Kind != relocate.KindDestinationExists {
		t.Fatalf("first outcome = %s", report.Outcomes[0].Kind)
	}
	if got := strings.Join(testsupport.ListNames(t, filepath.Join(base, "C")), ","); got != "keep.txt,new.txt" {
		t.Fatalf("destination entries = %q", got)
	}
	if !strings.Contains(logs.String(), "destination directory already exists") {
		t.Fatalf("missing exists diagnostic:\n%s", logs.String())
	}
}

func TestRunDestinationFailureIsFatal(t *testing.T) {
	base := t.TempDir()
	testsupport.WriteTree(t, base, map[string]string{"C": "I am a file", "A/x.txt": "x"})

	r, _ := newRelocator(t)
	report, err := r.Run(context.Background(), relocate.Request{BaseDir: base, Sources: []string{"A"}, Destination: "C"})
	if !errors.Is(err, relocate.ErrDestination) {
		t.Fatalf("expected ErrDestination, got %v", err)
	}
	if len(report.Outcomes) != 0 {
		t.Fatalf("no source should be processed, got %+v", report.Outcomes)
	}
	if got := testsupport.ReadFile(t, filepath.Join(base, "A", "x.txt")); got != "x" {
		t.Fatalf("source entry disturbed: %q", got)
	}
}

func TestRunRejectsEmptyDestinationName(t *testing.T) {
	r, _ := newRelocator(t)
	_, err := r.Run(context.Background(), relocate.Request{BaseDir: t.TempDir(), Sources: []string{"A"}, Destination: ""})
	if !errors.Is(err, relocate.ErrDestination) {
		t.Fatalf("expected ErrDestination, got %v", err)
	}
}

func TestRunSkipsMissingAndNonDirectorySources(t *testing.T) {
	base := t.TempDir()
	testsupport.WriteTree(t, base, map[string]string{
		"plain":       "not a folder",
		"Burst/a.mp4": "a",
	})

	r, _ := newRelocator(t)
	report, err := r.Run(context.Background(), relocate.Request{
		BaseDir:     base,
		Sources:     []string{"Missing", "plain", "Burst"},
		Destination: "kneel",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	skipped := report.Folder("Missing")
	if len(skipped) != 1 || skipped[0].Kind != relocate.KindSourceSkipped || !errors.Is(skipped[0].Err, relocate.ErrSourceUnavailable) {
		t.Fatalf("unexpected outcomes for missing folder: %+v", skipped)
	}
	if plain := report.Folder("plain"); len(plain) != 1 || plain[0].Kind != relocate.KindSourceSkipped {
		t.Fatalf("unexpected outcomes for non-directory: %+v", plain)
	}
	if got := testsupport.ReadFile(t, filepath.Join(base, "plain")); got != "not a folder" {
		t.Fatalf("non-directory source disturbed: %q", got)
	}
	if got := testsupport.ReadFile(t, filepath.Join(base, "kneel", "a.mp4")); got != "a" {
		t.Fatalf("later source not processed: %q", got)
	}
}

func TestRunMoveFailureRetainsSource(t *testing.T) {
	base := t.TempDir()
	testsupport.WriteTree(t, base, map[string]string{
		"A/locked.txt": "locked",
		"A/ok.txt":     "ok",
		"B/other.txt":  "other",
	})

	r, logs := newRelocator(t, relocate.WithMover(selectiveMover{
		fail: map[string]bool{"locked.txt": true},
		next: fsutil.NewMover(),
	}))
	report, err := r.Run(context.Background(), relocate.Request{BaseDir: base, Sources: []string{"A", "B"}, Destination: "C"})
	if err != nil {
		t.Fatalf("Run returned error for a per-item failure: %v", err)
	}

	if got := testsupport.ReadFile(t, filepath.Join(base, "A", "locked.txt")); got != "locked" {
		t.Fatalf("failed entry should stay in source: %q", got)
	}
	testsupport.RequireAbsent(t, filepath.Join(base, "C", "locked.txt"))
	if got := testsupport.ReadFile(t, filepath.Join(base, "C", "ok.txt")); got != "ok" {
		t.Fatalf("sibling entry not moved: %q", got)
	}
	testsupport.RequireAbsent(t, filepath.Join(base, "B"))

	var failed, retained bool
	for _, o := range report.Folder("A") {
		switch o.Kind {
		case relocate.KindMoveFailed:
			failed = errors.Is(o.Err, relocate.ErrMove) && errors.Is(o.Err, os.ErrPermission) && o.Error != ""
		case relocate.KindSourceRetained:
			retained = true
		case relocate.KindSourceRemoved:
			t.Fatal("non-empty source folder must not be removed")
		}
	}
	if !failed || !retained {
		t.Fatalf("expected move_failed and source_retained outcomes, got %+v", report.Folder("A"))
	}
	if report.Clean() {
		t.Fatal("report with a failed move should not be clean")
	}
	if !strings.Contains(logs.String(), "event_type=move_failed") {
		t.Fatalf("missing structured warning:\n%s", logs.String())
	}
}

func TestRunMovesSubdirectoriesWholesale(t *testing.T) {
	base := t.TempDir()
	testsupport.WriteTree(t, base, map[string]string{
		"Pickup/take1/a.mp4":      "aaaa",
		"Pickup/take1/deep/b.mp4": "bb",
	})

	r, _ := newRelocator(t)
	report, err := r.Run(context.Background(), relocate.Request{BaseDir: base, Sources: []string{"Pickup"}, Destination: "kneel"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := testsupport.ReadFile(t, filepath.Join(base, "kneel", "take1", "deep", "b.mp4")); got != "bb" {
		t.Fatalf("nested content = %q", got)
	}
	moved := report.Folder("Pickup")[0]
	if moved.Kind != relocate.KindMoved || moved.EntryType != relocate.EntryDirectory || moved.Size != 6 {
		t.Fatalf("unexpected directory outcome %+v", moved)
	}
	testsupport.RequireAbsent(t, filepath.Join(base, "Pickup"))
}

func TestRunIsIdempotent(t *testing.T) {
	base := t.TempDir()
	testsupport.WriteTree(t, base, map[string]string{"A/1": "1", "B/2": "2"})
	req := relocate.Request{BaseDir: base, Sources: []string{"A", "B"}, Destination: "C"}

	r, _ := newRelocator(t)
	if _, err := r.Run(context.Background(), req); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := r.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}

	totals := second.Totals()
	if totals.Moved != 0 || totals.SkippedSources != 2 {
		t.Fatalf("second run should be a no-op, got %+v", totals)
	}
	if second.Outcomes[0].Kind != relocate.KindDestinationExists {
		t.Fatalf("second run first outcome = %s", second.Outcomes[0].Kind)
	}
	if got := strings.Join(testsupport.ListNames(t, filepath.Join(base, "C")), ","); got != "1,2" {
		t.Fatalf("destination entries = %q", got)
	}
}

func TestRunDryRunLeavesTreeUntouched(t *testing.T) {
	base := t.TempDir()
	testsupport.WriteTree(t, base, map[string]string{"A/x.txt": "x", "A/sub/y.txt": "yy"})

	r, logs := newRelocator(t)
	report, err := r.Run(context.Background(), relocate.Request{BaseDir: base, Sources: []string{"A"}, Destination: "C", DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	testsupport.RequireAbsent(t, filepath.Join(base, "C"))
	if got := strings.Join(testsupport.ListNames(t, filepath.Join(base, "A")), ","); got != "sub,x.txt" {
		t.Fatalf("source changed during dry run: %q", got)
	}
	totals := report.Totals()
	if totals.Planned != 2 || totals.Moved != 0 || totals.RemovedSources != 0 || totals.BytesMoved != 3 {
		t.Fatalf("unexpected dry-run totals %+v", totals)
	}
	if !strings.Contains(logs.String(), "would move file") {
		t.Fatalf("missing dry-run diagnostics:\n%s", logs.String())
	}
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	base := t.TempDir()
	testsupport.WriteTree(t, base, map[string]string{"A/x.txt": "x"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, _ := newRelocator(t)
	report, err := r.Run(ctx, relocate.Request{BaseDir: base, Sources: []string{"A"}, Destination: "C"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report.Totals().Moved != 0 {
		t.Fatalf("no entry should move after cancellation: %+v", report.Totals())
	}
	if got := testsupport.ReadFile(t, filepath.Join(base, "A", "x.txt")); got != "x" {
		t.Fatalf("source disturbed: %q", got)
	}
}

func TestRunRecordsLargeFileSize(t *testing.T) {
	base := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(base, "Detonate", "clip.mov"), 100_000)

	r, _ := newRelocator(t)
	report, err := r.Run(context.Background(), relocate.Request{BaseDir: base, Sources: []string{"Detonate"}, Destination: "kneel"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := report.Totals().BytesMoved; got != 100_000 {
		t.Fatalf("BytesMoved = %d", got)
	}
	if report.Duration() < 0 {
		t.Fatalf("negative duration %s", report.Duration())
	}
}

func TestRunFindsSourceByExactOrEquivalentName(t *testing.T) {
	base := t.TempDir()
	decomposed := "Cafe\u0301"
	testsupport.WriteTree(t, base, map[string]string{
		decomposed + "/x.txt": "x",
		" Burst /y.txt":       "y",
	})

	r, logs := newRelocator(t)
	report, err := r.Run(context.Background(), relocate.Request{
		BaseDir:     base,
		Sources:     []string{"Caf\u00e9", " Burst "},
		Destination: "C",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := testsupport.ReadFile(t, filepath.Join(base, "C", "x.txt")); got != "x" {
		t.Fatalf("C/x.txt = %q", got)
	}
	if got := testsupport.ReadFile(t, filepath.Join(base, "C", "y.txt")); got != "y" {
		t.Fatalf("C/y.txt = %q", got)
	}
	testsupport.RequireAbsent(t, filepath.Join(base, decomposed))
	testsupport.RequireAbsent(t, filepath.Join(base, " Burst "))
	if totals := report.Totals(); totals.SkippedSources != 0 || totals.RemovedSources != 2 {
		t.Fatalf("unexpected totals %+v", totals)
	}
	if !strings.Contains(logs.String(), "matched source folder by unicode equivalence") {
		t.Fatalf("missing equivalence diagnostic:\n%s", logs.String())
	}
}

func TestRunRecordsCleanupFailure(t *testing.T) {
	base := t.TempDir()
	testsupport.WriteTree(t, base, map[string]string{"A/x.txt": "x", "B/y.txt": "y"})

	removeErr := errors.New("device busy")
	r, logs := newRelocator(t, relocate.WithDirRemover(func(path string) error {
		if filepath.Base(path) == "A" {
			return &os.PathError{Op: "remove", Path: path, Err: removeErr}
		}
		return os.Remove(path)
	}))
	report, err := r.Run(context.Background(), relocate.Request{BaseDir: base, Sources: []string{"A", "B"}, Destination: "C"})
	if err != nil {
		t.Fatalf("Run returned error for a cleanup failure: %v", err)
	}

	if names := testsupport.ListNames(t, filepath.Join(base, "A")); len(names) != 0 {
		t.Fatalf("A should be emptied, has %v", names)
	}
	testsupport.RequireAbsent(t, filepath.Join(base, "B"))

	var cleanupFailed bool
	for _, o := range report.Folder("A") {
		if o.Kind == relocate.KindCleanupFailed {
			cleanupFailed = errors.Is(o.Err, relocate.ErrCleanup) && errors.Is(o.Err, removeErr)
		}
	}
	if !cleanupFailed {
		t.Fatalf("expected cleanup_failed outcome, got %+v", report.Folder("A"))
	}
	if totals := report.Totals(); totals.CleanupFailures != 1 || totals.RemovedSources != 1 || totals.Moved != 2 {
		t.Fatalf("unexpected totals %+v", totals)
	}
	if !strings.Contains(logs.String(), "event_type=cleanup_failed") {
		t.Fatalf("missing structured warning:\n%s", logs.String())
	}
}

func TestRunDirectoryCollisionWithNonEmptyDirectoryFails(t *testing.T) {
	base := t.TempDir()
	testsupport.WriteTree(t, base, map[string]string{
		"A/take1/new.mp4": "new",
		"A/loose.mp4":     "loose",
		"C/take1/old.mp4": "old",
	})

	r, _ := newRelocator(t)
	report, err := r.Run(context.Background(), relocate.Request{BaseDir: base, Sources: []string{"A"}, Destination: "C"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := testsupport.ReadFile(t, filepath.Join(base, "A", "take1", "new.mp4")); got != "new" {
		t.Fatalf("colliding directory should stay in source: %q", got)
	}
	if got := testsupport.ReadFile(t, filepath.Join(base, "C", "take1", "old.mp4")); got != "old" {
		t.Fatalf("existing destination directory disturbed: %q", got)
	}
	testsupport.RequireAbsent(t, filepath.Join(base, "C", "take1", "new.mp4"))
	if got := testsupport.ReadFile(t, filepath.Join(base, "C", "loose.mp4")); got != "loose" {
		t.Fatalf("sibling file not moved: %q", got)
	}

	var failed, retained bool
	for _, o := range report.Folder("A") {
		switch o.Kind {
		case relocate.KindMoveFailed:
			failed = o.EntryType == relocate.EntryDirectory && errors.Is(o.Err, relocate.ErrMove)
		case relocate.KindSourceRetained:
			retained = true
		}
	}
	if !failed || !retained {
		t.Fatalf("expected directory move_failed and source_retained, got %+v", report.Folder("A"))
	}
}
