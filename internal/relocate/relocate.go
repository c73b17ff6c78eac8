package relocate

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"folio/internal/fsutil"
	"folio/internal/logging"
)

// Mover relocates one filesystem entry. Implementations must leave src in
// place when they return an error.
type Mover interface {
	Move(src, dst string) error
}

// Request describes one consolidation run. Sources and Destination are folder
// names relative to BaseDir.
type Request struct {
	BaseDir     string
	Sources     []string
	Destination string
	DryRun      bool
}

// Relocator moves source folder entries into a destination folder.
type Relocator struct {
	logger    *slog.Logger
	mover     Mover
	removeDir func(path string) error
	now       func() time.Time
}

// Option customizes a Relocator.
type Option func(*Relocator)

// WithMover replaces the default rename-with-copy-fallback mover.
func WithMover(m Mover) Option {
	return func(r *Relocator) {
		if m != nil {
			r.mover = m
		}
	}
}

// WithDirRemover replaces os.Remove for deleting emptied source folders.
func WithDirRemover(remove func(path string) error) Option {
	return func(r *Relocator) {
		if remove != nil {
			r.removeDir = remove
		}
	}
}

// WithClock overrides the time source used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Relocator) {
		if now != nil {
			r.now = now
		}
	}
}

// New constructs a Relocator. A nil logger discards diagnostics.
func New(logger *slog.Logger, opts ...Option) *Relocator {
	r := &Relocator{
		logger:    logging.NewComponentLogger(logger, "relocate"),
		mover:     fsutil.NewMover(),
		removeDir: os.Remove,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run consolidates req.Sources into req.Destination. The returned error is
// non-nil only when the destination cannot be provided (wrapping
// ErrDestination) or ctx is cancelled; every other failure is recorded in the
// Report and the run continues.
func (r *Relocator) Run(ctx context.Context, req Request) (Report, error) {
	report := Report{
		BaseDir: req.BaseDir,
		DryRun:  req.DryRun,
	}
	report.StartedAt = r.now()

	if req.Destination == "" {
		report.FinishedAt = r.now()
		return report, fmt.Errorf("%w: destination folder name is empty", ErrDestination)
	}
	destName, _ := fsutil.ResolveName(req.BaseDir, req.Destination)
	destPath := filepath.Join(req.BaseDir, destName)
	report.Destination = destPath

	if err := r.ensureDestination(&report, destPath, req.DryRun); err != nil {
		report.FinishedAt = r.now()
		return report, err
	}

	for _, name := range req.Sources {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = r.now()
			return report, err
		}
		if err := r.relocateSource(ctx, &report, req.BaseDir, name, destPath, req.DryRun); err != nil {
			report.FinishedAt = r.now()
			return report, err
		}
	}

	report.FinishedAt = r.now()
	totals := report.Totals()
	r.logger.Info("relocation finished",
		logging.String("destination", destPath),
		logging.Int("moved", totals.Moved),
		logging.Bytes("bytes_moved", totals.BytesMoved),
		logging.Int("failed", totals.Failed),
		logging.Int("removed_sources", totals.RemovedSources),
		logging.Int("skipped_sources", totals.SkippedSources),
		logging.Bool("dry_run", req.DryRun),
		logging.Duration("duration", report.Duration()),
	)
	return report, nil
}

func (r *Relocator) ensureDestination(report *Report, destPath string, dryRun bool) error {
	info, err := os.Stat(destPath)
	switch {
	case err == nil && info.IsDir():
		report.add(Outcome{Kind: KindDestinationExists, Target: destPath})
		r.logger.Info("destination directory already exists", logging.String("path", destPath))
		return nil
	case err == nil:
		err = fmt.Errorf("%w: %s exists and is not a directory", ErrDestination, destPath)
		logging.ErrorWithContext(r.logger, "destination is not a directory", "destination_failed",
			logging.String("path", destPath),
			logging.String(logging.FieldErrorHint, "rename or remove the file occupying the destination name"),
		)
		return err
	case !os.IsNotExist(err):
		logging.ErrorWithContext(r.logger, "cannot inspect destination directory", "destination_failed",
			logging.String("path", destPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the base directory"),
		)
		return fmt.Errorf("%w: stat %s: %w", ErrDestination, destPath, err)
	}

	if dryRun {
		report.add(Outcome{Kind: KindDestinationCreated, Target: destPath})
		r.logger.Info("would create destination directory", logging.String("path", destPath))
		return nil
	}

	if err := os.MkdirAll(destPath, 0o755); err != nil {
		logging.ErrorWithContext(r.logger, "failed to create destination directory", "destination_failed",
			logging.String("path", destPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the base directory"),
		)
		return fmt.Errorf("%w: create %s: %w", ErrDestination, destPath, err)
	}
	report.add(Outcome{Kind: KindDestinationCreated, Target: destPath})
	r.logger.Info("created destination directory", logging.String("path", destPath))
	return nil
}

func (r *Relocator) relocateSource(ctx context.Context, report *Report, baseDir, name, destPath string, dryRun bool) error {
	logger := r.logger.With(logging.String("folder", name))
	resolved, _ := fsutil.ResolveName(baseDir, name)
	srcPath := filepath.Join(baseDir, resolved)
	if resolved != name {
		logger.Info("matched source folder by unicode equivalence", logging.String("path", srcPath))
	}

	info, err := os.Stat(srcPath)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("%s is not a directory", srcPath)
		}
		report.add(Outcome{Kind: KindSourceSkipped, Folder: name, Source: srcPath, Err: fmt.Errorf("%w: %w", ErrSourceUnavailable, err)})
		logger.Info("source folder does not exist or is not a directory, skipping",
			logging.String("path", srcPath),
			logging.String(logging.FieldEventType, "source_skipped"),
		)
		return nil
	}

	// os.ReadDir returns a sorted snapshot; moves below never mutate it.
	entries, err := os.ReadDir(srcPath)
	if err != nil {
		report.add(Outcome{Kind: KindSourceSkipped, Folder: name, Source: srcPath, Err: fmt.Errorf("%w: %w", ErrSourceUnavailable, err)})
		logging.WarnWithContext(logger, "cannot list source folder, skipping", "source_skipped",
			logging.String("path", srcPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check read permission on the source folder"),
			logging.String(logging.FieldImpact, "folder contents left in place"),
		)
		return nil
	}

	logger.Info("processing source folder", logging.String("path", srcPath), logging.Int("entries", len(entries)))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.moveEntry(report, logger, name, srcPath, destPath, entry, dryRun)
	}

	if dryRun {
		return nil
	}
	r.cleanupSource(report, logger, name, srcPath)
	return nil
}

func (r *Relocator) moveEntry(report *Report, logger *slog.Logger, folder, srcPath, destPath string, entry fs.DirEntry, dryRun bool) {
	source := filepath.Join(srcPath, entry.Name())
	target := filepath.Join(destPath, entry.Name())
	entryType, size := describeEntry(source, entry)

	_, statErr := os.Lstat(target)
	replaced := statErr == nil

	attrs := []logging.Attr{
		logging.String("source", source),
		logging.String("target", target),
		logging.String("entry_type", string(entryType)),
	}
	if entryType == EntryFile || entryType == EntryDirectory {
		attrs = append(attrs, logging.Bytes("size", size))
	}
	if replaced {
		attrs = append(attrs, logging.Bool("replaced", true))
	}

	if dryRun {
		report.add(Outcome{Kind: KindPlanned, Folder: folder, Source: source, Target: target, EntryType: entryType, Size: size, Replaced: replaced})
		logger.Info("would move "+string(entryType), logging.Args(attrs...)...)
		return
	}

	if err := r.mover.Move(source, target); err != nil {
		report.add(Outcome{Kind: KindMoveFailed, Folder: folder, Source: source, Target: target, EntryType: entryType, Size: size, Err: fmt.Errorf("%w: %w", ErrMove, err)})
		attrs = append(attrs,
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions and free space on the destination"),
			logging.String(logging.FieldImpact, "entry left in its source folder"),
		)
		logging.WarnWithContext(logger, "failed to move "+string(entryType), "move_failed", attrs...)
		return
	}

	report.add(Outcome{Kind: KindMoved, Folder: folder, Source: source, Target: target, EntryType: entryType, Size: size, Replaced: replaced})
	logger.Info("moved "+string(entryType), logging.Args(attrs...)...)
}

func (r *Relocator) cleanupSource(report *Report, logger *slog.Logger, folder, srcPath string) {
	empty, err := fsutil.IsEmptyDir(srcPath)
	if err != nil {
		report.add(Outcome{Kind: KindCleanupFailed, Folder: folder, Source: srcPath, Err: fmt.Errorf("%w: %w", ErrCleanup, err)})
		logging.WarnWithContext(logger, "cannot re-list source folder", "cleanup_failed",
			logging.String("path", srcPath),
			logging.Error(err),
			logging.String(logging.FieldImpact, "source folder left in place"),
		)
		return
	}
	if !empty {
		report.add(Outcome{Kind: KindSourceRetained, Folder: folder, Source: srcPath})
		logger.Info("source folder not empty, not deleted", logging.String("path", srcPath))
		return
	}
	if err := r.removeDir(srcPath); err != nil {
		report.add(Outcome{Kind: KindCleanupFailed, Folder: folder, Source: srcPath, Err: fmt.Errorf("%w: %w", ErrCleanup, err)})
		logging.WarnWithContext(logger, "failed to delete empty source folder", "cleanup_failed",
			logging.String("path", srcPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check write permission on the base directory"),
			logging.String(logging.FieldImpact, "empty source folder left in place"),
		)
		return
	}
	report.add(Outcome{Kind: KindSourceRemoved, Folder: folder, Source: srcPath})
	logger.Info("deleted empty source folder", logging.String("path", srcPath))
}

func describeEntry(path string, entry fs.DirEntry) (EntryType, int64) {
	mode := entry.Type()
	switch {
	case mode&fs.ModeSymlink != 0:
		return EntrySymlink, 0
	case mode.IsDir():
		return EntryDirectory, fsutil.TreeSize(path)
	case mode.IsRegular():
		if info, err := entry.Info(); err == nil {
			return EntryFile, info.Size()
		}
		return EntryFile, 0
	default:
		return EntryOther, 0
	}
}
