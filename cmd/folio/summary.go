package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"folio/internal/relocate"
)

func renderRunSummary(report relocate.Report, sources []string) string {
	rows := make([][]string, 0, len(sources))
	for _, name := range sources {
		rows = append(rows, folderRow(name, report.Folder(name)))
	}

	var b strings.Builder
	b.WriteString(renderTable(
		[]string{"Folder", "Moved", "Failed", "Size", "Folder result"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
	b.WriteByte('\n')

	totals := report.Totals()
	verb := "Moved"
	count := totals.Moved
	if report.DryRun {
		verb = "Would move"
		count = totals.Planned
	}
	fmt.Fprintf(&b, "%s %d %s (%s) into %s", verb, count, plural(count, "entry", "entries"), humanize.Bytes(uint64(totals.BytesMoved)), report.Destination)
	if totals.Replaced > 0 {
		fmt.Fprintf(&b, ", %d replaced", totals.Replaced)
	}
	if totals.Failed > 0 {
		fmt.Fprintf(&b, ", %d failed", totals.Failed)
	}
	b.WriteString(".\n")
	if !report.DryRun {
		fmt.Fprintf(&b, "Removed %d of %d source folders in %s.\n", totals.RemovedSources, len(sources), report.Duration().Round(time.Millisecond))
	}
	return b.String()
}

func folderRow(name string, outcomes []relocate.Outcome) []string {
	var moved, failed int
	var size int64
	result := "-"
	for _, o := range outcomes {
		switch o.Kind {
		case relocate.KindMoved:
			moved++
			size += o.Size
		case relocate.KindPlanned:
			moved++
			size += o.Size
			result = "would be emptied"
		case relocate.KindMoveFailed:
			failed++
		case relocate.KindSourceSkipped:
			result = "skipped (missing)"
		case relocate.KindSourceRemoved:
			result = "deleted"
		case relocate.KindSourceRetained:
			result = "kept (not empty)"
		case relocate.KindCleanupFailed:
			result = "kept (delete failed)"
		}
	}
	return []string{name, strconv.Itoa(moved), strconv.Itoa(failed), humanize.Bytes(uint64(size)), result}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
