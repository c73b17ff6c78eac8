// Package relocate consolidates the entries of several source folders into a
// single destination folder and removes the sources left empty.
//
// A run processes sources in the order given. Each source is listed once, up
// front, and every entry of that snapshot is moved with a single rename (or a
// verified copy when the rename crosses filesystems). Entries that collide by
// name replace what is already at the destination, so the last source wins.
//
// Only a destination that cannot be created stops a run. Every other failure
// is recorded as an Outcome, logged, and skipped, leaving the affected entry
// or folder where it was. There is no rollback.
package relocate
