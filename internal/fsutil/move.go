package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// Mover relocates files and directory trees. The zero value is not usable;
// call NewMover.
type Mover struct {
	rename   func(oldpath, newpath string) error
	copyFile func(src, dst string, mode os.FileMode) error
	copyTree func(src, dst string) error
}

// NewMover returns a Mover backed by os.Rename.
func NewMover() *Mover {
	return &Mover{rename: os.Rename, copyFile: CopyFileVerified, copyTree: CopyTree}
}

var defaultMover = NewMover()

// Move relocates src to dst using the default Mover.
func Move(src, dst string) error {
	return defaultMover.Move(src, dst)
}

// Move renames src to dst. A regular file at dst is replaced; a directory at
// dst is replaced only when it is empty, matching rename(2). When src and dst
// live on different filesystems the entry is copied to a hidden sibling of
// dst, renamed over dst once complete, and only then removed from src. A
// failed copy leaves both src and any existing dst untouched.
func (m *Mover) Move(src, dst string) error {
	err := m.rename(src, dst)
	if err == nil || !isCrossDevice(err) {
		return err
	}

	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	mode := info.Mode()

	switch {
	case mode.IsDir():
		err = checkDirTarget(src, dst)
	case mode&fs.ModeSymlink != 0, mode.IsRegular():
		err = checkFileTarget(src, dst)
	default:
		err = fmt.Errorf("move %s across devices: unsupported file type %s", src, mode.Type())
	}
	if err != nil {
		return err
	}

	staged := stagingPath(dst)
	if err := m.copyEntry(src, staged, mode); err != nil {
		_ = os.RemoveAll(staged)
		return fmt.Errorf("copy across devices: %w", err)
	}
	if err := os.Rename(staged, dst); err != nil {
		_ = os.RemoveAll(staged)
		return fmt.Errorf("place copied entry: %w", err)
	}

	if mode.IsDir() {
		err = os.RemoveAll(src)
	} else {
		err = os.Remove(src)
	}
	if err != nil {
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

func (m *Mover) copyEntry(src, dst string, mode os.FileMode) error {
	switch {
	case mode.IsDir():
		return m.copyTree(src, dst)
	case mode&fs.ModeSymlink != 0:
		return copySymlink(src, dst)
	default:
		return m.copyFile(src, dst, mode.Perm())
	}
}

// stagingPath names a unique hidden sibling of dst on dst's filesystem.
func stagingPath(dst string) string {
	return filepath.Join(filepath.Dir(dst), ".folio-tmp-"+uuid.NewString())
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	return errors.As(err, &linkErr) && errors.Is(linkErr.Err, unix.EXDEV)
}

// checkDirTarget mirrors the rename(2) rules for a directory source.
func checkDirTarget(src, dst string) error {
	info, err := os.Lstat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: unix.ENOTDIR}
	}
	empty, err := IsEmptyDir(dst)
	if err != nil {
		return err
	}
	if !empty {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: unix.ENOTEMPTY}
	}
	return nil
}

// checkFileTarget mirrors the rename(2) rules for a non-directory source.
func checkFileTarget(src, dst string) error {
	info, err := os.Lstat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: unix.EISDIR}
	}
	return nil
}

// IsEmptyDir reports whether the directory at path has no entries. It reads
// at most one entry.
func IsEmptyDir(path string) (bool, error) {
	dir, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer dir.Close()

	_, err = dir.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

// TreeSize returns the total size of regular files under path. Unreadable
// entries are ignored.
func TreeSize(path string) int64 {
	var size int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				size += info.Size()
			}
		}
		return nil
	})
	return size
}
