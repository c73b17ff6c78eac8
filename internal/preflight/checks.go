package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Path: path, Detail: "error: does not exist"}
		}
		return Result{Name: name, Path: path, Detail: fmt.Sprintf("error: stat: %v", err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Path: path, Detail: "error: is not a directory"}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Path: path, Detail: fmt.Sprintf("error: insufficient permissions: %v", err)}
	}
	return Result{Name: name, Path: path, Passed: true, Detail: "read/write ok"}
}

// CheckBaseDirectory accepts a missing base directory as long as its nearest
// existing ancestor is writable, since the run creates it.
func CheckBaseDirectory(path string) Result {
	const name = "Base directory"
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return CheckDirectoryAccess(name, path)
	}
	return checkCreatable(name, path)
}

// CheckDestination reports an existing destination as reusable and a missing
// one as created on run.
func CheckDestination(path string) Result {
	const name = "Destination"
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		result := CheckDirectoryAccess(name, path)
		if result.Passed {
			result.Detail = "exists, read/write ok"
		}
		return result
	}
	return checkCreatable(name, path)
}

// CheckSource inspects one source folder. A missing folder is skipped, not failed.
func CheckSource(folder, path string) Result {
	name := "Source " + folder
	info, err := os.Stat(path)
	switch {
	case err != nil && os.IsNotExist(err):
		return Result{Name: name, Path: path, Passed: true, Skipped: true, Detail: "missing, skipped on run"}
	case err == nil && !info.IsDir():
		return Result{Name: name, Path: path, Passed: true, Skipped: true, Detail: "not a directory, skipped on run"}
	}

	result := CheckDirectoryAccess(name, path)
	if !result.Passed {
		return result
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return Result{Name: name, Path: path, Detail: fmt.Sprintf("error: list: %v", err)}
	}
	result.Entries = len(entries)
	result.Detail = fmt.Sprintf("%d entries, read/write ok", len(entries))
	return result
}

func checkCreatable(name, path string) Result {
	ancestor := filepath.Dir(path)
	for {
		if _, err := os.Stat(ancestor); err == nil {
			break
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			break
		}
		ancestor = parent
	}
	if err := unix.Access(ancestor, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Path: path, Detail: fmt.Sprintf("error: cannot create under %s: %v", ancestor, err)}
	}
	return Result{Name: name, Path: path, Passed: true, Detail: "missing, created on run"}
}
