package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/text/unicode/norm"
)

// ResolveName returns the name of the entry in dir that name refers to. An
// exact match always wins. Otherwise an entry whose NFC form equals the NFC
// form of name is accepted, so a folder written in decomposed form (as some
// macOS tools do) is found from a composed name and vice versa. When nothing
// matches, name is returned with an error satisfying fs.ErrNotExist.
func ResolveName(dir, name string) (string, error) {
	if _, err := os.Lstat(filepath.Join(dir, name)); err == nil {
		return name, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return name, err
	}

	want := norm.NFC.String(name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return name, err
	}
	for _, entry := range entries {
		if norm.NFC.String(entry.Name()) == want {
			return entry.Name(), nil
		}
	}
	return name, &fs.PathError{Op: "resolve", Path: filepath.Join(dir, name), Err: fs.ErrNotExist}
}
