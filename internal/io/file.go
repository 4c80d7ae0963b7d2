package ioutils

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	invalidChars  = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots  = regexp.MustCompile(`\.+$`)
	repeatedSpace = regexp.MustCompile(`\s+`)
)

// Exists reports whether a regular file exists at path.
//
// A directory at path counts as absent so that it surfaces as a write error
// rather than a silent skip.
func Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// WriteFileAtomic streams r into path, creating or replacing it.
//
// Data is first written to a uniquely named temporary file in the same
// directory and renamed over path once complete, so an interrupted download
// never leaves a truncated image behind. Returns the number of bytes written.
//
// Example:
//
//	n, err := WriteFileAtomic("/pictures/Name_EN-US1.jpg", body)
func WriteFileAtomic(path string, r io.Reader) (int64, error) {
	// The temporary name stays short whatever the final name's length
	tmpPath := filepath.Join(filepath.Dir(path), "."+uuid.NewString()+".part")

	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return n, err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return n, err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return n, err
	}

	return n, nil
}

// SanitizeFileName removes or replaces characters that are invalid in file names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("Name_EN-US1.jpg")  // Returns "Name_EN-US1.jpg"
//	SanitizeFileName("../etc/passwd")    // Returns ".._etc_passwd"
//	SanitizeFileName("Name   with  gap") // Returns "Name with gap"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
