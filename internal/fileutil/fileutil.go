// Package fileutil provides the small filesystem helpers stage transitions
// rely on. Moves are the commit points of the pipeline, so they must look
// atomic to a subsequent run.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// MoveFile renames src to dst. Across filesystem boundaries it falls back to
// copy-to-temp-then-rename so a crash never leaves a partial file under the
// final name.
func MoveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}

	tmp := dst + ".partial"
	if err := CopyFile(src, tmp); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("cross-device copy: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Remove(src)
}

// CopyFile streams src to dst, fsyncing before close.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// EnsureDir creates dir and its parents.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// SameDir reports whether two paths share a parent directory.
func SameDir(a, b string) bool {
	return filepath.Dir(a) == filepath.Dir(b)
}
