// Package archive bundles a component's configuration directory into the zip
// archive that nodes download on start.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

var ErrEmptyDirectory = errors.New("config directory is empty")

// modified is stamped on every entry so identical trees produce identical
// archives and therefore identical digests.
var modified = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Pack writes every regular file under dir to a zip at dest, in lexical
// order with paths relative to dir.
func Pack(dir, dest string) error {
	files := make([]string, 0)

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.Type().IsRegular() {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk through directory: %w", err)
	}

	if len(files) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyDirectory, dir)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer out.Close()

	w := zip.NewWriter(out)

	for _, path := range files {
		if err := addFile(w, dir, path); err != nil {
			return err
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}

	return out.Close()
}

func addFile(w *zip.Writer, dir, path string) error {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	entry, err := w.CreateHeader(&zip.FileHeader{
		Name:     filepath.ToSlash(rel),
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", rel, err)
	}

	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", rel, err)
	}
	defer in.Close()

	if _, err := io.Copy(entry, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", rel, err)
	}

	return nil
}

// Resolve returns path unchanged when it is a file. A directory is packed
// into a new archive under tmpDir and that archive's path is returned.
func Resolve(path, tmpDir string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if !info.IsDir() {
		return path, nil
	}

	dest := filepath.Join(tmpDir, filepath.Base(filepath.Clean(path))+".zip")
	if err := Pack(path, dest); err != nil {
		return "", err
	}

	return dest, nil
}
