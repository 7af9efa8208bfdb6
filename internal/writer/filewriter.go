package writer

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileWriter commits dump bytes to a file through a same-directory
// temporary and an atomic rename, so readers never observe a torn dump.
type FileWriter struct {
	Path string

	// Durable forces the data to disk (fdatasync where available)
	// before the rename.
	Durable bool
}

// WriteDump writes buf to the configured path.
func (w *FileWriter) WriteDump(buf []byte) error {
	dir := filepath.Dir(w.Path)
	tmp, err := os.CreateTemp(dir, ".cryo-*")
	if err != nil {
		return fmt.Errorf("writer: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after successful rename

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return fmt.Errorf("writer: write %s: %w", tmpName, err)
	}
	if w.Durable {
		if err := fdatasync(tmp); err != nil {
			tmp.Close()
			return fmt.Errorf("writer: sync %s: %w", tmpName, err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writer: close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, w.Path); err != nil {
		return fmt.Errorf("writer: rename into place: %w", err)
	}
	return nil
}
