package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"

	"noisyspell/internal/corrector"
	"noisyspell/internal/langmodel"
)

const FilePerm os.FileMode = 0644

// Save writes m to path atomically: the snapshot goes to a temp file in the
// same directory, is fsynced, then renamed over path.
func Save(path string, m *corrector.Model) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("snapshot create temp in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot write: %w", err)
	}
	if err := tmp.Chmod(FilePerm); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot chmod: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("snapshot close: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("snapshot rename %s -> %s: %w", tmpPath, path, err)
	}
	if err := fsyncDir(dir); err != nil {
		return err
	}
	success = true
	return nil
}

func fsyncDir(path string) error {
	d, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("fsync dir open %s: %w", path, err)
	}
	if err := d.Sync(); err != nil {
		d.Close()
		return fmt.Errorf("fsync dir sync %s: %w", path, err)
	}
	return d.Close()
}

// Load maps the snapshot at path read-only and decodes it. A missing file
// reports ErrNotFound.
func Load(path string, opts ...langmodel.Option) (*corrector.Model, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot open: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("snapshot stat: %w", err)
	}
	// mmap of an empty file fails on most platforms
	if st.Size() < int64(headerSize) {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTruncated, path, st.Size())
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("snapshot mmap: %w", err)
	}
	m, err := Unmarshal(data, opts...)
	if uerr := data.Unmap(); uerr != nil && err == nil {
		return nil, fmt.Errorf("snapshot unmap: %w", uerr)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
