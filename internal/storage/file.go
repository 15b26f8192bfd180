package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// File stores each key as <dir>/<namespace>/<key>.json.
type File struct {
	dir    string
	closed bool
}

// NewFile creates the namespace directory with mode 0700 and returns a File KV.
func NewFile(baseDir, namespace string) (*File, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("storage dir is empty")
	}
	dir := filepath.Join(baseDir, sanitizeKey(namespace))
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &File{dir: dir}, nil
}

// Dir returns the namespace directory.
func (f *File) Dir() string {
	return f.dir
}

// Path returns the file backing key.
func (f *File) Path(key string) string {
	return filepath.Join(f.dir, sanitizeKey(key)+".json")
}

// Get implements KV.
func (f *File) Get(key string) ([]byte, bool, error) {
	if f.closed {
		return nil, false, ErrClosed
	}
	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read slot %s: %w", key, err)
	}
	return data, true, nil
}

// Set writes value to a temp file in the same directory and renames it over
// the slot, so readers never see a partial snapshot.
func (f *File) Set(key string, value []byte) error {
	if f.closed {
		return ErrClosed
	}
	tmp, err := os.CreateTemp(f.dir, ".slot-*")
	if err != nil {
		return fmt.Errorf("create temp slot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("write slot %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close slot %s: %w", key, err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return fmt.Errorf("chmod slot %s: %w", key, err)
	}
	if err := os.Rename(tmpName, f.Path(key)); err != nil {
		return fmt.Errorf("replace slot %s: %w", key, err)
	}
	return nil
}

// Close implements KV.
func (f *File) Close() error {
	f.closed = true
	return nil
}
