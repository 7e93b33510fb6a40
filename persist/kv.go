package persist

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrNotFound reports a key with no stored value.
var ErrNotFound = errors.New("key not found")

// KV is a durable key-value byte store. Reads and writes either complete
// or fail immediately; there is no network I/O behind it.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// FileKV stores each key as a JSON file inside a directory. Writes go
// through a temporary file, fsync and rename so a crash mid-write never
// leaves a torn value behind.
type FileKV struct {
	dir string
}

// NewFileKV creates a store rooted at dir. The directory is created on
// first write.
func NewFileKV(dir string) *FileKV {
	return &FileKV{dir: dir}
}

func (kv *FileKV) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(kv.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (kv *FileKV) Set(key string, value []byte) error {
	if err := os.MkdirAll(kv.dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(kv.dir, key+".tmp-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, kv.path(key))
}

func (kv *FileKV) path(key string) string {
	return filepath.Join(kv.dir, key+".json")
}
