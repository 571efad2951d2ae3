package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const DefaultFile = "file.json"

// FileBackend stores every object in a single JSON document.
type FileBackend struct {
	path string
}

var _ Backend = &FileBackend{}

func NewFileBackend(path string) *FileBackend {
	if path == "" {
		path = DefaultFile
	}
	return &FileBackend{path: filepath.Clean(path)}
}

func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Write(ctx context.Context, objects Objects) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(objects, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal objects: %v", ErrWriteFailed, err)
	}

	if dir := filepath.Dir(b.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create dir %s: %v", ErrWriteFailed, dir, err)
		}
	}

	// Write to a sibling file and rename so readers never see a partial document.
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrWriteFailed, tmp, err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: rename %s: %v", ErrWriteFailed, b.path, err)
	}

	return nil
}

func (b *FileBackend) Read(ctx context.Context) (Objects, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Objects{}, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrReadFailed, b.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return Objects{}, nil
	}

	return decodeObjects(data)
}

// decodeObjects keeps numbers as json.Number so they are written back unchanged.
func decodeObjects(data []byte) (Objects, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var objects Objects
	if err := dec.Decode(&objects); err != nil {
		return nil, fmt.Errorf("%w: decode objects: %v", ErrReadFailed, err)
	}
	if objects == nil {
		objects = Objects{}
	}
	return objects, nil
}
