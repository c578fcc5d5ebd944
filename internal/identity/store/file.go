package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"idres/internal/identity/models"
	"idres/pkg/platform/sentinel"
)

// File keeps both documents in one JSON object on disk, keyed by FieldsKey
// and DeletedKey. Writes go to a temp file that is renamed into place.
type File struct {
	mu   sync.Mutex
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file location.
func (s *File) Path() string {
	return s.path
}

func (s *File) Load(_ context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w: %w", s.path, sentinel.ErrUnavailable, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return Snapshot{Corrupt: append([]string(nil), Keys...)}, nil
	}
	return decodeSnapshot(rawOrNil(doc, FieldsKey), rawOrNil(doc, DeletedKey)), nil
}

func (s *File) Save(_ context.Context, fields, deleted []models.IdentifierField) error {
	rawFields, rawDeleted, err := encodeBoth(fields, deleted)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(map[string]json.RawMessage{
		FieldsKey:  rawFields,
		DeletedKey: rawDeleted,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".idres-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func rawOrNil(doc map[string]json.RawMessage, key string) []byte {
	raw, ok := doc[key]
	if !ok {
		return nil
	}
	return raw
}
