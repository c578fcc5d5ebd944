package store

import (
	"context"
	"sync"

	"idres/internal/identity/models"
)

// InMemory keeps the encoded documents in a map. It is the default when no
// backend is configured and backs the unit tests.
type InMemory struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewInMemory() *InMemory {
	return &InMemory{docs: make(map[string][]byte)}
}

func (s *InMemory) Load(_ context.Context) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return decodeSnapshot(s.docs[FieldsKey], s.docs[DeletedKey]), nil
}

func (s *InMemory) Save(_ context.Context, fields, deleted []models.IdentifierField) error {
	rawFields, rawDeleted, err := encodeBoth(fields, deleted)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[FieldsKey] = rawFields
	s.docs[DeletedKey] = rawDeleted
	return nil
}

// Put stores a raw document under key, bypassing encoding.
func (s *InMemory) Put(key string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = raw
}

// Raw returns the stored document for key.
func (s *InMemory) Raw(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.docs[key]
	return raw, ok
}
