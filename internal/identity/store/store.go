// Package store persists the identity-resolution configuration as two
// independent documents: the ordered field list and the soft-delete ledger.
//
// Backends only move bytes. Decoding is shared and lenient: a list that is
// not a JSON array is reported as corrupt, while individual malformed
// records are kept by id so models.Hydrate can repair or drop them.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"idres/internal/identity/models"
)

// Persistence keys. Both are kept stable so existing data survives upgrades.
const (
	FieldsKey  = "idres.identifiers"
	DeletedKey = "idres.deleted_identifiers"
)

// Keys lists both documents in load order.
var Keys = []string{FieldsKey, DeletedKey}

// Store loads and saves the configuration.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, fields, deleted []models.IdentifierField) error
}

// Snapshot is what a backend returned for the two keys.
type Snapshot struct {
	Fields  []models.IdentifierField
	Deleted []models.IdentifierField
	// Found is true when a decodable field list was present.
	Found bool
	// Corrupt names keys whose document was present but not a JSON array.
	Corrupt []string
}

// State turns the snapshot into a valid configuration. A missing or
// corrupt field list yields the catalog seed and an empty ledger.
func (s Snapshot) State() (models.State, models.HydrateReport) {
	if !s.Found {
		return models.DefaultState(), models.HydrateReport{}
	}
	return models.Hydrate(s.Fields, s.Deleted)
}

// decodeSnapshot builds a Snapshot from raw documents. A nil slice means the
// key was absent.
func decodeSnapshot(rawFields, rawDeleted []byte) Snapshot {
	var snap Snapshot
	if rawFields != nil {
		fields, err := decodeList(rawFields)
		if err != nil {
			snap.Corrupt = append(snap.Corrupt, FieldsKey)
		} else {
			snap.Fields = fields
			snap.Found = true
		}
	}
	if rawDeleted != nil {
		deleted, err := decodeList(rawDeleted)
		if err != nil {
			snap.Corrupt = append(snap.Corrupt, DeletedKey)
		} else {
			snap.Deleted = deleted
		}
	}
	if !snap.Found {
		snap.Deleted = nil
	}
	return snap
}

func decodeList(raw []byte) ([]models.IdentifierField, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode identifier list: %w", err)
	}
	if items == nil {
		// JSON null
		return nil, fmt.Errorf("decode identifier list: null document")
	}
	out := make([]models.IdentifierField, 0, len(items))
	for _, item := range items {
		var f models.IdentifierField
		if err := json.Unmarshal(item, &f); err != nil {
			// Keep the id so a built-in can be reset to its default.
			var idOnly struct {
				ID string `json:"id"`
			}
			_ = json.Unmarshal(item, &idOnly)
			f = models.IdentifierField{ID: idOnly.ID}
		}
		out = append(out, f)
	}
	return out, nil
}

func encodeList(fields []models.IdentifierField) ([]byte, error) {
	if fields == nil {
		fields = []models.IdentifierField{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode identifier list: %w", err)
	}
	return b, nil
}

func encodeBoth(fields, deleted []models.IdentifierField) (rawFields, rawDeleted []byte, err error) {
	if rawFields, err = encodeList(fields); err != nil {
		return nil, nil, err
	}
	if rawDeleted, err = encodeList(deleted); err != nil {
		return nil, nil, err
	}
	return rawFields, rawDeleted, nil
}
