package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"idres/internal/identity/models"
	"idres/pkg/platform/sentinel"
)

const (
	selectDocumentsSQL = `SELECT name, body FROM identity_config_documents WHERE name = ANY($1)`
	upsertDocumentSQL  = `INSERT INTO identity_config_documents (name, body, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`
)

// Postgres stores each document as a JSONB row of identity_config_documents.
// The schema comes from internal/platform/postgres migrations.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Load(ctx context.Context) (Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, selectDocumentsSQL, pq.Array(Keys))
	if err != nil {
		return Snapshot{}, fmt.Errorf("query documents: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	docs := make(map[string][]byte, len(Keys))
	for rows.Next() {
		var name string
		var body []byte
		if err := rows.Scan(&name, &body); err != nil {
			return Snapshot{}, fmt.Errorf("scan document: %w", err)
		}
		docs[name] = body
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate documents: %w: %w", sentinel.ErrUnavailable, err)
	}
	return decodeSnapshot(docs[FieldsKey], docs[DeletedKey]), nil
}

func (s *Postgres) Save(ctx context.Context, fields, deleted []models.IdentifierField) error {
	rawFields, rawDeleted, err := encodeBoth(fields, deleted)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, doc := range []struct {
		name string
		body []byte
	}{
		{FieldsKey, rawFields},
		{DeletedKey, rawDeleted},
	} {
		if _, err := tx.ExecContext(ctx, upsertDocumentSQL, doc.name, doc.body); err != nil {
			return fmt.Errorf("upsert %s: %w", doc.name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
