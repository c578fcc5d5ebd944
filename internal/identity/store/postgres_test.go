package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idres/internal/identity/models"
	"idres/pkg/platform/sentinel"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

func TestPostgres_Load(t *testing.T) {
	db, mock := newMockDB(t)
	rows := sqlmock.NewRows([]string{"name", "body"}).
		AddRow(FieldsKey, []byte(`[{"id":"email","display_name":"Email","enabled":true,"is_custom":false,"match_limit":5,"match_frequency":"Weekly"}]`)).
		AddRow(DeletedKey, []byte(`[{"id":"user_id","display_name":"User ID","enabled":true,"is_custom":false,"match_limit":1,"match_frequency":"Ever"}]`))
	mock.ExpectQuery(regexp.QuoteMeta(selectDocumentsSQL)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	snap, err := NewPostgres(db).Load(context.Background())
	require.NoError(t, err)
	require.True(t, snap.Found)
	assert.Equal(t, "email", snap.Fields[0].ID)
	assert.Equal(t, "user_id", snap.Deleted[0].ID)
}

func TestPostgres_LoadNothingStored(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectDocumentsSQL)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"name", "body"}))

	snap, err := NewPostgres(db).Load(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.Found)
}

func TestPostgres_LoadQueryError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectDocumentsSQL)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnError(errors.New("connection refused"))

	_, err := NewPostgres(db).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}

func TestPostgres_Save(t *testing.T) {
	db, mock := newMockDB(t)
	state := models.DefaultState()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(upsertDocumentSQL)).
		WithArgs(FieldsKey, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(upsertDocumentSQL)).
		WithArgs(DeletedKey, []byte("[]")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewPostgres(db).Save(context.Background(), state.Fields, state.Deleted))
}

func TestPostgres_SaveRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(upsertDocumentSQL)).
		WithArgs(FieldsKey, sqlmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := NewPostgres(db).Save(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), FieldsKey)
}
