package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"idres/internal/identity/models"
)

// StoreContractSuite runs the same expectations against every local backend.
type StoreContractSuite struct {
	suite.Suite
	newStore func(t *testing.T) Store
}

func (s *StoreContractSuite) TestLoadEmpty() {
	snap, err := s.newStore(s.T()).Load(context.Background())
	s.Require().NoError(err)
	s.False(snap.Found)
	s.Empty(snap.Corrupt)

	state, report := snap.State()
	s.True(report.Clean())
	s.Equal(models.DefaultState(), state)
}

func (s *StoreContractSuite) TestRoundTrip() {
	ctx := context.Background()
	st := s.newStore(s.T())

	state := models.DefaultState()
	state, _, _, err := state.Remove(0)
	s.Require().NoError(err)
	state, _, err = state.AddCustom("Loyalty Card")
	s.Require().NoError(err)

	s.Require().NoError(st.Save(ctx, state.Fields, state.Deleted))

	snap, err := st.Load(ctx)
	s.Require().NoError(err)
	s.True(snap.Found)
	if diff := cmp.Diff(state.Fields, snap.Fields); diff != "" {
		s.Failf("fields mismatch", "(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(state.Deleted, snap.Deleted); diff != "" {
		s.Failf("ledger mismatch", "(-want +got):\n%s", diff)
	}
}

func (s *StoreContractSuite) TestEmptyListIsFound() {
	ctx := context.Background()
	st := s.newStore(s.T())

	s.Require().NoError(st.Save(ctx, nil, nil))

	snap, err := st.Load(ctx)
	s.Require().NoError(err)
	s.True(snap.Found)
	s.Empty(snap.Fields)

	state, _ := snap.State()
	s.Empty(state.Fields, "an explicitly empty list must not be reseeded")
}

func (s *StoreContractSuite) TestSaveOverwrites() {
	ctx := context.Background()
	st := s.newStore(s.T())

	first := models.DefaultState()
	s.Require().NoError(st.Save(ctx, first.Fields, first.Deleted))

	second, err := first.Reorder(0, 3)
	s.Require().NoError(err)
	s.Require().NoError(st.Save(ctx, second.Fields, second.Deleted))

	snap, err := st.Load(ctx)
	s.Require().NoError(err)
	s.Equal("email", snap.Fields[0].ID)
	s.Equal("user_id", snap.Fields[3].ID)
}

func TestInMemoryStore(t *testing.T) {
	suite.Run(t, &StoreContractSuite{newStore: func(*testing.T) Store { return NewInMemory() }})
}

func TestFileStore(t *testing.T) {
	suite.Run(t, &StoreContractSuite{newStore: func(t *testing.T) Store {
		return NewFile(filepath.Join(t.TempDir(), "nested", "config.json"))
	}})
}

func TestDecodeSnapshot(t *testing.T) {
	t.Run("missing field list ignores ledger", func(t *testing.T) {
		snap := decodeSnapshot(nil, []byte(`[{"id":"email"}]`))
		assert.False(t, snap.Found)
		assert.Nil(t, snap.Deleted)
	})

	t.Run("field list that is not an array is corrupt", func(t *testing.T) {
		snap := decodeSnapshot([]byte(`{"id":"email"}`), []byte(`[]`))
		assert.False(t, snap.Found)
		assert.Equal(t, []string{FieldsKey}, snap.Corrupt)

		state, _ := snap.State()
		assert.Equal(t, models.DefaultState(), state)
	})

	t.Run("null document is corrupt", func(t *testing.T) {
		snap := decodeSnapshot([]byte(`null`), nil)
		assert.False(t, snap.Found)
		assert.Equal(t, []string{FieldsKey}, snap.Corrupt)
	})

	t.Run("corrupt ledger keeps fields", func(t *testing.T) {
		snap := decodeSnapshot([]byte(`[]`), []byte(`not json`))
		assert.True(t, snap.Found)
		assert.Empty(t, snap.Deleted)
		assert.Equal(t, []string{DeletedKey}, snap.Corrupt)
	})

	t.Run("malformed record keeps its id for repair", func(t *testing.T) {
		raw := []byte(`[
			{"id":"email","display_name":"Email","enabled":true,"is_custom":false,"match_limit":"five","match_frequency":"Weekly"},
			{"id":"mystery","match_limit":{}},
			{"id":"user_id","display_name":"User ID","enabled":false,"is_custom":false,"match_limit":2,"match_frequency":"Daily"}
		]`)
		snap := decodeSnapshot(raw, []byte(`[]`))
		require.True(t, snap.Found)
		require.Len(t, snap.Fields, 3)

		state, report := snap.State()
		require.Len(t, state.Fields, 2)
		def, _ := models.CatalogEntry("email")
		assert.Equal(t, def, state.Fields[0])
		assert.Equal(t, "user_id", state.Fields[1].ID)
		assert.False(t, state.Fields[1].Enabled)
		assert.Equal(t, []string{"email"}, report.Replaced)
		assert.Equal(t, []string{"mystery"}, report.Dropped)
	})
}

func TestFileStore_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0o600))

	snap, err := NewFile(path).Load(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.Found)
	assert.ElementsMatch(t, Keys, snap.Corrupt)
}

func TestFileStore_WritesBothKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	st := NewFile(path)
	state := models.DefaultState()
	state, _, _, err := state.Remove(1)
	require.NoError(t, err)
	require.NoError(t, st.Save(context.Background(), state.Fields, state.Deleted))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"idres.identifiers"`)
	assert.Contains(t, string(data), `"idres.deleted_identifiers"`)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".idres-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestInMemory_RawDocuments(t *testing.T) {
	st := NewInMemory()
	st.Put(FieldsKey, []byte(`[{"id":"phone","display_name":"Phone","enabled":true,"is_custom":true,"match_limit":5,"match_frequency":"Weekly"}]`))

	snap, err := st.Load(context.Background())
	require.NoError(t, err)
	require.True(t, snap.Found)
	assert.Equal(t, "phone", snap.Fields[0].ID)

	require.NoError(t, st.Save(context.Background(), snap.Fields, nil))
	raw, ok := st.Raw(DeletedKey)
	require.True(t, ok)
	assert.Equal(t, "[]", string(raw))
}
