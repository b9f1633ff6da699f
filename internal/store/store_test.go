package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestPutGet_RoundTrip(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	s.Put(KeyChat, snapshot{Name: "transcript", Count: 3})

	var got snapshot
	require.True(t, s.Get(KeyChat, &got))
	require.Equal(t, snapshot{Name: "transcript", Count: 3}, got)
}

func TestPut_Overwrites(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	s.Put(KeyPipeline, snapshot{Count: 1})
	s.Put(KeyPipeline, snapshot{Count: 2})

	var got snapshot
	require.True(t, s.Get(KeyPipeline, &got))
	require.Equal(t, 2, got.Count)
}

func TestGet_MissingKeyIsNoPriorState(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	var got snapshot
	require.False(t, s.Get(KeyHistory, &got))
}

func TestGet_UnparsableValueIsNoPriorState(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	_, err = s.db.Exec(`INSERT INTO snapshots (key, value) VALUES (?, ?)`, KeySummary, "{broken")
	require.NoError(t, err)

	var got snapshot
	require.False(t, s.Get(KeySummary, &got))
}

func TestDelete(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	s.Put(KeyChat, snapshot{Count: 1})
	s.Delete(KeyChat)

	var got snapshot
	require.False(t, s.Get(KeyChat, &got))
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")

	s, err := Open(path)
	require.NoError(t, err)
	s.Put(KeyHistory, snapshot{Name: "runs", Count: 20})
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	var got snapshot
	require.True(t, s.Get(KeyHistory, &got))
	require.Equal(t, 20, got.Count)
}

func TestNilStoreIsInert(t *testing.T) {
	var s *Store
	s.Put(KeyChat, snapshot{})
	s.Delete(KeyChat)

	var got snapshot
	require.False(t, s.Get(KeyChat, &got))
	require.NoError(t, s.Close())
}
