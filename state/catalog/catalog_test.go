package catalog_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cascade/state/catalog"
)

func TestRecordAndLookup(t *testing.T) {
	db := filepath.Join(t.TempDir(), "catalog.db")
	cat, err := catalog.Open(db)
	require.NoError(t, err)
	defer cat.Close()

	entry := catalog.Entry{Name: "checkpoint-1", Path: "/tmp/checkpoint-1.bin", SavedAt: time.Now(), VarCount: 12}
	require.NoError(t, cat.Record(entry))

	got, ok, err := cat.Lookup("checkpoint-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, entry.Path, got.Path)
	require.Equal(t, entry.VarCount, got.VarCount)
}

func TestLookupMissingReturnsFalse(t *testing.T) {
	db := filepath.Join(t.TempDir(), "catalog.db")
	cat, err := catalog.Open(db)
	require.NoError(t, err)
	defer cat.Close()

	_, ok, err := cat.Lookup("nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRecordUpsertsExistingName(t *testing.T) {
	db := filepath.Join(t.TempDir(), "catalog.db")
	cat, err := catalog.Open(db)
	require.NoError(t, err)
	defer cat.Close()

	first := catalog.Entry{Name: "snap", Path: "/a", SavedAt: time.Now(), VarCount: 1}
	second := catalog.Entry{Name: "snap", Path: "/b", SavedAt: time.Now(), VarCount: 2}
	require.NoError(t, cat.Record(first))
	require.NoError(t, cat.Record(second))

	got, ok, err := cat.Lookup("snap")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "/b", got.Path)
}

func TestListOrdersMostRecentFirst(t *testing.T) {
	db := filepath.Join(t.TempDir(), "catalog.db")
	cat, err := catalog.Open(db)
	require.NoError(t, err)
	defer cat.Close()

	older := catalog.Entry{Name: "old", Path: "/old", SavedAt: time.Now().Add(-time.Hour), VarCount: 1}
	newer := catalog.Entry{Name: "new", Path: "/new", SavedAt: time.Now(), VarCount: 1}
	require.NoError(t, cat.Record(older))
	require.NoError(t, cat.Record(newer))

	list, err := cat.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "new", list[0].Name)
}
