package geocache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func stores(t *testing.T) map[string]SlotStore {
	t.Helper()
	dir, err := NewDirStore(filepath.Join(t.TempDir(), "slots"))
	require.NoError(t, err)
	db, err := OpenBoltStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return map[string]SlotStore{
		"memory": NewMemoryStore(),
		"dir":    dir,
		"bolt":   db,
	}
}

func TestSlotStores(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, found, err := s.Get(ctx, 3)
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, s.Put(ctx, Record{Slot: 3, CutID: "first", Payload: []byte{1, 2, 3}}))
			require.NoError(t, s.Put(ctx, Record{Slot: 3, CutID: "second", Payload: []byte{4, 5}}))
			require.NoError(t, s.Put(ctx, Record{Slot: 0, CutID: "", Payload: nil}))

			rec, found, err := s.Get(ctx, 3)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "second", rec.CutID)
			assert.Equal(t, []byte{4, 5}, rec.Payload)
			assert.Equal(t, 3, rec.Slot)

			rec, found, err = s.Get(ctx, 0)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "", rec.CutID)
			assert.Empty(t, rec.Payload)

			assert.ErrorIs(t, s.Put(ctx, Record{Slot: -1}), ErrInvalidSlot)

			require.NoError(t, s.DeleteAll(ctx))
			_, found, err = s.Get(ctx, 3)
			require.NoError(t, err)
			assert.False(t, found)

			// Still writable after a clear.
			require.NoError(t, s.Put(ctx, Record{Slot: 9, CutID: "again", Payload: []byte{7}}))
			rec, found, err = s.Get(ctx, 9)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "again", rec.CutID)
		})
	}
}

func TestSlotStoresBehindCache(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			mesh := testMesh(2.5)
			New(s).Put(ctx, 2, "A", mesh)

			got, tier, ok := New(s).Get(ctx, 2, "A")
			require.True(t, ok)
			assert.Equal(t, TierSlot, tier)
			assert.Equal(t, mesh.Vertices, got.Vertices)

			_, _, ok = New(s).Get(ctx, 2, "B")
			assert.False(t, ok)
		})
	}
}

func TestDirStoreLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := &DirStore{Dir: dir}
	require.NoError(t, s.Put(ctx, Record{Slot: 5, CutID: "ab", Payload: []byte{0xff}}))

	data, err := os.ReadFile(filepath.Join(dir, "slot-5.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 0, 'a', 'b', 0xff}, data)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestDirStoreCorruptRecord(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slot-1.bin"), []byte{9, 0, 'x'}, 0o644))

	s := &DirStore{Dir: dir}
	_, _, err := s.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestDirStoreDeleteAllKeepsOtherFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	keep := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(keep, []byte("hi"), 0o644))

	s := &DirStore{Dir: dir}
	require.NoError(t, s.Put(ctx, Record{Slot: 1, CutID: "a"}))
	require.NoError(t, s.DeleteAll(ctx))

	_, err := os.Stat(keep)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "slot-1.bin"))
	assert.True(t, os.IsNotExist(err))
}

func TestBoltStoreSchemaMismatchDropsSlots(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, Record{Slot: 1, CutID: "old", Payload: []byte{1}}))
	require.NoError(t, s.Close())

	db, err := bolt.Open(path, 0o600, nil)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(slotsBucket).Put(schemaKey, be32(BoltSchemaVersion+1))
	}))
	require.NoError(t, db.Close())

	s, err = OpenBoltStore(path)
	require.NoError(t, err)
	defer s.Close()
	_, found, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBoltStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, Record{Slot: 7, CutID: "kept", Payload: []byte{1, 2}}))
	require.NoError(t, s.Close())

	s, err = OpenBoltStore(path)
	require.NoError(t, err)
	defer s.Close()
	rec, found, err := s.Get(ctx, 7)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "kept", rec.CutID)
}

func TestRecordFraming(t *testing.T) {
	data, err := encodeRecord(Record{CutID: "id", Payload: []byte{1}})
	require.NoError(t, err)
	rec, err := decodeRecord(4, data)
	require.NoError(t, err)
	assert.Equal(t, Record{Slot: 4, CutID: "id", Payload: []byte{1}}, rec)

	_, err = decodeRecord(0, []byte{1})
	assert.ErrorIs(t, err, ErrCorruptRecord)

	_, err = encodeRecord(Record{CutID: string(make([]byte, 70000))})
	assert.Error(t, err)
}
