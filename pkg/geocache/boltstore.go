package geocache

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltSchemaVersion is bumped whenever the record framing or payload
// codec changes. Opening a database written under another version drops
// its slots.
const BoltSchemaVersion = 1

var (
	slotsBucket = []byte("slots")
	schemaKey   = []byte("schema")
)

// BoltStore keeps slots in a bbolt database, keyed by big-endian uint32
// slot number.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens or creates the database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("geocache: opening %s: %w", path, err)
	}
	s := &BoltStore{db: db}
	if err := db.Update(s.ensureSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("geocache: preparing %s: %w", path, err)
	}
	return s, nil
}

func (s *BoltStore) ensureSchema(tx *bolt.Tx) error {
	b := tx.Bucket(slotsBucket)
	if b != nil {
		if v := b.Get(schemaKey); len(v) == 4 && binary.BigEndian.Uint32(v) == BoltSchemaVersion {
			return nil
		}
		if err := tx.DeleteBucket(slotsBucket); err != nil {
			return err
		}
	}
	b, err := tx.CreateBucket(slotsBucket)
	if err != nil {
		return err
	}
	return b.Put(schemaKey, be32(BoltSchemaVersion))
}

func be32(v int) []byte {
	k := make([]byte, 4)
	binary.BigEndian.PutUint32(k, uint32(v))
	return k
}

func (s *BoltStore) Get(ctx context.Context, slot int) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}
	if slot < 0 {
		return Record{}, false, fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	var (
		rec   Record
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(slotsBucket)
		if b == nil {
			return nil
		}
		v := b.Get(be32(slot))
		if v == nil {
			return nil
		}
		// decodeRecord copies; v is only valid inside the transaction.
		r, err := decodeRecord(slot, v)
		if err != nil {
			return err
		}
		rec, found = r, true
		return nil
	})
	if err != nil {
		return Record{}, false, err
	}
	return rec, found, nil
}

func (s *BoltStore) Put(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.Slot < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, rec.Slot)
	}
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(slotsBucket)
		if err != nil {
			return err
		}
		return b.Put(be32(rec.Slot), data)
	})
}

// DeleteAll drops every slot and rewrites the schema marker.
func (s *BoltStore) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(slotsBucket) != nil {
			if err := tx.DeleteBucket(slotsBucket); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(slotsBucket)
		if err != nil {
			return err
		}
		return b.Put(schemaKey, be32(BoltSchemaVersion))
	})
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
