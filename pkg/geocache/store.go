package geocache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
)

var (
	ErrInvalidSlot   = errors.New("geocache: slot out of range")
	ErrCorruptRecord = errors.New("geocache: corrupt slot record")
)

// Record is one persistent slot entry.
type Record struct {
	Slot    int
	CutID   string
	Payload []byte
}

// SlotStore is the persistent tier: a small byte store addressed by slot
// number. A slot holds at most one record; Put overwrites it.
type SlotStore interface {
	// Get returns the record in slot, or false when the slot is empty.
	Get(ctx context.Context, slot int) (Record, bool, error)
	Put(ctx context.Context, rec Record) error
	DeleteAll(ctx context.Context) error
}

// encodeRecord frames a record as [u16 idLen][id][payload], little-endian.
func encodeRecord(rec Record) ([]byte, error) {
	if len(rec.CutID) > math.MaxUint16 {
		return nil, fmt.Errorf("geocache: cut id of %d bytes is too long", len(rec.CutID))
	}
	buf := make([]byte, 2+len(rec.CutID)+len(rec.Payload))
	binary.LittleEndian.PutUint16(buf, uint16(len(rec.CutID)))
	copy(buf[2:], rec.CutID)
	copy(buf[2+len(rec.CutID):], rec.Payload)
	return buf, nil
}

func decodeRecord(slot int, data []byte) (Record, error) {
	if len(data) < 2 {
		return Record{}, fmt.Errorf("%w: slot %d: %d bytes", ErrCorruptRecord, slot, len(data))
	}
	n := int(binary.LittleEndian.Uint16(data))
	if len(data) < 2+n {
		return Record{}, fmt.Errorf("%w: slot %d: id length %d exceeds record", ErrCorruptRecord, slot, n)
	}
	return Record{
		Slot:    slot,
		CutID:   string(data[2 : 2+n]),
		Payload: append([]byte(nil), data[2+n:]...),
	}, nil
}

// MemoryStore is a SlotStore kept in process memory. It is mostly useful
// in tests and for runs where nothing should touch disk.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[int]Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[int]Record)}
}

func (s *MemoryStore) Get(_ context.Context, slot int) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.slots[slot]
	if !ok {
		return Record{}, false, nil
	}
	rec.Payload = append([]byte(nil), rec.Payload...)
	return rec, true, nil
}

func (s *MemoryStore) Put(_ context.Context, rec Record) error {
	if rec.Slot < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, rec.Slot)
	}
	rec.Payload = append([]byte(nil), rec.Payload...)
	s.mu.Lock()
	s.slots[rec.Slot] = rec
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	s.slots = make(map[int]Record)
	s.mu.Unlock()
	return nil
}

// Len returns the number of occupied slots.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}
