// Package geocache caches built cut meshes in three tiers.
//
// Tier one is an in-process map keyed by cut identifier. Tier two is a
// SlotStore: a handful of numbered slots, each holding the encoded mesh of
// whichever cut was last put there. A slot hit requires the stored cut
// identifier to match; a slot holding another cut is a miss. Tier three
// is the caller rebuilding the mesh after both tiers miss.
//
// The cache never fails a lookup because of the store. Store and decode
// errors are logged and reported as a miss, so the caller rebuilds.
package geocache

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/chazu/gemcut/pkg/kernel"
	"github.com/chazu/gemcut/pkg/meshcodec"
	"go.uber.org/zap"
)

// MaxSlots is the default number of persistent slots.
const MaxSlots = 10

// NoSlot asks for the memory tier only.
const NoSlot = -1

// Tier identifies which cache level satisfied a lookup.
type Tier int

const (
	TierNone Tier = iota
	TierMemory
	TierSlot
)

func (t Tier) String() string {
	switch t {
	case TierMemory:
		return "memory"
	case TierSlot:
		return "slot"
	default:
		return "none"
	}
}

// Stats is a snapshot of cache counters.
type Stats struct {
	MemoryHits int64
	SlotHits   int64
	Misses     int64
	Entries    int
}

// Cache is safe for concurrent use. Puts are last-writer-wins.
type Cache struct {
	mu       sync.RWMutex
	mem      map[string]*kernel.Mesh
	store    SlotStore
	maxSlots int
	logger   *zap.Logger

	memoryHits atomic.Int64
	slotHits   atomic.Int64
	misses     atomic.Int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger for degraded store operations.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxSlots overrides MaxSlots.
func WithMaxSlots(n int) Option {
	return func(c *Cache) {
		if n >= 0 {
			c.maxSlots = n
		}
	}
}

// New returns a cache backed by store. A nil store disables the slot
// tier.
func New(store SlotStore, opts ...Option) *Cache {
	c := &Cache{
		mem:      make(map[string]*kernel.Mesh),
		store:    store,
		maxSlots: MaxSlots,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) slotValid(slot int) bool {
	return c.store != nil && slot >= 0 && slot < c.maxSlots
}

// Get looks cutID up in memory, then in slot when it is a valid slot
// number. The returned mesh is a copy the caller may modify. A slot hit
// is promoted into memory.
func (c *Cache) Get(ctx context.Context, slot int, cutID string) (*kernel.Mesh, Tier, bool) {
	c.mu.RLock()
	m, ok := c.mem[cutID]
	c.mu.RUnlock()
	if ok {
		c.memoryHits.Add(1)
		return m.Clone(), TierMemory, true
	}

	if c.slotValid(slot) {
		if m, ok := c.getSlot(ctx, slot, cutID); ok {
			c.slotHits.Add(1)
			c.putMemory(cutID, m)
			return m.Clone(), TierSlot, true
		}
	}

	c.misses.Add(1)
	return nil, TierNone, false
}

func (c *Cache) getSlot(ctx context.Context, slot int, cutID string) (*kernel.Mesh, bool) {
	log := c.logger.With(zap.Int("slot", slot), zap.String("cut", cutID))
	rec, found, err := c.store.Get(ctx, slot)
	if err != nil {
		log.Warn("slot store read failed, treating as miss", zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	if rec.CutID != cutID {
		log.Debug("slot holds another cut", zap.String("stored", rec.CutID))
		return nil, false
	}
	m, err := meshcodec.Decode(rec.Payload)
	if err != nil {
		log.Warn("slot payload is corrupt, treating as miss", zap.Error(err))
		return nil, false
	}
	return m, true
}

// Put stores a copy of m under cutID in memory and, when slot is valid,
// in the slot store. Store failures are logged and otherwise ignored.
func (c *Cache) Put(ctx context.Context, slot int, cutID string, m *kernel.Mesh) {
	if m == nil {
		return
	}
	c.putMemory(cutID, m.Clone())
	if !c.slotValid(slot) {
		return
	}

	log := c.logger.With(zap.Int("slot", slot), zap.String("cut", cutID))
	payload, err := meshcodec.Encode(m)
	if err != nil {
		log.Warn("mesh cannot be encoded for the slot store", zap.Error(err))
		return
	}
	if err := c.store.Put(ctx, Record{Slot: slot, CutID: cutID, Payload: payload}); err != nil {
		log.Warn("slot store write failed", zap.Error(err))
	}
}

func (c *Cache) putMemory(cutID string, m *kernel.Mesh) {
	c.mu.Lock()
	c.mem[cutID] = m
	c.mu.Unlock()
}

// Clear empties memory and deletes every persistent slot. The returned
// error is informational; memory is cleared regardless.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.mem = make(map[string]*kernel.Mesh)
	c.mu.Unlock()
	if c.store == nil {
		return nil
	}
	if err := c.store.DeleteAll(ctx); err != nil {
		c.logger.Warn("slot store clear failed", zap.Error(err))
		return err
	}
	return nil
}

// Keys returns the cut identifiers held in memory, in no particular order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.mem))
	for k := range c.mem {
		keys = append(keys, k)
	}
	return keys
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	entries := len(c.mem)
	c.mu.RUnlock()
	return Stats{
		MemoryHits: c.memoryHits.Load(),
		SlotHits:   c.slotHits.Load(),
		Misses:     c.misses.Load(),
		Entries:    entries,
	}
}
