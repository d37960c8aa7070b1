package geocache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirStore keeps one file per slot, slot-<n>.bin, in a directory. Writes
// go to a temporary file that is renamed over the slot, so a reader never
// sees a half-written record.
type DirStore struct {
	Dir string
}

// NewDirStore creates dir if needed and returns a store rooted there.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("geocache: creating store directory: %w", err)
	}
	return &DirStore{Dir: dir}, nil
}

func (s *DirStore) path(slot int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("slot-%d.bin", slot))
}

func (s *DirStore) Get(ctx context.Context, slot int) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}
	if slot < 0 {
		return Record{}, false, fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	data, err := os.ReadFile(s.path(slot))
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("geocache: reading slot %d: %w", slot, err)
	}
	rec, err := decodeRecord(slot, data)
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

func (s *DirStore) Put(ctx context.Context, rec Record) error {
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

	tmp, err := os.CreateTemp(s.Dir, ".slot-*.tmp")
	if err != nil {
		return fmt.Errorf("geocache: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("geocache: writing slot %d: %w", rec.Slot, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("geocache: writing slot %d: %w", rec.Slot, err)
	}
	if err := os.Rename(tmpName, s.path(rec.Slot)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("geocache: committing slot %d: %w", rec.Slot, err)
	}
	return nil
}

// DeleteAll removes every slot file. Other files in the directory are
// left alone.
func (s *DirStore) DeleteAll(ctx context.Context) error {
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("geocache: listing store directory: %w", err)
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "slot-") || !strings.HasSuffix(name, ".bin") {
			continue
		}
		if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("geocache: removing %s: %w", name, err)
		}
	}
	return nil
}
