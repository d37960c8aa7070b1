package forge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/chazu/gemcut/pkg/meshcodec"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PrebuildStats counts the outcome of a Prebuild run.
type PrebuildStats struct {
	Processed int
	Skipped   int // output already present
	Failed    int
}

// OutputName is the file a prebuilt cut is written to.
func OutputName(id string) string {
	return id + ".bin"
}

// Prebuild builds every id that has no <outDir>/<id>.bin yet and writes
// its encoded mesh there. Cuts are built in parallel, at most workers at
// a time; a failing cut is logged and counted, never fatal to the run.
// Only cancellation of ctx stops the run early.
func (f *Forge) Prebuild(ctx context.Context, ids []string, outDir string, workers int) (PrebuildStats, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return PrebuildStats{}, fmt.Errorf("forge: creating %s: %w", outDir, err)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	log := f.logger()
	log.Info("prebuild starting", zap.Int("cuts", len(ids)), zap.Int("workers", workers))

	var processed, skipped, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, id := range ids {
		if id == "" || filepath.Base(id) != id {
			failed.Add(1)
			log.Error("prebuild skipped unsafe id", zap.String("cut", id))
			continue
		}
		out := filepath.Join(outDir, OutputName(id))
		if _, err := os.Stat(out); err == nil {
			skipped.Add(1)
			continue
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := f.prebuildOne(gctx, id, out); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				log.Error("prebuild failed", zap.String("cut", id), zap.Error(err))
				return nil
			}
			if n := processed.Add(1); n%50 == 0 {
				log.Info("prebuild progress", zap.Int64("processed", n))
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	st := PrebuildStats{
		Processed: int(processed.Load()),
		Skipped:   int(skipped.Load()),
		Failed:    int(failed.Load()),
	}
	log.Info("prebuild complete",
		zap.Int("processed", st.Processed),
		zap.Int("skipped", st.Skipped),
		zap.Int("failed", st.Failed),
	)
	return st, err
}

func (f *Forge) prebuildOne(ctx context.Context, id, out string) error {
	if f.Fetcher == nil {
		return fmt.Errorf("%w: no fetcher configured", ErrFetch)
	}
	text, err := f.Fetcher.Fetch(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	res, err := f.BuildText(ctx, text)
	if err != nil {
		return err
	}
	data, err := meshcodec.Encode(res.Mesh)
	if err != nil {
		return err
	}
	return writeFileAtomic(out, data)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".prebuild-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// ReadIndex reads a JSON array of cut identifiers, the index format that
// accompanies a directory of descriptions.
func ReadIndex(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("forge: reading index: %w", err)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("forge: parsing index %s: %w", path, err)
	}
	if len(ids) == 0 {
		return nil, errors.New("forge: index lists no cuts")
	}
	return ids, nil
}
