package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/gemcut/internal/config"
	"github.com/chazu/gemcut/pkg/cutter"
	"github.com/chazu/gemcut/pkg/forge"
	"github.com/chazu/gemcut/pkg/geocache"
	"github.com/chazu/gemcut/pkg/kernel"
	"github.com/chazu/gemcut/pkg/kernel/bsp"
	"github.com/chazu/gemcut/pkg/kernel/manifold"
	"github.com/chazu/gemcut/pkg/kernel/sdfx"
	"github.com/chazu/gemcut/pkg/source"
	"go.uber.org/zap"
)

// services turns configuration into the pipeline's collaborators. Stores
// that hold files open are closed by Close.
type services struct {
	cfg     *config.Config
	log     *zap.Logger
	closers []func() error
}

func newServices(cfg *config.Config, log *zap.Logger) *services {
	return &services{cfg: cfg, log: log}
}

func (r *services) kernel() (kernel.Kernel, error) {
	switch r.cfg.Engine.Kernel {
	case config.KernelSDFX:
		return sdfx.New(r.cfg.Engine.SDFXCells), nil
	case config.KernelManifold:
		return manifold.New()
	default:
		return bsp.New(), nil
	}
}

func (r *services) builder() (*cutter.Builder, error) {
	k, err := r.kernel()
	if err != nil {
		return nil, err
	}
	b := cutter.New(k, r.log.Named("cutter"))
	b.CylinderSegments = r.cfg.Engine.CylinderSegments
	return b, nil
}

func (r *services) slotStore() (geocache.SlotStore, error) {
	switch r.cfg.Cache.Store {
	case config.StoreDir:
		return geocache.NewDirStore(r.cfg.Cache.Path)
	case config.StoreBolt:
		if err := os.MkdirAll(filepath.Dir(r.cfg.Cache.Path), 0o755); err != nil {
			return nil, err
		}
		s, err := geocache.OpenBoltStore(r.cfg.Cache.Path)
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, s.Close)
		return s, nil
	default:
		return geocache.NewMemoryStore(), nil
	}
}

func (r *services) cache() (*geocache.Cache, error) {
	store, err := r.slotStore()
	if err != nil {
		return nil, fmt.Errorf("opening slot store: %w", err)
	}
	return geocache.New(store,
		geocache.WithLogger(r.log.Named("cache")),
		geocache.WithMaxSlots(r.cfg.Cache.MaxSlots),
	), nil
}

func (r *services) fetcher() source.Fetcher {
	if r.cfg.Source.BaseURL != "" {
		return source.NewHTTPFetcher(r.cfg.Source.BaseURL, r.cfg.Source.Timeout)
	}
	return source.DirFetcher{Root: r.cfg.Source.Dir}
}

func (r *services) forge() (*forge.Forge, error) {
	b, err := r.builder()
	if err != nil {
		return nil, err
	}
	c, err := r.cache()
	if err != nil {
		return nil, err
	}
	return &forge.Forge{
		Fetcher: r.fetcher(),
		Cache:   c,
		Builder: b,
		Scale:   r.cfg.Engine.Scale,
		Logger:  r.log.Named("forge"),
	}, nil
}

// Close releases every store opened so far.
func (r *services) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c())
	}
	r.closers = nil
	return errors.Join(errs...)
}

// isFilePath reports whether arg names a local description file rather
// than a cut identifier.
func isFilePath(arg string) bool {
	if strings.ContainsAny(arg, `/\`) {
		return true
	}
	if !strings.HasSuffix(arg, source.Extension) {
		return false
	}
	_, err := os.Stat(arg)
	return err == nil
}
