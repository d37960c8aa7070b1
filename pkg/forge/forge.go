// Package forge ties the pipeline together: fetch a description, parse
// it, cut the solid, assign flat normals and cache the result.
package forge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chazu/gemcut/pkg/cutter"
	"github.com/chazu/gemcut/pkg/flatnormal"
	"github.com/chazu/gemcut/pkg/gemcad"
	"github.com/chazu/gemcut/pkg/geocache"
	"github.com/chazu/gemcut/pkg/kernel"
	"github.com/chazu/gemcut/pkg/source"
	"go.uber.org/zap"
)

var (
	// ErrFetch wraps failures to obtain description text. Only the
	// request that hit it fails.
	ErrFetch = errors.New("forge: fetching cut description")
	// ErrInvalidCut is returned when a description parses to something
	// that cannot be built.
	ErrInvalidCut = errors.New("forge: cut description is not buildable")
)

// Result is one finished mesh and how it was obtained.
type Result struct {
	CutID    string
	Mesh     *kernel.Mesh
	Tier     geocache.Tier // TierNone when the mesh was built by this call
	Fallback bool          // the built-in cut stood in for CutID

	// Set only when the mesh was built by this call.
	Cut      *gemcad.Cut
	Issues   []gemcad.ParseIssue
	Findings []gemcad.ValidationIssue
	Report   *cutter.Report
	Normals  flatnormal.Stats
	Elapsed  time.Duration
}

// Forge runs the pipeline. Cache and Fetcher may be nil; Builder may not.
type Forge struct {
	Fetcher source.Fetcher
	Cache   *geocache.Cache
	Builder *cutter.Builder
	Scale   float64
	Logger  *zap.Logger
}

func (f *Forge) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

func (f *Forge) scale() float64 {
	if f.Scale <= 0 {
		return 1
	}
	return f.Scale
}

// Load returns the mesh for cutID, from cache when possible. slot selects
// the persistent cache slot; pass geocache.NoSlot for memory only.
func (f *Forge) Load(ctx context.Context, slot int, cutID string) (*Result, error) {
	if res, ok := f.cached(ctx, slot, cutID); ok {
		return res, nil
	}
	if f.Fetcher == nil {
		return nil, fmt.Errorf("%w: %s: no fetcher configured", ErrFetch, cutID)
	}
	text, err := f.Fetcher.Fetch(ctx, cutID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, cutID, err)
	}
	res, err := f.BuildText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("forge: %s: %w", cutID, err)
	}
	res.CutID = cutID
	f.store(ctx, slot, res)
	return res, nil
}

// LoadOrFallback is Load, except that a fetch failure builds the
// standard brilliant instead. Build failures are still returned.
func (f *Forge) LoadOrFallback(ctx context.Context, slot int, cutID string) (*Result, error) {
	res, err := f.Load(ctx, slot, cutID)
	if err == nil || !errors.Is(err, ErrFetch) {
		return res, err
	}
	f.logger().Warn("using built-in cut", zap.String("cut", cutID), zap.Error(err))

	id := gemcad.StandardBrilliantID
	if res, ok := f.cached(ctx, geocache.NoSlot, id); ok {
		res.Fallback = true
		return res, nil
	}
	res, berr := f.BuildCut(ctx, gemcad.StandardBrilliant())
	if berr != nil {
		return nil, fmt.Errorf("forge: building fallback for %s: %w", cutID, berr)
	}
	res.CutID = id
	res.Fallback = true
	f.store(ctx, geocache.NoSlot, res)
	return res, nil
}

// BuildText parses and builds a description without touching the cache.
func (f *Forge) BuildText(ctx context.Context, text string) (*Result, error) {
	cut, issues := gemcad.Parse(text)
	for _, is := range issues {
		f.logger().Warn("skipped description line", zap.Int("line", is.Line), zap.String("reason", is.Message))
	}
	res, err := f.BuildCut(ctx, cut)
	if err != nil {
		return nil, err
	}
	res.Issues = issues
	return res, nil
}

// BuildCut cuts and shades an already parsed cut.
func (f *Forge) BuildCut(ctx context.Context, cut *gemcad.Cut) (*Result, error) {
	if f.Builder == nil {
		return nil, errors.New("forge: no builder configured")
	}
	findings := gemcad.Validate(cut)
	if gemcad.HasErrors(findings) {
		msgs := make([]string, 0, len(findings))
		for _, v := range findings {
			if v.Severity == gemcad.SeverityError {
				msgs = append(msgs, v.Error())
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidCut, strings.Join(msgs, "; "))
	}

	start := time.Now()
	mesh, report, err := f.Builder.BuildContext(ctx, cut, f.scale())
	if err != nil {
		return nil, err
	}
	st := flatnormal.Compute(mesh)
	res := &Result{
		Mesh:     mesh,
		Cut:      cut,
		Findings: findings,
		Report:   report,
		Normals:  st,
		Elapsed:  time.Since(start),
	}
	f.logger().Info("cut built",
		zap.String("name", cut.Name),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Int("failed_steps", len(report.Failures)),
		zap.Int("degenerate", st.Degenerate),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

func (f *Forge) cached(ctx context.Context, slot int, cutID string) (*Result, bool) {
	if f.Cache == nil {
		return nil, false
	}
	m, tier, ok := f.Cache.Get(ctx, slot, cutID)
	if !ok {
		return nil, false
	}
	f.logger().Debug("cache hit", zap.String("cut", cutID), zap.Stringer("tier", tier))
	return &Result{CutID: cutID, Mesh: m, Tier: tier}, true
}

func (f *Forge) store(ctx context.Context, slot int, res *Result) {
	if f.Cache != nil {
		f.Cache.Put(ctx, slot, res.CutID, res.Mesh)
	}
}
