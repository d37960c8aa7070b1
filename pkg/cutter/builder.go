// Package cutter builds faceted solids from parsed cut descriptions.
//
// A build starts from a capped cylinder around the vertical (+Y) axis
// and subtracts one cutting cube per (facet, gear index) pair, in parse
// order and then index order. Each subtraction is a fold step over the
// accumulated solid: a step that fails leaves the solid as it was and is
// recorded in the Report, so one bad facet never costs the whole stone.
package cutter

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/chazu/gemcut/pkg/flatnormal"
	"github.com/chazu/gemcut/pkg/gemcad"
	"github.com/chazu/gemcut/pkg/kernel"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// Base solid proportions relative to the largest scaled facet distance.
const (
	BaseRadiusFactor = 1.5
	BaseHeightFactor = 3.0
	// CutterEdgeFactor sizes the cutting cube relative to the base
	// radius so it spans the whole solid from any placement.
	CutterEdgeFactor = 4.0

	DefaultCylinderSegments = 64
)

var (
	ErrNoFacets       = errors.New("cutter: cut has no facets")
	ErrInvalidScale   = errors.New("cutter: scale must be a positive finite number")
	ErrDegenerateBase = errors.New("cutter: largest facet distance must be positive")
	ErrNilKernel      = errors.New("cutter: no geometry kernel")
)

// StepFailure records one subtraction that was skipped.
type StepFailure struct {
	Facet     int // position in Cut.Facets
	FacetName string
	Index     int // gear index
	Err       error
}

func (f StepFailure) Error() string {
	name := f.FacetName
	if name == "" {
		name = fmt.Sprintf("#%d", f.Facet)
	}
	return fmt.Sprintf("facet %s at index %d: %v", name, f.Index, f.Err)
}

func (f StepFailure) Unwrap() error { return f.Err }

// Report summarizes a build.
type Report struct {
	Steps    int // subtractions attempted
	Applied  int // subtractions that succeeded
	Failures []StepFailure
	Culled   int // zero-area triangles removed from the output
}

// Builder turns cuts into meshes with a geometry kernel. The zero value
// is not usable; Kernel must be set. A Builder holds no per-build state
// and may be shared by concurrent builds when its Kernel allows that.
type Builder struct {
	Kernel           kernel.Kernel
	Logger           *zap.Logger
	CylinderSegments int
}

// New returns a Builder using k and logging to logger (nil for none).
func New(k kernel.Kernel, logger *zap.Logger) *Builder {
	return &Builder{Kernel: k, Logger: logger, CylinderSegments: DefaultCylinderSegments}
}

func (b *Builder) logger() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

// Build cuts the stone described by cut, with every distance multiplied
// by scale. The returned mesh is a flat triangle list without normals.
func (b *Builder) Build(cut *gemcad.Cut, scale float64) (*kernel.Mesh, *Report, error) {
	return b.BuildContext(context.Background(), cut, scale)
}

// BuildContext is Build with cancellation checked between subtractions.
func (b *Builder) BuildContext(ctx context.Context, cut *gemcad.Cut, scale float64) (*kernel.Mesh, *Report, error) {
	if b.Kernel == nil {
		return nil, nil, ErrNilKernel
	}
	if cut == nil || len(cut.Facets) == 0 {
		return nil, nil, ErrNoFacets
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, nil, fmt.Errorf("%w: %g", ErrInvalidScale, scale)
	}
	maxDistance := cut.MaxDistance() * scale
	if !(maxDistance > 0) || math.IsInf(maxDistance, 0) {
		return nil, nil, fmt.Errorf("%w: %g", ErrDegenerateBase, maxDistance)
	}

	log := b.logger().With(zap.String("cut", cut.Name))
	baseRadius := maxDistance * BaseRadiusFactor
	edge := baseRadius * CutterEdgeFactor
	segments := b.CylinderSegments
	if segments <= 0 {
		segments = DefaultCylinderSegments
	}

	acc := b.Kernel.Cylinder(maxDistance*BaseHeightFactor, baseRadius, segments)
	report := &Report{}

	for fi, f := range cut.Facets {
		for _, idx := range f.Indices {
			if err := ctx.Err(); err != nil {
				return nil, report, err
			}
			report.Steps++
			next, err := b.subtract(acc, cut.Azimuth(idx), f, scale, edge)
			if err != nil {
				failure := StepFailure{Facet: fi, FacetName: f.Name, Index: idx, Err: err}
				report.Failures = append(report.Failures, failure)
				log.Warn("subtraction failed, keeping previous solid",
					zap.Int("facet", fi),
					zap.String("name", f.Name),
					zap.Int("index", idx),
					zap.Error(err),
				)
				continue
			}
			acc = next
			report.Applied++
		}
	}

	mesh, err := b.Kernel.ToMesh(acc)
	if err != nil {
		return nil, report, fmt.Errorf("cutter: converting solid to mesh: %w", err)
	}
	report.Culled = flatnormal.Cull(mesh)
	mesh.PartName = cut.Name

	log.Debug("cut built",
		zap.Int("steps", report.Steps),
		zap.Int("applied", report.Applied),
		zap.Int("failed", len(report.Failures)),
		zap.Int("culled", report.Culled),
		zap.Int("triangles", mesh.TriangleCount()),
	)
	return mesh, report, nil
}

// subtract is one fold step: it returns the accumulated solid with the
// half-space of one (facet, index) pair removed.
func (b *Builder) subtract(acc kernel.Solid, azimuth float64, f gemcad.Facet, scale, edge float64) (kernel.Solid, error) {
	if math.IsNaN(f.Angle) || math.IsInf(f.Angle, 0) || math.IsNaN(f.Distance) || math.IsInf(f.Distance, 0) {
		return nil, kernel.ErrNonFinite
	}
	n := PlaneNormal(f.Angle, azimuth)
	if !finiteVec(n) {
		return nil, kernel.ErrNonFinite
	}

	// Rotate first so the cube's -Y face turns to face -n, then push it
	// out until that face lies on the cutting plane.
	tool := b.Kernel.Box(edge, edge, edge)
	tool = b.Kernel.Rotate(tool, ShortestArc(up, n))
	tool = b.Kernel.Translate(tool, r3.Scale(f.Distance*scale+edge/2, n))

	return b.Kernel.Difference(acc, tool)
}

func finiteVec(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
