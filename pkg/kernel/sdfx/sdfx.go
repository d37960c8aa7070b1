// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
//
// Surfaces are sampled with marching cubes, so facets come out slightly
// rounded at their edges. It is useful as a cross-check for the bsp kernel
// and for coarse previews.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/gemcut/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel sampling meshes on a grid of cells along
// the longest bounding box axis. Non-positive values use DefaultMeshCells.
func New(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) (sdf.SDF3, error) {
	if s == nil {
		return nil, kernel.ErrEmptySolid
	}
	ss, ok := s.(*sdfxSolid)
	if !ok {
		return nil, fmt.Errorf("sdfx: %T: %w", s, kernel.ErrForeignSolid)
	}
	if ss.s == nil {
		return nil, kernel.ErrEmptySolid
	}
	return ss.s, nil
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Box creates a box with the given dimensions centered at the origin.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return &sdfxSolid{}
	}
	return wrap(s)
}

// Cylinder creates a cylinder around the Y axis. sdf.Cylinder3D is built
// along Z, so it is turned a quarter turn about X. The segments parameter
// is ignored since SDF represents smooth surfaces.
func (k *SdfxKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return &sdfxSolid{}
	}
	return wrap(sdf.Transform3D(s, sdf.RotateX(math.Pi/2)))
}

func (k *SdfxKernel) boolean(op string, a, b kernel.Solid, fn func(a, b sdf.SDF3) sdf.SDF3) (kernel.Solid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, fmt.Errorf("sdfx: %s: left operand: %w", op, err)
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, fmt.Errorf("sdfx: %s: right operand: %w", op, err)
	}
	return wrap(fn(sa, sb)), nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean("union", a, b, func(a, b sdf.SDF3) sdf.SDF3 { return sdf.Union3D(a, b) })
}

// Difference returns the difference a - b. An empty result is only
// detected when the solid is meshed.
func (k *SdfxKernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean("difference", a, b, sdf.Difference3D)
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean("intersection", a, b, func(a, b sdf.SDF3) sdf.SDF3 { return sdf.Intersect3D(a, b) })
}

// Translate moves a solid by v.
func (k *SdfxKernel) Translate(s kernel.Solid, v r3.Vec) kernel.Solid {
	src, err := unwrap(s)
	if err != nil {
		return s
	}
	m := sdf.Translate3d(v3.Vec{X: v.X, Y: v.Y, Z: v.Z})
	return wrap(sdf.Transform3D(src, m))
}

// Rotate rotates a solid about the origin. The quaternion is converted
// to the axis-angle form sdf.Rotate3d expects.
func (k *SdfxKernel) Rotate(s kernel.Solid, r r3.Rotation) kernel.Solid {
	src, err := unwrap(s)
	if err != nil {
		return s
	}
	axis, angle := axisAngle(r)
	if angle == 0 {
		return s
	}
	return wrap(sdf.Transform3D(src, sdf.Rotate3d(axis, angle)))
}

func axisAngle(r r3.Rotation) (v3.Vec, float64) {
	w := math.Max(-1, math.Min(1, r.Real))
	angle := 2 * math.Acos(w)
	sin := math.Sqrt(1 - w*w)
	if sin < 1e-12 {
		return v3.Vec{Y: 1}, 0
	}
	return v3.Vec{X: r.Imag / sin, Y: r.Jmag / sin, Z: r.Kmag / sin}, angle
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3, err := unwrap(s)
	if err != nil {
		return nil, fmt.Errorf("sdfx: to mesh: %w", err)
	}

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("sdfx: to mesh: %w", kernel.ErrEmptyResult)
	}

	m := &kernel.Mesh{
		Vertices: make([]float32, 0, len(triangles)*9),
		Normals:  make([]float32, 0, len(triangles)*9),
	}
	for _, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			m.Normals = append(m.Normals, nx, ny, nz)
		}
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("sdfx: to mesh: %w", kernel.ErrNonFinite)
	}
	return m, nil
}
