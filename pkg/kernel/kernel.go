// Package kernel defines the abstract geometry kernel interface.
// Implementations (bsp, sdfx) provide solid modeling and boolean
// operations behind this interface. The kernel abstraction allows
// swapping backends without changing the cut builder.
//
// All kernels share one convention: +Y is the vertical axis. Cylinders
// are built around Y and boxes are centered at the origin.
package kernel

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// Boolean operation failures. Kernels wrap these so that callers can
// tell a recoverable geometric failure from a programming error.
var (
	ErrEmptySolid      = errors.New("kernel: empty solid")
	ErrEmptyResult     = errors.New("kernel: boolean result is empty")
	ErrNonFinite       = errors.New("kernel: non-finite coordinate")
	ErrTooComplex      = errors.New("kernel: polygon budget exceeded")
	ErrForeignSolid    = errors.New("kernel: solid belongs to another kernel")
	ErrDegenerateInput = errors.New("kernel: degenerate input")
)

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives, centered at the origin.
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid

	// Boolean operations. A non-nil error means the operation could not
	// be evaluated; the operands are left untouched.
	Union(a, b Solid) (Solid, error)
	Difference(a, b Solid) (Solid, error)
	Intersection(a, b Solid) (Solid, error)

	// Transforms
	Translate(s Solid, v r3.Vec) Solid
	Rotate(s Solid, r r3.Rotation) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
