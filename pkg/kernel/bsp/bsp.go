// Package bsp implements the kernel.Kernel interface with exact polygon
// constructive solid geometry on binary space partitioning trees.
//
// Solids are closed sets of convex planar polygons. Booleans clip each
// operand against the other's BSP tree, so results keep flat faces
// exactly: a subtraction by a large box leaves one new planar facet.
// Every operation copies its operands; solids are immutable values.
package bsp

import (
	"fmt"
	"math"

	"github.com/chazu/gemcut/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// Compile-time interface checks.
var (
	_ kernel.Kernel = (*Kernel)(nil)
	_ kernel.Solid  = (*solid)(nil)
)

// Default work limits for one boolean operation.
const (
	DefaultMaxDepth    = 8192
	DefaultMaxPolygons = 200000
)

// solid wraps a polygon list to implement kernel.Solid.
type solid struct {
	polys []*polygon
}

// BoundingBox returns the axis-aligned bounding box.
func (s *solid) BoundingBox() (min, max [3]float64) {
	first := true
	for _, p := range s.polys {
		for _, v := range p.verts {
			c := [3]float64{v.X, v.Y, v.Z}
			for k := 0; k < 3; k++ {
				if first || c[k] < min[k] {
					min[k] = c[k]
				}
				if first || c[k] > max[k] {
					max[k] = c[k]
				}
			}
			first = false
		}
	}
	return min, max
}

// PolygonCount reports how many convex faces the solid holds.
func (s *solid) PolygonCount() int {
	return len(s.polys)
}

func (s *solid) clonePolygons() []*polygon {
	out := make([]*polygon, len(s.polys))
	for i, p := range s.polys {
		out[i] = p.clone()
	}
	return out
}

// Kernel implements kernel.Kernel with BSP polygon booleans.
type Kernel struct {
	lim limits
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithLimits overrides the per-operation depth and polygon budgets.
func WithLimits(maxDepth, maxPolygons int) Option {
	return func(k *Kernel) {
		if maxDepth > 0 {
			k.lim.maxDepth = maxDepth
		}
		if maxPolygons > 0 {
			k.lim.maxPolygons = maxPolygons
		}
	}
}

// New returns a BSP kernel.
func New(opts ...Option) *Kernel {
	k := &Kernel{lim: limits{maxDepth: DefaultMaxDepth, maxPolygons: DefaultMaxPolygons}}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

func unwrap(s kernel.Solid) (*solid, error) {
	if s == nil {
		return nil, kernel.ErrEmptySolid
	}
	bs, ok := s.(*solid)
	if !ok {
		return nil, fmt.Errorf("bsp: %T: %w", s, kernel.ErrForeignSolid)
	}
	if len(bs.polys) == 0 {
		return nil, kernel.ErrEmptySolid
	}
	return bs, nil
}

// Box creates a box with the given edge lengths centered at the origin.
func (k *Kernel) Box(x, y, z float64) kernel.Solid {
	hx, hy, hz := x/2, y/2, z/2
	c := func(sx, sy, sz float64) r3.Vec { return r3.Vec{X: sx * hx, Y: sy * hy, Z: sz * hz} }
	faces := [][]r3.Vec{
		{c(-1, -1, -1), c(-1, -1, 1), c(-1, 1, 1), c(-1, 1, -1)},
		{c(1, -1, -1), c(1, 1, -1), c(1, 1, 1), c(1, -1, 1)},
		{c(-1, -1, -1), c(1, -1, -1), c(1, -1, 1), c(-1, -1, 1)},
		{c(-1, 1, -1), c(-1, 1, 1), c(1, 1, 1), c(1, 1, -1)},
		{c(-1, -1, -1), c(-1, 1, -1), c(1, 1, -1), c(1, -1, -1)},
		{c(-1, -1, 1), c(1, -1, 1), c(1, 1, 1), c(-1, 1, 1)},
	}
	return primitive(faces)
}

// Cylinder creates a capped cylinder around the Y axis, centered at the
// origin, approximated by segments side faces.
func (k *Kernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	if segments < 3 {
		segments = 3
	}
	h := height / 2
	ring := func(y float64) []r3.Vec {
		out := make([]r3.Vec, segments)
		for i := range out {
			a := 2 * math.Pi * float64(i) / float64(segments)
			out[i] = r3.Vec{X: radius * math.Cos(a), Y: y, Z: radius * math.Sin(a)}
		}
		return out
	}
	bottom, top := ring(-h), ring(h)
	faces := make([][]r3.Vec, 0, segments+2)
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		faces = append(faces, []r3.Vec{bottom[i], top[i], top[j], bottom[j]})
	}
	faces = append(faces, bottom, top)
	return primitive(faces)
}

func primitive(faces [][]r3.Vec) kernel.Solid {
	s := &solid{}
	for _, f := range faces {
		if p := newOutwardPolygon(f); p != nil {
			s.polys = append(s.polys, p)
		}
	}
	return s
}

// Union returns a ∪ b.
func (k *Kernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return k.evaluate("union", a, b, func(na, nb *node) error {
		if err := na.clipTo(nb, k.lim); err != nil {
			return err
		}
		if err := nb.clipTo(na, k.lim); err != nil {
			return err
		}
		nb.invert()
		if err := nb.clipTo(na, k.lim); err != nil {
			return err
		}
		nb.invert()
		return na.build(nb.allPolygons(), 0, k.lim)
	})
}

// Difference returns a − b.
func (k *Kernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	return k.evaluate("difference", a, b, func(na, nb *node) error {
		na.invert()
		if err := na.clipTo(nb, k.lim); err != nil {
			return err
		}
		if err := nb.clipTo(na, k.lim); err != nil {
			return err
		}
		nb.invert()
		if err := nb.clipTo(na, k.lim); err != nil {
			return err
		}
		nb.invert()
		if err := na.build(nb.allPolygons(), 0, k.lim); err != nil {
			return err
		}
		na.invert()
		return nil
	})
}

// Intersection returns a ∩ b.
func (k *Kernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	return k.evaluate("intersection", a, b, func(na, nb *node) error {
		na.invert()
		if err := nb.clipTo(na, k.lim); err != nil {
			return err
		}
		nb.invert()
		if err := na.clipTo(nb, k.lim); err != nil {
			return err
		}
		if err := nb.clipTo(na, k.lim); err != nil {
			return err
		}
		if err := na.build(nb.allPolygons(), 0, k.lim); err != nil {
			return err
		}
		na.invert()
		return nil
	})
}

// evaluate runs a boolean on private copies of the operands and checks
// the result. A panic inside the tree code is reported as an error.
func (k *Kernel) evaluate(op string, a, b kernel.Solid, fn func(na, nb *node) error) (res kernel.Solid, err error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, fmt.Errorf("bsp: %s: left operand: %w", op, err)
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, fmt.Errorf("bsp: %s: right operand: %w", op, err)
	}

	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("bsp: %s: panic: %v: %w", op, r, kernel.ErrDegenerateInput)
		}
	}()

	na, err := newNode(sa.clonePolygons(), k.lim)
	if err != nil {
		return nil, fmt.Errorf("bsp: %s: %w", op, err)
	}
	nb, err := newNode(sb.clonePolygons(), k.lim)
	if err != nil {
		return nil, fmt.Errorf("bsp: %s: %w", op, err)
	}
	if err := fn(na, nb); err != nil {
		return nil, fmt.Errorf("bsp: %s: %w", op, err)
	}

	out := &solid{polys: na.allPolygons()}
	if len(out.polys) == 0 {
		return nil, fmt.Errorf("bsp: %s: %w", op, kernel.ErrEmptyResult)
	}
	for _, p := range out.polys {
		if !p.finite() {
			return nil, fmt.Errorf("bsp: %s: %w", op, kernel.ErrNonFinite)
		}
	}
	return out, nil
}

// Translate moves a solid by v.
func (k *Kernel) Translate(s kernel.Solid, v r3.Vec) kernel.Solid {
	src, err := unwrap(s)
	if err != nil {
		return s
	}
	out := &solid{polys: src.clonePolygons()}
	for _, p := range out.polys {
		for i := range p.verts {
			p.verts[i] = r3.Add(p.verts[i], v)
		}
		p.plane.w += r3.Dot(p.plane.n, v)
	}
	return out
}

// Rotate rotates a solid about the origin.
func (k *Kernel) Rotate(s kernel.Solid, r r3.Rotation) kernel.Solid {
	src, err := unwrap(s)
	if err != nil {
		return s
	}
	out := &solid{polys: src.clonePolygons()}
	for _, p := range out.polys {
		for i := range p.verts {
			p.verts[i] = r.Rotate(p.verts[i])
		}
		p.plane.n = r.Rotate(p.plane.n)
	}
	return out
}

// ToMesh fan-triangulates every convex face into a flat triangle list.
// Normals are left empty; callers assign them.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	src, err := unwrap(s)
	if err != nil {
		return nil, fmt.Errorf("bsp: to mesh: %w", err)
	}
	triCount := 0
	for _, p := range src.polys {
		triCount += len(p.verts) - 2
	}
	m := &kernel.Mesh{Vertices: make([]float32, 0, triCount*9)}
	for _, p := range src.polys {
		v0 := vec32(p.verts[0])
		for i := 1; i+1 < len(p.verts); i++ {
			m.AppendTriangle(v0, vec32(p.verts[i]), vec32(p.verts[i+1]))
		}
	}
	return m, nil
}

func vec32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
