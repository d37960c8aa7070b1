package bsp

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// epsilon is the plane thickness used to classify points as coplanar.
const epsilon = 1e-5

// weldTolerance collapses consecutive vertices produced by splitting.
const weldTolerance = 1e-9

type plane struct {
	n r3.Vec
	w float64
}

func (p plane) flip() plane {
	return plane{n: r3.Scale(-1, p.n), w: -p.w}
}

func (p plane) distance(v r3.Vec) float64 {
	return r3.Dot(p.n, v) - p.w
}

// newellPlane fits a plane to a polygon loop. It is stable for loops
// with collinear leading vertices, unlike a three-point cross product.
func newellPlane(verts []r3.Vec) (plane, bool) {
	var n, c r3.Vec
	for i, a := range verts {
		b := verts[(i+1)%len(verts)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
		c = r3.Add(c, a)
	}
	l := r3.Norm(n)
	if l < 1e-12 || math.IsNaN(l) || math.IsInf(l, 0) {
		return plane{}, false
	}
	n = r3.Scale(1/l, n)
	c = r3.Scale(1/float64(len(verts)), c)
	return plane{n: n, w: r3.Dot(n, c)}, true
}

// polygon is a convex planar loop. The plane is inherited from the
// polygon it was split from, which keeps fragments exactly coplanar.
type polygon struct {
	verts []r3.Vec
	plane plane
}

func newPolygon(verts []r3.Vec) (*polygon, bool) {
	if len(verts) < 3 {
		return nil, false
	}
	pl, ok := newellPlane(verts)
	if !ok {
		return nil, false
	}
	return &polygon{verts: verts, plane: pl}, true
}

// newOutwardPolygon builds a face of a convex primitive centered at the
// origin, reversing the loop when its normal points inward.
func newOutwardPolygon(verts []r3.Vec) *polygon {
	p, ok := newPolygon(verts)
	if !ok {
		return nil
	}
	var c r3.Vec
	for _, v := range verts {
		c = r3.Add(c, v)
	}
	if r3.Dot(p.plane.n, c) < 0 {
		p.flip()
	}
	return p
}

func (p *polygon) clone() *polygon {
	return &polygon{verts: append([]r3.Vec(nil), p.verts...), plane: p.plane}
}

func (p *polygon) flip() {
	for i, j := 0, len(p.verts)-1; i < j; i, j = i+1, j-1 {
		p.verts[i], p.verts[j] = p.verts[j], p.verts[i]
	}
	p.plane = p.plane.flip()
}

func (p *polygon) finite() bool {
	for _, v := range p.verts {
		if !finiteVec(v) {
			return false
		}
	}
	return true
}

func finiteVec(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}

// weld drops consecutive duplicate vertices, including the wrap-around.
func weld(verts []r3.Vec) []r3.Vec {
	out := verts[:0]
	for _, v := range verts {
		if len(out) > 0 && r3.Norm2(r3.Sub(v, out[len(out)-1])) <= weldTolerance*weldTolerance {
			continue
		}
		out = append(out, v)
	}
	for len(out) > 1 && r3.Norm2(r3.Sub(out[0], out[len(out)-1])) <= weldTolerance*weldTolerance {
		out = out[:len(out)-1]
	}
	return out
}

const (
	coplanar = 0
	front    = 1
	back     = 2
	spanning = 3
)

// splitPolygon classifies poly against p and appends it, or its pieces,
// to the matching lists. Coplanar polygons go to coplanarFront or
// coplanarBack depending on their orientation relative to p.
func (p plane) splitPolygon(poly *polygon, coplanarFront, coplanarBack, fronts, backs *[]*polygon) {
	polyType := 0
	types := make([]int, len(poly.verts))
	for i, v := range poly.verts {
		t := p.distance(v)
		typ := coplanar
		if t < -epsilon {
			typ = back
		} else if t > epsilon {
			typ = front
		}
		polyType |= typ
		types[i] = typ
	}

	switch polyType {
	case coplanar:
		if r3.Dot(p.n, poly.plane.n) > 0 {
			*coplanarFront = append(*coplanarFront, poly)
		} else {
			*coplanarBack = append(*coplanarBack, poly)
		}
	case front:
		*fronts = append(*fronts, poly)
	case back:
		*backs = append(*backs, poly)
	case spanning:
		f := make([]r3.Vec, 0, len(poly.verts)+1)
		b := make([]r3.Vec, 0, len(poly.verts)+1)
		for i, vi := range poly.verts {
			j := (i + 1) % len(poly.verts)
			ti, tj := types[i], types[j]
			vj := poly.verts[j]
			if ti != back {
				f = append(f, vi)
			}
			if ti != front {
				b = append(b, vi)
			}
			if ti|tj == spanning {
				t := (p.w - r3.Dot(p.n, vi)) / r3.Dot(p.n, r3.Sub(vj, vi))
				v := r3.Add(vi, r3.Scale(t, r3.Sub(vj, vi)))
				f = append(f, v)
				b = append(b, v)
			}
		}
		if f = weld(f); len(f) >= 3 {
			*fronts = append(*fronts, &polygon{verts: f, plane: poly.plane})
		}
		if b = weld(b); len(b) >= 3 {
			*backs = append(*backs, &polygon{verts: b, plane: poly.plane})
		}
	}
}
