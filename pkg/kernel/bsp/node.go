package bsp

import (
	"fmt"

	"github.com/chazu/gemcut/pkg/kernel"
)

// limits bounds the work of one boolean evaluation. Exceeding either
// limit aborts the operation with kernel.ErrTooComplex.
type limits struct {
	maxDepth    int
	maxPolygons int
}

// node is one level of a BSP tree. Polygons coplanar with the node's
// splitting plane are stored on the node itself.
type node struct {
	plane    plane
	hasPlane bool
	front    *node
	back     *node
	polygons []*polygon
}

func newNode(polys []*polygon, lim limits) (*node, error) {
	n := &node{}
	if err := n.build(polys, 0, lim); err != nil {
		return nil, err
	}
	return n, nil
}

// invert converts solid space to empty space and back.
func (n *node) invert() {
	for _, p := range n.polygons {
		p.flip()
	}
	n.plane = n.plane.flip()
	if n.front != nil {
		n.front.invert()
	}
	if n.back != nil {
		n.back.invert()
	}
	n.front, n.back = n.back, n.front
}

// clipPolygons removes the parts of polys that lie inside this tree.
func (n *node) clipPolygons(polys []*polygon, depth int, lim limits) ([]*polygon, error) {
	if depth > lim.maxDepth {
		return nil, fmt.Errorf("bsp: clip depth %d: %w", depth, kernel.ErrTooComplex)
	}
	if !n.hasPlane {
		return append([]*polygon(nil), polys...), nil
	}
	var f, b []*polygon
	for _, p := range polys {
		n.plane.splitPolygon(p, &f, &b, &f, &b)
	}
	if len(f)+len(b) > lim.maxPolygons {
		return nil, fmt.Errorf("bsp: %d fragments: %w", len(f)+len(b), kernel.ErrTooComplex)
	}
	var err error
	if n.front != nil {
		if f, err = n.front.clipPolygons(f, depth+1, lim); err != nil {
			return nil, err
		}
	}
	if n.back != nil {
		if b, err = n.back.clipPolygons(b, depth+1, lim); err != nil {
			return nil, err
		}
	} else {
		b = nil
	}
	return append(f, b...), nil
}

// clipTo removes all polygons in this tree that are inside other.
func (n *node) clipTo(other *node, lim limits) error {
	clipped, err := other.clipPolygons(n.polygons, 0, lim)
	if err != nil {
		return err
	}
	n.polygons = clipped
	if n.front != nil {
		if err := n.front.clipTo(other, lim); err != nil {
			return err
		}
	}
	if n.back != nil {
		if err := n.back.clipTo(other, lim); err != nil {
			return err
		}
	}
	return nil
}

func (n *node) allPolygons() []*polygon {
	out := append([]*polygon(nil), n.polygons...)
	if n.front != nil {
		out = append(out, n.front.allPolygons()...)
	}
	if n.back != nil {
		out = append(out, n.back.allPolygons()...)
	}
	return out
}

// build inserts polys into the tree. The first polygon's plane becomes
// the splitting plane of an empty node.
func (n *node) build(polys []*polygon, depth int, lim limits) error {
	if len(polys) == 0 {
		return nil
	}
	if depth > lim.maxDepth {
		return fmt.Errorf("bsp: tree depth %d: %w", depth, kernel.ErrTooComplex)
	}
	if !n.hasPlane {
		n.plane = polys[0].plane
		n.hasPlane = true
	}
	var f, b []*polygon
	for _, p := range polys {
		n.plane.splitPolygon(p, &n.polygons, &n.polygons, &f, &b)
	}
	if len(f)+len(b)+len(n.polygons) > lim.maxPolygons {
		return fmt.Errorf("bsp: %d polygons: %w", len(f)+len(b)+len(n.polygons), kernel.ErrTooComplex)
	}
	if len(f) > 0 {
		if n.front == nil {
			n.front = &node{}
		}
		if err := n.front.build(f, depth+1, lim); err != nil {
			return err
		}
	}
	if len(b) > 0 {
		if n.back == nil {
			n.back = &node{}
		}
		if err := n.back.build(b, depth+1, lim); err != nil {
			return err
		}
	}
	return nil
}
