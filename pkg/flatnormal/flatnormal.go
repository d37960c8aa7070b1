// Package flatnormal assigns one normal per triangle so facet edges stay
// sharp when shaded.
package flatnormal

import (
	"math"

	"github.com/chazu/gemcut/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// degenerateLength is the cross product length at or below which a
// triangle is treated as having no area.
const degenerateLength = 1e-12

// fallback is used when the first triangle of a mesh is degenerate.
var fallback = [3]float32{0, 1, 0}

// Stats reports what Compute did.
type Stats struct {
	Triangles  int
	Degenerate int // triangles that reused the previous normal
}

// Compute overwrites m.Normals with one unit normal per triangle,
// normalize(cross(v1-v0, v2-v0)), repeated for all three vertices. A
// degenerate triangle reuses the normal of the triangle before it.
// Compute mutates m in place.
func Compute(m *kernel.Mesh) Stats {
	var st Stats
	if m == nil {
		return st
	}
	st.Triangles = m.TriangleCount()
	if cap(m.Normals) >= len(m.Vertices) {
		m.Normals = m.Normals[:len(m.Vertices)]
	} else {
		m.Normals = make([]float32, len(m.Vertices))
	}

	prev := fallback
	for i := 0; i < st.Triangles; i++ {
		n, ok := faceNormal(m.Triangle(i))
		if !ok {
			n = prev
			st.Degenerate++
		}
		prev = n
		for j := 0; j < 3; j++ {
			copy(m.Normals[i*9+j*3:i*9+j*3+3], n[:])
		}
	}
	return st
}

// Cull removes degenerate triangles from m and returns how many were
// dropped. Normals, when present, are compacted alongside.
func Cull(m *kernel.Mesh) int {
	if m == nil {
		return 0
	}
	hasNormals := len(m.Normals) == len(m.Vertices)
	kept := 0
	tris := m.TriangleCount()
	for i := 0; i < tris; i++ {
		if _, ok := faceNormal(m.Triangle(i)); !ok {
			continue
		}
		if kept != i {
			copy(m.Vertices[kept*9:kept*9+9], m.Vertices[i*9:i*9+9])
			if hasNormals {
				copy(m.Normals[kept*9:kept*9+9], m.Normals[i*9:i*9+9])
			}
		}
		kept++
	}
	m.Vertices = m.Vertices[:kept*9]
	if hasNormals {
		m.Normals = m.Normals[:kept*9]
	}
	return tris - kept
}

// IsFlat reports whether every triangle's three normals are bit-identical.
func IsFlat(m *kernel.Mesh) bool {
	if len(m.Normals) != len(m.Vertices) {
		return false
	}
	for i := 0; i < m.TriangleCount(); i++ {
		base := i * 9
		for j := 3; j < 9; j++ {
			if math.Float32bits(m.Normals[base+j]) != math.Float32bits(m.Normals[base+j%3]) {
				return false
			}
		}
	}
	return true
}

func faceNormal(t [3][3]float32) ([3]float32, bool) {
	v0, v1, v2 := vec(t[0]), vec(t[1]), vec(t[2])
	c := r3.Cross(r3.Sub(v1, v0), r3.Sub(v2, v0))
	l := r3.Norm(c)
	if !(l > degenerateLength) || math.IsInf(l, 0) {
		return [3]float32{}, false
	}
	c = r3.Scale(1/l, c)
	return [3]float32{float32(c.X), float32(c.Y), float32(c.Z)}, true
}

func vec(p [3]float32) r3.Vec {
	return r3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
}
