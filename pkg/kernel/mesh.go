package kernel

import (
	"fmt"
	"math"
)

// Mesh is a flat, non-indexed triangle soup suitable for rendering.
// Vertices holds 3 floats per vertex (x,y,z) and every three
// consecutive vertices form one triangle. Normals holds 3 floats per
// vertex and is either empty or the same length as Vertices.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	PartName string    `json:"partName"` // cut the mesh was built from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Vertices) / 9
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Triangle returns the three corners of triangle i.
func (m *Mesh) Triangle(i int) [3][3]float32 {
	var t [3][3]float32
	base := i * 9
	for j := 0; j < 3; j++ {
		o := base + j*3
		t[j] = [3]float32{m.Vertices[o], m.Vertices[o+1], m.Vertices[o+2]}
	}
	return t
}

// AppendTriangle adds one triangle with no normal data.
func (m *Mesh) AppendTriangle(a, b, c [3]float32) {
	m.Vertices = append(m.Vertices,
		a[0], a[1], a[2],
		b[0], b[1], b[2],
		c[0], c[1], c[2],
	)
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	if m == nil {
		return nil
	}
	c := &Mesh{PartName: m.PartName}
	if m.Vertices != nil {
		c.Vertices = append([]float32(nil), m.Vertices...)
	}
	if m.Normals != nil {
		c.Normals = append([]float32(nil), m.Normals...)
	}
	return c
}

// Validate checks the structural invariants of the triangle soup.
func (m *Mesh) Validate() error {
	if len(m.Vertices)%9 != 0 {
		return fmt.Errorf("kernel: vertex array length %d is not a whole number of triangles", len(m.Vertices))
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("kernel: normals length %d != vertices length %d", len(m.Normals), len(m.Vertices))
	}
	for i, v := range m.Vertices {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("kernel: vertex component %d: %w", i, ErrNonFinite)
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounds of all vertices. An empty mesh
// returns zero vectors.
func (m *Mesh) Bounds() (min, max [3]float32) {
	if m.IsEmpty() {
		return min, max
	}
	for k := 0; k < 3; k++ {
		min[k] = m.Vertices[k]
		max[k] = m.Vertices[k]
	}
	for i := 3; i < len(m.Vertices); i += 3 {
		for k := 0; k < 3; k++ {
			v := m.Vertices[i+k]
			if v < min[k] {
				min[k] = v
			}
			if v > max[k] {
				max[k] = v
			}
		}
	}
	return min, max
}
