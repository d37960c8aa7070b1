// Package stl writes meshes as binary STL files.
package stl

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/chazu/gemcut/pkg/kernel"
)

const headerSize = 80

// ErrMeshShape is returned for meshes that are not whole triangles.
var ErrMeshShape = errors.New("stl: mesh is not a whole number of triangles")

// tri is one binary STL record: normal, three corners and an attribute
// word, 50 bytes packed.
type tri struct {
	N    [3]float32
	V    [3][3]float32
	Attr uint16
}

// WriteBinary writes m to w. header is truncated or zero padded to 80
// bytes. Each facet takes the normal of its first corner when m carries
// normals; otherwise the normal is computed from the winding.
func WriteBinary(w io.Writer, m *kernel.Mesh, header string) error {
	if len(m.Vertices)%9 != 0 {
		return fmt.Errorf("%w: %d floats", ErrMeshShape, len(m.Vertices))
	}
	haveNormals := len(m.Normals) == len(m.Vertices)
	n := m.TriangleCount()
	if uint64(n) > math.MaxUint32 {
		return fmt.Errorf("stl: %d triangles do not fit in a binary STL", n)
	}

	bw := bufio.NewWriter(w)
	var hdr [headerSize]byte
	copy(hdr[:], header)
	if _, err := bw.Write(hdr[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(n)); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		t := tri{V: m.Triangle(i)}
		if haveNormals {
			o := i * 9
			t.N = [3]float32{m.Normals[o], m.Normals[o+1], m.Normals[o+2]}
		} else {
			t.N = windingNormal(t.V)
		}
		if err := binary.Write(bw, binary.LittleEndian, &t); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func windingNormal(v [3][3]float32) [3]float32 {
	ux, uy, uz := v[1][0]-v[0][0], v[1][1]-v[0][1], v[1][2]-v[0][2]
	wx, wy, wz := v[2][0]-v[0][0], v[2][1]-v[0][1], v[2][2]-v[0][2]
	nx := float64(uy*wz - uz*wy)
	ny := float64(uz*wx - ux*wz)
	nz := float64(ux*wy - uy*wx)
	l := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if l == 0 {
		return [3]float32{}
	}
	return [3]float32{float32(nx / l), float32(ny / l), float32(nz / l)}
}
