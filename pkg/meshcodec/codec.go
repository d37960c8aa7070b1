// Package meshcodec converts meshes to and from the compact binary form
// used by the persistent cache tier and by prebuilt geometry files.
//
// Layout, all little-endian:
//
//	uint32              vertex count n
//	float32 × 3n        positions
//	float32 × 3n        normals
//
// There is no magic number or version field; stores that hold payloads
// version them on their own. Floats are copied bit for bit, so NaN
// payloads and signed zeros survive a round trip.
package meshcodec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/chazu/gemcut/pkg/kernel"
)

// Codec errors.
var (
	ErrTruncated    = errors.New("meshcodec: truncated payload")
	ErrTrailingData = errors.New("meshcodec: trailing bytes after payload")
	ErrVertexCount  = errors.New("meshcodec: vertex count is not a multiple of 3")
	ErrMeshShape    = errors.New("meshcodec: mesh positions and normals do not describe whole triangles")
)

const (
	headerSize = 4
	// bytesPerVertex is one position and one normal.
	bytesPerVertex = 2 * 3 * 4
)

// EncodedSize returns the payload length for a mesh of n vertices.
func EncodedSize(n int) int {
	return headerSize + n*bytesPerVertex
}

// Encode serializes m. The mesh must hold whole triangles and one normal
// per vertex.
func Encode(m *kernel.Mesh) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil mesh", ErrMeshShape)
	}
	if len(m.Vertices)%9 != 0 || len(m.Normals) != len(m.Vertices) {
		return nil, fmt.Errorf("%w: %d position and %d normal components",
			ErrMeshShape, len(m.Vertices), len(m.Normals))
	}
	n := m.VertexCount()
	if uint64(n) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d vertices overflow the header", ErrMeshShape, n)
	}

	buf := make([]byte, EncodedSize(n))
	binary.LittleEndian.PutUint32(buf, uint32(n))
	off := headerSize
	for _, v := range m.Vertices {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
		off += 4
	}
	for _, v := range m.Normals {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
		off += 4
	}
	return buf, nil
}

// Decode parses a payload produced by Encode. Every read is bounds
// checked; a short, oversized or inconsistent payload is an error and no
// partial mesh is returned.
func Decode(data []byte) (*kernel.Mesh, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes, need a %d byte header", ErrTruncated, len(data), headerSize)
	}
	n := uint64(binary.LittleEndian.Uint32(data))
	if n%3 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrVertexCount, n)
	}
	want := uint64(headerSize) + n*bytesPerVertex
	switch {
	case uint64(len(data)) < want:
		return nil, fmt.Errorf("%w: %d vertices need %d bytes, have %d", ErrTruncated, n, want, len(data))
	case uint64(len(data)) > want:
		return nil, fmt.Errorf("%w: %d extra bytes", ErrTrailingData, uint64(len(data))-want)
	}

	comps := int(n) * 3
	m := &kernel.Mesh{
		Vertices: make([]float32, comps),
		Normals:  make([]float32, comps),
	}
	off := headerSize
	for i := range m.Vertices {
		m.Vertices[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
		off += 4
	}
	for i := range m.Normals {
		m.Normals[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
		off += 4
	}
	return m, nil
}
