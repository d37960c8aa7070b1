package meshcodec

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/chazu/gemcut/pkg/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoTriangles() *kernel.Mesh {
	return &kernel.Mesh{
		Vertices: []float32{
			0, 0, 0, 1, 0, 0, 0, 1, 0,
			-0.25, 3.5e-8, 1e30, 2, 2, 2, 0, 0, -1,
		},
		Normals: []float32{
			0, 0, 1, 0, 0, 1, 0, 0, 1,
			0.6, -0.8, 0, 0.6, -0.8, 0, 0.6, -0.8, 0,
		},
	}
}

func bits(v []float32) []uint32 {
	out := make([]uint32, len(v))
	for i, f := range v {
		out[i] = math.Float32bits(f)
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	m := twoTriangles()
	data, err := Encode(m)
	require.NoError(t, err)
	assert.Len(t, data, EncodedSize(6))

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, bits(m.Vertices), bits(got.Vertices))
	assert.Equal(t, bits(m.Normals), bits(got.Normals))
}

func TestRoundTripPreservesSpecialBits(t *testing.T) {
	quietNaN := math.Float32frombits(0x7fc00001)
	negZero := math.Float32frombits(0x80000000)
	m := &kernel.Mesh{
		Vertices: []float32{quietNaN, negZero, float32(math.Inf(1)), 0, 0, 0, 1, 1, 1},
		Normals:  []float32{negZero, 1, 0, negZero, 1, 0, negZero, 1, 0},
	}
	data, err := Encode(m)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, bits(m.Vertices), bits(got.Vertices))
	assert.Equal(t, bits(m.Normals), bits(got.Normals))
}

func TestLayout(t *testing.T) {
	m := &kernel.Mesh{
		Vertices: []float32{1, 2, 3, 4, 5, 6, 7, 8, 9},
		Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
	}
	want := new(bytes.Buffer)
	binary.Write(want, binary.LittleEndian, uint32(3))
	binary.Write(want, binary.LittleEndian, m.Vertices)
	binary.Write(want, binary.LittleEndian, m.Normals)

	data, err := Encode(m)
	require.NoError(t, err)
	assert.Equal(t, want.Bytes(), data)
}

func TestEmptyMesh(t *testing.T) {
	data, err := Encode(&kernel.Mesh{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, data)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestDecodeErrors(t *testing.T) {
	valid, err := Encode(twoTriangles())
	require.NoError(t, err)

	header := func(n uint32, extra int) []byte {
		b := make([]byte, 4+extra)
		binary.LittleEndian.PutUint32(b, n)
		return b
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"nil", nil, ErrTruncated},
		{"short header", []byte{3, 0}, ErrTruncated},
		{"missing normals", valid[:len(valid)-4], ErrTruncated},
		{"header only", header(3, 0), ErrTruncated},
		{"huge count", header(0xfffffffe, 16), ErrVertexCount},
		{"huge count multiple of three", header(0xfffffffc, 16), ErrTruncated},
		{"count not a multiple of 3", header(4, 4*24), ErrVertexCount},
		{"trailing byte", append(append([]byte(nil), valid...), 0), ErrTrailingData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Decode(tt.data)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, m)
		})
	}
}

func TestEncodeRejectsMalformedMesh(t *testing.T) {
	tests := []struct {
		name string
		mesh *kernel.Mesh
	}{
		{"nil", nil},
		{"missing normals", &kernel.Mesh{Vertices: make([]float32, 9)}},
		{"partial triangle", &kernel.Mesh{Vertices: make([]float32, 6), Normals: make([]float32, 6)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.mesh)
			assert.ErrorIs(t, err, ErrMeshShape)
		})
	}
}
