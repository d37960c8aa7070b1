//go:build manifold

// Package manifold binds the Manifold library
// (https://github.com/elalish/manifold) as a geometry kernel. Manifold
// guarantees manifold output from its booleans, which makes it a useful
// cross-check for the default BSP kernel on awkward cuts.
//
// This package requires the Manifold C library (manifoldc) to be installed.
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/chazu/gemcut/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ kernel.Kernel = (*ManifoldKernel)(nil)
var _ kernel.Solid = (*manifoldSolid)(nil)

// Available reports whether this build links the Manifold library.
const Available = true

type manifoldSolid struct {
	ptr *C.ManifoldManifold
}

func (s *manifoldSolid) BoundingBox() (min, max [3]float64) {
	alloc := C.manifold_alloc_box()
	bbox := C.manifold_bounding_box(alloc, s.ptr)
	defer C.manifold_delete_box(bbox)

	min[0] = float64(C.manifold_box_min_x(bbox))
	min[1] = float64(C.manifold_box_min_y(bbox))
	min[2] = float64(C.manifold_box_min_z(bbox))
	max[0] = float64(C.manifold_box_max_x(bbox))
	max[1] = float64(C.manifold_box_max_y(bbox))
	max[2] = float64(C.manifold_box_max_z(bbox))
	return min, max
}

// newSolid takes ownership of ptr; a finalizer frees it.
func newSolid(ptr *C.ManifoldManifold) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

func unwrap(s kernel.Solid) (*manifoldSolid, error) {
	ms, ok := s.(*manifoldSolid)
	if !ok || ms == nil || ms.ptr == nil {
		return nil, fmt.Errorf("manifold: %w (%T)", kernel.ErrForeignSolid, s)
	}
	return ms, nil
}

// ManifoldKernel implements kernel.Kernel using the Manifold C library.
type ManifoldKernel struct{}

func New() (kernel.Kernel, error) {
	return &ManifoldKernel{}, nil
}

func (k *ManifoldKernel) Box(x, y, z float64) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cube(alloc,
		C.double(x), C.double(y), C.double(z),
		C.int(1), // centered
	)
	return newSolid(ptr)
}

// Cylinder builds Manifold's Z-axis cylinder and turns it onto Y.
func (k *ManifoldKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	z := C.manifold_cylinder(alloc,
		C.double(height),
		C.double(radius),
		C.double(radius),
		C.int(segments),
		C.int(1), // centered
	)
	defer C.manifold_delete_manifold(z)

	rot := C.manifold_alloc_manifold()
	return newSolid(C.manifold_rotate(rot, z, C.double(-90), 0, 0))
}

func (k *ManifoldKernel) boolean(op string, a, b kernel.Solid, fn func(mem unsafe.Pointer, a, b *C.ManifoldManifold) *C.ManifoldManifold) (kernel.Solid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, fmt.Errorf("manifold: %s: %w", op, err)
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, fmt.Errorf("manifold: %s: %w", op, err)
	}
	ptr := fn(unsafe.Pointer(C.manifold_alloc_manifold()), sa.ptr, sb.ptr)
	if C.manifold_status(ptr) != C.MANIFOLD_NO_ERROR {
		C.manifold_delete_manifold(ptr)
		return nil, fmt.Errorf("manifold: %s: %w", op, kernel.ErrDegenerateInput)
	}
	return newSolid(ptr), nil
}

func (k *ManifoldKernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean("union", a, b, func(mem unsafe.Pointer, a, b *C.ManifoldManifold) *C.ManifoldManifold {
		return C.manifold_union(mem, a, b)
	})
}

func (k *ManifoldKernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean("difference", a, b, func(mem unsafe.Pointer, a, b *C.ManifoldManifold) *C.ManifoldManifold {
		return C.manifold_difference(mem, a, b)
	})
}

func (k *ManifoldKernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean("intersection", a, b, func(mem unsafe.Pointer, a, b *C.ManifoldManifold) *C.ManifoldManifold {
		return C.manifold_intersection(mem, a, b)
	})
}

func (k *ManifoldKernel) Translate(s kernel.Solid, v r3.Vec) kernel.Solid {
	ms, err := unwrap(s)
	if err != nil {
		return s
	}
	alloc := C.manifold_alloc_manifold()
	return newSolid(C.manifold_translate(alloc, ms.ptr,
		C.double(v.X), C.double(v.Y), C.double(v.Z),
	))
}

func (k *ManifoldKernel) Rotate(s kernel.Solid, r r3.Rotation) kernel.Solid {
	ms, err := unwrap(s)
	if err != nil {
		return s
	}
	x, y, z := eulerDegrees(r)
	alloc := C.manifold_alloc_manifold()
	return newSolid(C.manifold_rotate(alloc, ms.ptr,
		C.double(x), C.double(y), C.double(z),
	))
}

// ToMesh expands Manifold's indexed MeshGL into a triangle soup. Only
// positions are copied; normals are left to the caller.
func (k *ManifoldKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ms, err := unwrap(s)
	if err != nil {
		return nil, fmt.Errorf("manifold: to mesh: %w", err)
	}

	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_get_meshgl(meshAlloc, ms.ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))
	if numVert == 0 || numTri == 0 {
		return nil, fmt.Errorf("manifold: to mesh: %w", kernel.ErrEmptyResult)
	}

	// Vertex properties are interleaved, numProp per vertex, position first.
	numProp := int(C.manifold_meshgl_num_prop(meshGL))
	props := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties(
		(*C.float)(unsafe.Pointer(&props[0])),
		meshGL,
	)
	tris := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts(
		(*C.uint32_t)(unsafe.Pointer(&tris[0])),
		meshGL,
	)

	m := &kernel.Mesh{Vertices: make([]float32, 0, numTri*9)}
	for _, idx := range tris {
		if int(idx) >= numVert {
			return nil, fmt.Errorf("manifold: to mesh: triangle index %d out of range (%d vertices)", idx, numVert)
		}
		base := int(idx) * numProp
		m.Vertices = append(m.Vertices, props[base], props[base+1], props[base+2])
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifold: %w", err)
	}
	return m, nil
}
