//go:build !manifold

// Package manifold binds the Manifold library as a geometry kernel. Without
// the "manifold" build tag this stub is compiled instead and New reports
// that the kernel is unavailable.
//
// Build with: go build -tags=manifold
package manifold

import "github.com/chazu/gemcut/pkg/kernel"

// Available reports whether this build links the Manifold library.
const Available = false

func New() (kernel.Kernel, error) {
	return nil, ErrUnavailable
}
