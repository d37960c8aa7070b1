package manifold

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// eulerDegrees converts r into the rotations about X, then Y, then Z, in
// degrees, that manifold_rotate applies.
func eulerDegrees(r r3.Rotation) (x, y, z float64) {
	w, i, j, k := r.Real, r.Imag, r.Jmag, r.Kmag
	n := math.Sqrt(w*w + i*i + j*j + k*k)
	if n == 0 {
		return 0, 0, 0
	}
	w, i, j, k = w/n, i/n, j/n, k/n

	x = math.Atan2(2*(w*i+j*k), 1-2*(i*i+j*j))
	y = math.Asin(math.Max(-1, math.Min(1, 2*(w*j-k*i))))
	z = math.Atan2(2*(w*k+i*j), 1-2*(j*j+k*k))

	const deg = 180 / math.Pi
	return x * deg, y * deg, z * deg
}
