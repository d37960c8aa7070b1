package cutter

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// angleTolerance is how close, in degrees, an angle must be to 0 or ±90
// to be treated as an exact table or girdle facet.
const angleTolerance = 0.01

var up = r3.Vec{Y: 1}

// PlaneNormal returns the outward unit normal of a cutting plane tilted
// angle degrees from horizontal at the given azimuth in radians.
//
// Angles near 0 face straight up. Angles near ±90 are purely radial.
// Otherwise the radial part is scaled by sin|angle| and the vertical part
// by cos|angle|, pointing down for negative (pavilion) angles.
func PlaneNormal(angle, azimuth float64) r3.Vec {
	radial := r3.Vec{X: math.Cos(azimuth), Z: math.Sin(azimuth)}
	switch {
	case math.Abs(angle) < angleTolerance:
		return up
	case math.Abs(math.Abs(angle)-90) < angleTolerance:
		return radial
	}
	tilt := math.Abs(angle) * math.Pi / 180
	vertical := math.Cos(tilt)
	if angle < 0 {
		vertical = -vertical
	}
	n := r3.Add(r3.Scale(math.Sin(tilt), radial), r3.Vec{Y: vertical})
	return r3.Unit(n)
}

// ShortestArc returns the rotation taking unit vector from onto unit
// vector to along the great circle between them. Opposite vectors are
// turned half a revolution about any axis perpendicular to from.
func ShortestArc(from, to r3.Vec) r3.Rotation {
	w := r3.Dot(from, to) + 1
	var axis r3.Vec
	if w < 1e-9 {
		w = 0
		if math.Abs(from.X) > math.Abs(from.Z) {
			axis = r3.Vec{X: -from.Y, Y: from.X}
		} else {
			axis = r3.Vec{Y: -from.Z, Z: from.Y}
		}
	} else {
		axis = r3.Cross(from, to)
	}
	l := math.Sqrt(w*w + r3.Norm2(axis))
	return r3.Rotation{Real: w / l, Imag: axis.X / l, Jmag: axis.Y / l, Kmag: axis.Z / l}
}
