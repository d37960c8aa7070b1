package gemcad

import (
	"fmt"
	"math"
)

// Defaults applied when a description omits or garbles a header command.
const (
	DefaultGearTeeth       = 64
	DefaultSymmetry        = 8
	DefaultRefractiveIndex = 1.54
	DefaultName            = "Unknown"
)

// Facet is one cutting instruction repeated at every gear index in Indices.
//
// Angle is in degrees from horizontal: 0 is the table, ±90 the girdle,
// positive values crown facets and negative values pavilion facets.
// Distance is the offset of the cutting plane from the stone's axis in
// the description's own units.
type Facet struct {
	Angle     float64
	Distance  float64
	Indices   []int
	Name      string
	BaseIndex int
}

// Cut is a complete parsed description.
type Cut struct {
	GearTeeth       int
	Symmetry        int
	RefractiveIndex float64
	Name            string
	Facets          []Facet
}

// MaxDistance returns the largest facet distance, or 0 for a cut without
// facets.
func (c *Cut) MaxDistance() float64 {
	var maxD float64
	for i, f := range c.Facets {
		if i == 0 || f.Distance > maxD {
			maxD = f.Distance
		}
	}
	return maxD
}

// CutCount returns the number of (facet, index) subtractions the cut
// describes.
func (c *Cut) CutCount() int {
	n := 0
	for _, f := range c.Facets {
		n += len(f.Indices)
	}
	return n
}

// Azimuth returns the angle in radians around the vertical axis for a
// gear index.
func (c *Cut) Azimuth(index int) float64 {
	teeth := c.GearTeeth
	if teeth <= 0 {
		teeth = DefaultGearTeeth
	}
	return float64(index) / float64(teeth) * 2 * math.Pi
}

// Clone returns a deep copy.
func (c *Cut) Clone() *Cut {
	if c == nil {
		return nil
	}
	out := *c
	out.Facets = make([]Facet, len(c.Facets))
	for i, f := range c.Facets {
		f.Indices = append([]int(nil), f.Indices...)
		out.Facets[i] = f
	}
	return &out
}

// ParseIssue records a line that could not be used.
type ParseIssue struct {
	Line    int // 1-based physical line the logical line started on
	Message string
}

func (p ParseIssue) Error() string {
	return fmt.Sprintf("line %d: %s", p.Line, p.Message)
}
