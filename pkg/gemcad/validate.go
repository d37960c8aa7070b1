package gemcad

import (
	"fmt"
	"math"
)

// Severity indicates whether a validation finding blocks a build or is
// merely informational.
type Severity int

const (
	SeverityError   Severity = iota // blocks building
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationIssue describes a single validation finding.
type ValidationIssue struct {
	Facet    int // index into Cut.Facets, -1 for cut-level findings
	Message  string
	Severity Severity
}

func (v ValidationIssue) Error() string {
	if v.Facet < 0 {
		return fmt.Sprintf("[%s] %s", v.Severity, v.Message)
	}
	return fmt.Sprintf("[%s] facet %d: %s", v.Severity, v.Facet, v.Message)
}

// Validate checks a parsed cut for problems the parser tolerates but a
// build may not. An empty result means the cut is usable as is. Validate
// never mutates the cut.
func Validate(c *Cut) []ValidationIssue {
	var issues []ValidationIssue
	issues = append(issues, validateHeader(c)...)
	issues = append(issues, validateFacets(c)...)
	return issues
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []ValidationIssue) bool {
	for _, v := range issues {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}

func validateHeader(c *Cut) []ValidationIssue {
	var issues []ValidationIssue
	if len(c.Facets) == 0 {
		issues = append(issues, ValidationIssue{Facet: -1, Message: "cut has no facets", Severity: SeverityError})
	}
	if c.GearTeeth <= 0 {
		issues = append(issues, ValidationIssue{
			Facet:    -1,
			Message:  fmt.Sprintf("gear teeth %d must be positive", c.GearTeeth),
			Severity: SeverityError,
		})
	}
	if math.IsNaN(c.RefractiveIndex) || c.RefractiveIndex < 1 {
		issues = append(issues, ValidationIssue{
			Facet:    -1,
			Message:  fmt.Sprintf("refractive index %g is below 1", c.RefractiveIndex),
			Severity: SeverityWarning,
		})
	}
	return issues
}

func validateFacets(c *Cut) []ValidationIssue {
	var issues []ValidationIssue
	for i, f := range c.Facets {
		if !finite(f.Angle) || !finite(f.Distance) {
			issues = append(issues, ValidationIssue{
				Facet:    i,
				Message:  fmt.Sprintf("angle %g or distance %g is not finite", f.Angle, f.Distance),
				Severity: SeverityError,
			})
			continue
		}
		if len(f.Indices) == 0 {
			issues = append(issues, ValidationIssue{Facet: i, Message: "facet has no indices", Severity: SeverityError})
		}
		if f.Distance <= 0 {
			issues = append(issues, ValidationIssue{
				Facet:    i,
				Message:  fmt.Sprintf("distance %g is not positive", f.Distance),
				Severity: SeverityWarning,
			})
		}
		if math.Abs(f.Angle) > 90 {
			issues = append(issues, ValidationIssue{
				Facet:    i,
				Message:  fmt.Sprintf("angle %g is outside [-90, 90]", f.Angle),
				Severity: SeverityWarning,
			})
		}
		// Index == teeth is a full turn and lands on index 0.
		for _, idx := range f.Indices {
			if idx < 0 || (c.GearTeeth > 0 && idx > c.GearTeeth) {
				issues = append(issues, ValidationIssue{
					Facet:    i,
					Message:  fmt.Sprintf("index %d is outside the %d-tooth gear", idx, c.GearTeeth),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return issues
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
