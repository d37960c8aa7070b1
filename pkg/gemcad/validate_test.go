package gemcad

import (
	"math"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		cut       *Cut
		wantError bool
		wantCount int
		contains  string
	}{
		{
			name:      "valid cut",
			cut:       &Cut{GearTeeth: 64, RefractiveIndex: 1.54, Facets: []Facet{{Angle: 0, Distance: 0.4, Indices: []int{0}}}},
			wantCount: 0,
		},
		{
			name:      "no facets",
			cut:       &Cut{GearTeeth: 64, RefractiveIndex: 1.54},
			wantError: true,
			wantCount: 1,
			contains:  "no facets",
		},
		{
			name:      "non-finite distance",
			cut:       &Cut{GearTeeth: 64, RefractiveIndex: 1.54, Facets: []Facet{{Angle: 10, Distance: math.Inf(1), Indices: []int{0}}}},
			wantError: true,
			wantCount: 1,
			contains:  "not finite",
		},
		{
			name:      "index beyond gear",
			cut:       &Cut{GearTeeth: 64, RefractiveIndex: 1.54, Facets: []Facet{{Angle: 10, Distance: 0.5, Indices: []int{65, -1}}}},
			wantCount: 2,
			contains:  "outside the 64-tooth gear",
		},
		{
			name:      "index equal to teeth is accepted",
			cut:       &Cut{GearTeeth: 64, RefractiveIndex: 1.54, Facets: []Facet{{Angle: 0, Distance: 0.5, Indices: []int{64}}}},
			wantCount: 0,
		},
		{
			name:      "non-positive distance",
			cut:       &Cut{GearTeeth: 64, RefractiveIndex: 1.54, Facets: []Facet{{Angle: 10, Distance: 0, Indices: []int{1}}}},
			wantCount: 1,
			contains:  "not positive",
		},
		{
			name:      "steep angle",
			cut:       &Cut{GearTeeth: 64, RefractiveIndex: 1.54, Facets: []Facet{{Angle: 120, Distance: 1, Indices: []int{1}}}},
			wantCount: 1,
			contains:  "outside [-90, 90]",
		},
		{
			name:      "bad header values",
			cut:       &Cut{GearTeeth: 0, RefractiveIndex: 0.5, Facets: []Facet{{Angle: 0, Distance: 1, Indices: []int{0}}}},
			wantError: true,
			wantCount: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Validate(tt.cut)
			if len(issues) != tt.wantCount {
				t.Fatalf("got %d issues, want %d: %v", len(issues), tt.wantCount, issues)
			}
			if HasErrors(issues) != tt.wantError {
				t.Errorf("HasErrors() = %v, want %v", HasErrors(issues), tt.wantError)
			}
			if tt.contains != "" && !strings.Contains(issues[0].Error(), tt.contains) {
				t.Errorf("issue %q does not mention %q", issues[0].Error(), tt.contains)
			}
		})
	}
}

func TestSeverityString(t *testing.T) {
	if SeverityError.String() != "error" || SeverityWarning.String() != "warning" {
		t.Errorf("unexpected severity names %q %q", SeverityError, SeverityWarning)
	}
	if Severity(7).String() != "Severity(7)" {
		t.Errorf("Severity(7).String() = %q", Severity(7).String())
	}
}

func TestValidationIssueError(t *testing.T) {
	cutLevel := ValidationIssue{Facet: -1, Message: "cut has no facets", Severity: SeverityError}
	if got := cutLevel.Error(); got != "[error] cut has no facets" {
		t.Errorf("Error() = %q", got)
	}
	facetLevel := ValidationIssue{Facet: 2, Message: "bad", Severity: SeverityWarning}
	if got := facetLevel.Error(); got != "[warning] facet 2: bad" {
		t.Errorf("Error() = %q", got)
	}
}
