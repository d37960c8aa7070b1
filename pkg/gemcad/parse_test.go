package gemcad

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	cut, issues := Parse("a 0 0.42 0\n")
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if cut.GearTeeth != 64 {
		t.Errorf("GearTeeth = %d, want 64", cut.GearTeeth)
	}
	if cut.Symmetry != 8 {
		t.Errorf("Symmetry = %d, want 8", cut.Symmetry)
	}
	if cut.RefractiveIndex != 1.54 {
		t.Errorf("RefractiveIndex = %g, want 1.54", cut.RefractiveIndex)
	}
	if cut.Name != "Unknown" {
		t.Errorf("Name = %q, want Unknown", cut.Name)
	}
}

func TestParseHeaderCommands(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, c *Cut)
	}{
		{"gear teeth", "g 96", func(t *testing.T, c *Cut) {
			if c.GearTeeth != 96 {
				t.Errorf("GearTeeth = %d, want 96", c.GearTeeth)
			}
		}},
		{"garbled gear teeth", "g abc", func(t *testing.T, c *Cut) {
			if c.GearTeeth != 64 {
				t.Errorf("GearTeeth = %d, want 64", c.GearTeeth)
			}
		}},
		{"zero gear teeth", "g 0", func(t *testing.T, c *Cut) {
			if c.GearTeeth != 64 {
				t.Errorf("GearTeeth = %d, want 64", c.GearTeeth)
			}
		}},
		{"symmetry", "y 3", func(t *testing.T, c *Cut) {
			if c.Symmetry != 3 {
				t.Errorf("Symmetry = %d, want 3", c.Symmetry)
			}
		}},
		{"missing symmetry", "y", func(t *testing.T, c *Cut) {
			if c.Symmetry != 8 {
				t.Errorf("Symmetry = %d, want 8", c.Symmetry)
			}
		}},
		{"refractive index", "I 2.42", func(t *testing.T, c *Cut) {
			if c.RefractiveIndex != 2.42 {
				t.Errorf("RefractiveIndex = %g, want 2.42", c.RefractiveIndex)
			}
		}},
		{"garbled refractive index", "I n/a", func(t *testing.T, c *Cut) {
			if c.RefractiveIndex != 1.54 {
				t.Errorf("RefractiveIndex = %g, want 1.54", c.RefractiveIndex)
			}
		}},
		{"catalog prefix", "H PC01006 Round Brilliant", func(t *testing.T, c *Cut) {
			if c.Name != "Round Brilliant" {
				t.Errorf("Name = %q, want %q", c.Name, "Round Brilliant")
			}
		}},
		{"spaced catalog prefix with letter", "H PC 08.087D Oval", func(t *testing.T, c *Cut) {
			if c.Name != "Oval" {
				t.Errorf("Name = %q, want Oval", c.Name)
			}
		}},
		{"plain header", "H   My   Gem", func(t *testing.T, c *Cut) {
			if c.Name != "My Gem" {
				t.Errorf("Name = %q, want %q", c.Name, "My Gem")
			}
		}},
		{"first header wins", "H First Cut\nH Second Cut", func(t *testing.T, c *Cut) {
			if c.Name != "First Cut" {
				t.Errorf("Name = %q, want %q", c.Name, "First Cut")
			}
		}},
		{"unknown commands ignored", "Z whatever\nF 1 2 3\ng 80", func(t *testing.T, c *Cut) {
			if c.GearTeeth != 80 || len(c.Facets) != 0 {
				t.Errorf("GearTeeth = %d, facets = %d", c.GearTeeth, len(c.Facets))
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cut, issues := Parse(tt.input)
			if len(issues) != 0 {
				t.Fatalf("unexpected issues: %v", issues)
			}
			tt.check(t, cut)
		})
	}
}

func TestParseFacetLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		angle    float64
		distance float64
		indices  []int
		facetNm  string
		base     int
	}{
		{"single index", "a 0 0.42 0", 0, 0.42, []int{0}, "", 0},
		{"index list", "a 90 1.09 0 16 32 48", 90, 1.09, []int{0, 16, 32, 48}, "", 0},
		{"named facet", "a -42.1 0.673 62 n P1 58 54", -42.1, 0.673, []int{62, 58, 54}, "P1", 62},
		{"comment marker ends indices", "a 35 0.73 4 n B 12 G 20 28 cut at 35", 35, 0.73, []int{4, 12}, "B", 4},
		{"no indices defaults to base", "a 10 0.5", 10, 0.5, []int{0}, "", 0},
		{"name only", "a 10 0.5 n T", 10, 0.5, []int{0}, "T", 0},
		{"lenient index tokens", "a 10 0.5 3.5 7, x 9", 10, 0.5, []int{3, 7, 9}, "", 3},
		{"first name wins", "a 10 0.5 1 n A 2 n B 3", 10, 0.5, []int{1, 2, 3}, "A", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cut, issues := Parse(tt.input)
			if len(issues) != 0 {
				t.Fatalf("unexpected issues: %v", issues)
			}
			if len(cut.Facets) != 1 {
				t.Fatalf("facet count = %d, want 1", len(cut.Facets))
			}
			f := cut.Facets[0]
			if f.Angle != tt.angle || f.Distance != tt.distance {
				t.Errorf("angle/distance = %g/%g, want %g/%g", f.Angle, f.Distance, tt.angle, tt.distance)
			}
			if !reflect.DeepEqual(f.Indices, tt.indices) {
				t.Errorf("Indices = %v, want %v", f.Indices, tt.indices)
			}
			if f.Name != tt.facetNm {
				t.Errorf("Name = %q, want %q", f.Name, tt.facetNm)
			}
			if f.BaseIndex != tt.base {
				t.Errorf("BaseIndex = %d, want %d", f.BaseIndex, tt.base)
			}
		})
	}
}

func TestParseContinuationLines(t *testing.T) {
	input := strings.Join([]string{
		"GemCad 5.0",
		"g 64",
		"a 42.3 0.8188 2 n A 6 10",
		"  14 18",
		"\t22 26 G crown mains",
		"",
		"a 0 0.418 0 n T",
	}, "\r\n")

	cut, issues := Parse(input)
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if len(cut.Facets) != 2 {
		t.Fatalf("facet count = %d, want 2", len(cut.Facets))
	}
	want := []int{2, 6, 10, 14, 18, 22, 26}
	if !reflect.DeepEqual(cut.Facets[0].Indices, want) {
		t.Errorf("continued indices = %v, want %v", cut.Facets[0].Indices, want)
	}
	if cut.Facets[1].Name != "T" {
		t.Errorf("second facet name = %q, want T", cut.Facets[1].Name)
	}
}

func TestParseSkipsUnusableFacets(t *testing.T) {
	input := "g 64\na abc 0.5 1\na 10 NaN 2\na 10\na 20 0.6 3\n"
	cut, issues := Parse(input)

	if len(cut.Facets) != 1 {
		t.Fatalf("facet count = %d, want 1", len(cut.Facets))
	}
	if cut.Facets[0].Angle != 20 {
		t.Errorf("surviving facet angle = %g, want 20", cut.Facets[0].Angle)
	}
	if len(issues) != 3 {
		t.Fatalf("issue count = %d, want 3: %v", len(issues), issues)
	}
	wantLines := []int{2, 3, 4}
	for i, is := range issues {
		if is.Line != wantLines[i] {
			t.Errorf("issue %d line = %d, want %d", i, is.Line, wantLines[i])
		}
		if is.Error() == "" {
			t.Errorf("issue %d has empty message", i)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	cut, issues := Parse("")
	if len(issues) != 0 || len(cut.Facets) != 0 {
		t.Errorf("Parse(\"\") = %d facets, %d issues", len(cut.Facets), len(issues))
	}
}

func TestCutHelpers(t *testing.T) {
	cut, _ := Parse("a 0 0.42 0\na 90 1.09 0 16 32 48\na -40 0.7 4 12")
	if got := cut.MaxDistance(); got != 1.09 {
		t.Errorf("MaxDistance() = %g, want 1.09", got)
	}
	if got := cut.CutCount(); got != 7 {
		t.Errorf("CutCount() = %d, want 7", got)
	}
	if got := cut.Azimuth(16); got != 0.5*3.141592653589793 {
		t.Errorf("Azimuth(16) = %g, want pi/2", got)
	}

	clone := cut.Clone()
	clone.Facets[1].Indices[0] = 99
	clone.Name = "changed"
	if cut.Facets[1].Indices[0] != 0 || cut.Name == "changed" {
		t.Error("Clone shares state with the original")
	}

	var empty Cut
	if empty.MaxDistance() != 0 {
		t.Errorf("empty MaxDistance() = %g, want 0", empty.MaxDistance())
	}
}
