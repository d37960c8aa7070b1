package gemcad

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// catalogName strips a catalog code such as "PC01006" or "PC 08.087D"
	// from the front of a header.
	catalogName = regexp.MustCompile(`^[A-Z]{2}\s*[\d.]+[A-Z]?\s+(.+)$`)

	leadingInt   = regexp.MustCompile(`^[+-]?\d+`)
	leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

const (
	nameMarker    = "n"
	commentMarker = "G"
)

type logicalLine struct {
	number int
	text   string
}

// joinContinuations splits text into logical lines. A non-blank physical
// line starting with a space or tab is appended to the line before it.
func joinContinuations(text string) []logicalLine {
	var out []logicalLine
	for i, raw := range strings.Split(text, "\n") {
		raw = strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		cont := strings.HasPrefix(raw, " ") || strings.HasPrefix(raw, "\t")
		if cont && len(out) > 0 {
			out[len(out)-1].text += " " + trimmed
			continue
		}
		out = append(out, logicalLine{number: i + 1, text: trimmed})
	}
	return out
}

// Parse reads a cut description. It never fails as a whole: defaults
// cover malformed header values and unusable facet lines are returned as
// issues.
func Parse(text string) (*Cut, []ParseIssue) {
	cut := &Cut{
		GearTeeth:       DefaultGearTeeth,
		Symmetry:        DefaultSymmetry,
		RefractiveIndex: DefaultRefractiveIndex,
		Name:            DefaultName,
	}
	var issues []ParseIssue
	named := false

	for _, line := range joinContinuations(text) {
		parts := strings.Fields(line.text)
		args := parts[1:]
		switch parts[0] {
		case "g":
			cut.GearTeeth = intOr(args, DefaultGearTeeth)
		case "y":
			cut.Symmetry = intOr(args, DefaultSymmetry)
		case "I":
			cut.RefractiveIndex = floatOr(args, DefaultRefractiveIndex)
		case "H":
			if named {
				continue
			}
			if name := headerName(args); name != "" {
				cut.Name = name
				named = true
			}
		case "a":
			f, err := parseFacet(args)
			if err != nil {
				issues = append(issues, ParseIssue{Line: line.number, Message: err.Error()})
				continue
			}
			cut.Facets = append(cut.Facets, f)
		}
	}
	return cut, issues
}

func headerName(args []string) string {
	full := strings.Join(args, " ")
	if m := catalogName.FindStringSubmatch(full); m != nil {
		return strings.TrimSpace(m[1])
	}
	return full
}

func parseFacet(args []string) (Facet, error) {
	if len(args) < 2 {
		return Facet{}, fmt.Errorf("facet needs an angle and a distance, got %d fields", len(args))
	}
	angle, ok := parseFloat(args[0])
	if !ok {
		return Facet{}, fmt.Errorf("facet angle %q is not a number", args[0])
	}
	distance, ok := parseFloat(args[1])
	if !ok {
		return Facet{}, fmt.Errorf("facet distance %q is not a number", args[1])
	}

	f := Facet{Angle: angle, Distance: distance}
	tokens := args[2:]
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok == commentMarker {
			break
		}
		if tok == nameMarker {
			if i+1 < len(tokens) {
				if f.Name == "" {
					f.Name = tokens[i+1]
				}
				i++
			}
			continue
		}
		if idx, ok := parseInt(tok); ok {
			f.Indices = append(f.Indices, idx)
		}
	}
	if len(f.Indices) > 0 {
		f.BaseIndex = f.Indices[0]
	} else {
		f.Indices = []int{f.BaseIndex}
	}
	return f, nil
}

// parseInt accepts a leading integer and ignores anything after it, so
// "12," and "3.5" both yield a value.
func parseInt(s string) (int, bool) {
	m := leadingInt.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseFloat(s string) (float64, bool) {
	m := leadingFloat.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func intOr(args []string, def int) int {
	if len(args) == 0 {
		return def
	}
	n, ok := parseInt(args[0])
	if !ok || n <= 0 {
		return def
	}
	return n
}

func floatOr(args []string, def float64) float64 {
	if len(args) == 0 {
		return def
	}
	v, ok := parseFloat(args[0])
	if !ok || v == 0 {
		return def
	}
	return v
}
