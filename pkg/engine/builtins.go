package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/gemcut/pkg/gemcad"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites cut script source before zygomys sees it:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords need
//     no global symbols and cannot clash with user variables.
//
//  2. kebab-case identifiers become underscore form (cut-name -> cut_name),
//     because zygomys reads a hyphen as the subtraction operator.
//
//  3. ; line comments become // comments.
//
// String literals are left untouched. Newlines are preserved so error line
// numbers still match the original source.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Only a hyphen between identifier characters is part of a name.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt accepts integers and floats with no fractional part.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) && !math.IsInf(v.Val, 0) {
			return int(v.Val), nil
		}
		return 0, fmt.Errorf("expected integer, got %v", v.Val)
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a list or array to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toIndices flattens integers, lists and arrays of integers into one
// index list.
func toIndices(s zygo.Sexp) ([]int, error) {
	switch s.(type) {
	case *zygo.SexpInt, *zygo.SexpFloat:
		n, err := toInt(s)
		if err != nil {
			return nil, err
		}
		return []int{n}, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	var out []int
	for _, item := range items {
		sub, err := toIndices(item)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

func intList(vals []int) zygo.Sexp {
	items := make([]zygo.Sexp, len(vals))
	for i, v := range vals {
		items[i] = &zygo.SexpInt{Val: int64(v)}
	}
	return zygo.MakeList(items)
}

// ---------------------------------------------------------------------------
// Ring layout
// ---------------------------------------------------------------------------

// ringIndices spreads count indices evenly around a gear of teeth teeth,
// starting at start. Indices wrap into [0, teeth).
func ringIndices(count, start, teeth int) ([]int, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}
	if teeth <= 0 {
		return nil, fmt.Errorf("teeth must be positive, got %d", teeth)
	}
	out := make([]int, count)
	for i := range out {
		step := int(math.Round(float64(i*teeth) / float64(count)))
		idx := (start + step) % teeth
		if idx < 0 {
			idx += teeth
		}
		out[i] = idx
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the cut script builtins. They write into cut as
// the script runs.
//
// Source must go through preprocessSource first so that :keyword tokens
// arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, cut *gemcad.Cut) {

	// (gear 96)
	env.AddFunction("gear", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("gear requires exactly 1 argument, got %d", len(args))
		}
		n, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("gear: %w", err)
		}
		if n <= 0 {
			return zygo.SexpNull, fmt.Errorf("gear: teeth must be positive, got %d", n)
		}
		cut.GearTeeth = n
		return &zygo.SexpInt{Val: int64(n)}, nil
	})

	// (symmetry 8)
	env.AddFunction("symmetry", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("symmetry requires exactly 1 argument, got %d", len(args))
		}
		n, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("symmetry: %w", err)
		}
		if n <= 0 {
			return zygo.SexpNull, fmt.Errorf("symmetry: must be positive, got %d", n)
		}
		cut.Symmetry = n
		return &zygo.SexpInt{Val: int64(n)}, nil
	})

	// (ri 1.76)
	env.AddFunction("ri", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("ri requires exactly 1 argument, got %d", len(args))
		}
		f, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ri: %w", err)
		}
		cut.RefractiveIndex = f
		return &zygo.SexpFloat{Val: f}, nil
	})

	// (cut-name "Round Brilliant")
	//
	// Registered as "cut_name"; the preprocessor rewrites the hyphen.
	env.AddFunction("cut_name", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("cut-name requires exactly 1 argument, got %d", len(args))
		}
		s, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cut-name: %w", err)
		}
		cut.Name = s
		return &zygo.SexpStr{S: s}, nil
	})

	// (facet 41.5 1.0 :indices (list 0 8 16) :name "P1")
	//
	// Extra positional arguments are taken as indices too.
	env.AddFunction("facet", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("facet requires an angle and a distance")
		}
		angle, err := toFloat64(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("facet: angle: %w", err)
		}
		distance, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("facet: distance: %w", err)
		}
		f := gemcad.Facet{Angle: angle, Distance: distance}

		for _, p := range pa.positional[2:] {
			idx, err := toIndices(p)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("facet: index: %w", err)
			}
			f.Indices = append(f.Indices, idx...)
		}
		if v, ok := pa.kw["indices"]; ok {
			idx, err := toIndices(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("facet: indices: %w", err)
			}
			f.Indices = append(f.Indices, idx...)
		}
		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("facet: name: %w", err)
			}
			f.Name = s
		}
		if len(f.Indices) == 0 {
			f.Indices = []int{0}
		}
		f.BaseIndex = f.Indices[0]

		cut.Facets = append(cut.Facets, f)
		return &zygo.SexpInt{Val: int64(len(cut.Facets))}, nil
	})

	// (ring 8 :start 2 :teeth 64)
	//
	// :teeth defaults to the gear set so far.
	env.AddFunction("ring", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("ring requires a count")
		}
		count, err := toInt(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ring: count: %w", err)
		}
		start, teeth := 0, cut.GearTeeth
		if v, ok := pa.kw["start"]; ok {
			if start, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("ring: start: %w", err)
			}
		}
		if v, ok := pa.kw["teeth"]; ok {
			if teeth, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("ring: teeth: %w", err)
			}
		}
		idx, err := ringIndices(count, start, teeth)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ring: %w", err)
		}
		return intList(idx), nil
	})
}
