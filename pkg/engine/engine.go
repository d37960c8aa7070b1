// Package engine evaluates cut scripts: small zygomys Lisp programs that
// describe a faceted cut procedurally and produce a gemcad.Cut.
//
//	(gear 96)
//	(cut-name "Eight-fold Round")
//	(facet 0 0.42 :name "T")
//	(facet 41.5 1.0 :indices (ring 8 :start 3) :name "P1")
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/gemcut/pkg/gemcad"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError is a non-fatal error in user code: a parse error or a failing
// builtin call.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// each Evaluate runs in a fresh sandbox.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs a cut script and returns the cut it describes.
//
// Return semantics:
//   - On success: returns cut + nil errors + nil error
//   - On parse/eval failure: returns nil cut + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
//
// The cut is not validated; run gemcad.Validate before building it.
func (e *Engine) Evaluate(source string) (*gemcad.Cut, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		cut, evalErrs, err := e.evaluate(source)
		ch <- evalResult{cut: cut, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

func newCut() *gemcad.Cut {
	return &gemcad.Cut{
		GearTeeth:       gemcad.DefaultGearTeeth,
		Symmetry:        gemcad.DefaultSymmetry,
		RefractiveIndex: gemcad.DefaultRefractiveIndex,
		Name:            gemcad.DefaultName,
	}
}

func (e *Engine) evaluate(source string) (*gemcad.Cut, []EvalError, error) {
	cut := newCut()
	if strings.TrimSpace(source) == "" {
		return cut, nil, nil
	}

	// Sandbox mode keeps scripts away from the file system and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, cut)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return cut, nil, nil
}

// linePattern matches zygomys messages of the form "Error on line N: ...".
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalErrors, pulling out
// the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
