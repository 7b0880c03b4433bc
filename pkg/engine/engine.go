// Package engine provides the Lisp scripting host for the UV tools.
// It wraps zygomys in a sandboxed environment whose builtins drive the
// operators in pkg/ops against a scene.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/texeltools/pkg/ops"
	"github.com/chazu/texeltools/pkg/texel"
	"github.com/chazu/texeltools/pkg/uvmesh"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
	Message string `json:"message"`
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning is a warning reported by an operator a script invoked.
type EvalWarning struct {
	Op      string `json:"op"`
	Message string `json:"message"`
}

// OpRecord is one operator invocation made by a script.
type OpRecord struct {
	Op     string     `json:"op"`
	Args   []string   `json:"args,omitempty"`
	Result ops.Result `json:"result"`
}

// EvalResult bundles the full output of an evaluation.
type EvalResult struct {
	Ops      []OpRecord    `json:"ops,omitempty"`
	Errors   []EvalError   `json:"errors,omitempty"`
	Warnings []EvalWarning `json:"warnings,omitempty"`
	Density  float64       `json:"density"`
	Value    string        `json:"value,omitempty"` // printed value of the last expression
}

func (r *EvalResult) record(op string, args []string, res ops.Result) {
	r.Ops = append(r.Ops, OpRecord{Op: op, Args: args, Result: res})
	for _, w := range res.Warnings {
		r.Warnings = append(r.Warnings, EvalWarning{Op: op, Message: w})
	}
}

// Engine runs scripts against a scene. Settings persist across
// evaluations the way the add-on's panel values do. Evaluations are
// serialized; each one gets a fresh sandbox.
type Engine struct {
	mu       sync.Mutex
	settings *ops.Settings
	resolver texel.ImageResolver
}

// NewEngine creates an Engine. A nil settings uses ops.DefaultSettings and
// a nil resolver falls back to the scene's own images.
func NewEngine(settings *ops.Settings, resolver texel.ImageResolver) *Engine {
	if settings == nil {
		settings = ops.DefaultSettings()
	}
	return &Engine{settings: settings, resolver: resolver}
}

// Settings returns the engine's operator settings.
func (e *Engine) Settings() *ops.Settings {
	return e.settings
}

// Evaluate runs source against s.
//
// Return semantics:
//   - On success: returns the result with nil Errors and a nil error
//   - On parse/eval failure: returns the result so far with Errors set
//   - On panic: returns nil and an error
//
// Operators the script ran before a failure keep their effect.
func (e *Engine) Evaluate(s *uvmesh.Scene, source string) (res *EvalResult, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("engine: panic during evaluation: %v", r)
		}
	}()
	return e.evaluate(s, source), nil
}

func (e *Engine) evaluate(s *uvmesh.Scene, source string) *EvalResult {
	res := &EvalResult{Density: e.settings.TexelDensity}

	// Empty source is a valid program that does nothing.
	if strings.TrimSpace(source) == "" {
		return res
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, &evalState{
		scene:    s,
		settings: e.settings,
		resolver: e.resolver,
		result:   res,
	})

	if err := env.LoadString(preprocessSource(source)); err != nil {
		res.Errors = parseZygomysError(err)
		return res
	}
	v, err := env.Run()
	res.Density = e.settings.TexelDensity
	if err != nil {
		res.Errors = parseZygomysError(err)
		return res
	}
	if v != nil {
		res.Value = v.SexpString(nil)
	}
	return res
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
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

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
