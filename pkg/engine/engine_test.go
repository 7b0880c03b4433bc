package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/texeltools/pkg/ops"
	"github.com/chazu/texeltools/pkg/uvmesh"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// testScene is a 2x1 grid whose second face is cut loose and lifted in UV
// space, giving two islands. UVs are a quarter of the positions.
func testScene() (*uvmesh.Scene, *uvmesh.Object) {
	m := uvmesh.NewGrid(2, 1, 1, 0.25)
	m.SplitFaceUVs(1, v2.Vec{Y: 0.5})
	m.SelectAll()
	o := &uvmesh.Object{Name: "grid", Mesh: m, Image: &uvmesh.Image{Name: "checker", Width: 100, Height: 100}}
	return uvmesh.NewScene(o), o
}

func TestEvaluateEmptyString(t *testing.T) {
	eng := NewEngine(nil, nil)
	s, _ := testScene()

	res, err := eng.Evaluate(s, "")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected eval errors: %v", res.Errors)
	}
	if len(res.Ops) != 0 {
		t.Errorf("expected no operator calls, got %d", len(res.Ops))
	}
}

func TestEvaluateWhitespaceOnly(t *testing.T) {
	eng := NewEngine(nil, nil)
	s, _ := testScene()

	res, err := eng.Evaluate(s, "   \n\t  \n  ")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected eval errors: %v", res.Errors)
	}
}

func TestEvaluateValidExpression(t *testing.T) {
	eng := NewEngine(nil, nil)
	s, o := testScene()
	before := o.Mesh.Revision

	res, err := eng.Evaluate(s, "(+ 1 2)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected eval errors: %v", res.Errors)
	}
	if o.Mesh.Revision != before {
		t.Errorf("plain arithmetic changed the mesh")
	}
}

func TestEvaluateMultipleExpressions(t *testing.T) {
	eng := NewEngine(nil, nil)
	s, _ := testScene()

	source := `
(def x 10)
(def y 20)
(+ x y)
`
	res, err := eng.Evaluate(s, source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected eval errors: %v", res.Errors)
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng := NewEngine(nil, nil)
	s, _ := testScene()

	// Unmatched paren is a parse error.
	res, err := eng.Evaluate(s, "(+ 1 2")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected at least one eval error for syntax error")
	}
	if res.Errors[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	eng := NewEngine(nil, nil)
	s, _ := testScene()

	res, err := eng.Evaluate(s, "(+ 1 undefined-symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvaluateSyntaxErrorHasLineInfo(t *testing.T) {
	eng := NewEngine(nil, nil)
	s, _ := testScene()

	// Put the error on line 2.
	res, err := eng.Evaluate(s, "(+ 1 2)\n(+ 3")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected at least one eval error")
	}

	// Line info may or may not be available depending on the error format.
	e := res.Errors[0]
	if e.Message == "" {
		t.Error("eval error message should not be empty")
	}
	if e.Line > 0 {
		t.Logf("extracted line info: line=%d, message=%q", e.Line, e.Message)
	} else {
		t.Logf("no line info extracted (line=0), message=%q", e.Message)
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Col: 0, Message: "something went wrong"}
	s := e.Error()
	if !strings.Contains(s, "line 5") {
		t.Errorf("Error() should contain line info, got: %s", s)
	}
	if !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() should contain message, got: %s", s)
	}

	e2 := EvalError{Line: 0, Col: 0, Message: "no location"}
	if strings.Contains(e2.Error(), "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", e2.Error())
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	var first []v2.Vec
	for i := 0; i < 5; i++ {
		eng := NewEngine(nil, nil)
		s, o := testScene()
		res, err := eng.Evaluate(s, "(align :top)")
		if err != nil {
			t.Fatalf("iteration %d: unexpected fatal error: %v", i, err)
		}
		if len(res.Errors) > 0 {
			t.Fatalf("iteration %d: unexpected eval errors: %v", i, res.Errors)
		}
		got := o.Mesh.Faces[0].UVs()
		if first == nil {
			first = got
			continue
		}
		for j := range got {
			if got[j] != first[j] {
				t.Fatalf("iteration %d: loop %d = %v, want %v", i, j, got[j], first[j])
			}
		}
	}
}

func TestEvaluateSettingsPersist(t *testing.T) {
	st := ops.DefaultSettings()
	eng := NewEngine(st, nil)
	s, _ := testScene()

	res, err := eng.Evaluate(s, "(texel-density)")
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if math.Abs(res.Density-25) > 1e-9 {
		t.Fatalf("density = %v, want 25", res.Density)
	}

	// A later failing measurement keeps the stored value.
	res, err = eng.Evaluate(s, "(deselect-all)\n(texel-density)")
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if math.Abs(res.Density-25) > 1e-9 {
		t.Errorf("density after failure = %v, want 25", res.Density)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a warning from the failed measurement")
	}
	if eng.Settings() != st {
		t.Error("Settings should return the engine's settings")
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "line format lowercase",
			msg:      "error on line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
		{
			name:     "short line format",
			msg:      "line 3: bad form",
			wantLine: 3,
			wantMsg:  "bad form",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
