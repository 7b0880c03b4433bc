package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/texeltools/pkg/geom"
	"github.com/chazu/texeltools/pkg/ops"
	"github.com/chazu/texeltools/pkg/texel"
	"github.com/chazu/texeltools/pkg/uvmesh"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(align :top)`,
			expect: `(align "__kw_top")`,
		},
		{
			name:   "multiple keywords",
			input:  `(f :scope :all)`,
			expect: `(f "__kw_scope" "__kw_all")`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote in string",
			input:  `"a \" :b" :c`,
			expect: `"a \" :b" "__kw_c"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(align-island-by-edge)`,
			expect: `(align_island_by_edge)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative number preserved",
			input:  `(tolerance -1)`,
			expect: `(tolerance -1)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:head-dia`,
			expect: `"__kw_head-dia"`,
		},
		{
			name:   "backtick string preserved",
			input:  "`raw :kw`",
			expect: "`raw :kw`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Operator builtins
// ---------------------------------------------------------------------------

func evalOK(t *testing.T, eng *Engine, s *uvmesh.Scene, source string) *EvalResult {
	t.Helper()
	res, err := eng.Evaluate(s, source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(res.Errors) > 0 {
		t.Fatalf("eval errors: %v", res.Errors)
	}
	return res
}

func TestAlignBuiltin(t *testing.T) {
	s, o := testScene()
	res := evalOK(t, NewEngine(nil, nil), s, "(align :top)")

	if len(res.Ops) != 1 {
		t.Fatalf("expected 1 operator call, got %d", len(res.Ops))
	}
	rec := res.Ops[0]
	if rec.Op != "align" || rec.Result.Status != ops.Finished {
		t.Fatalf("unexpected record: %+v", rec)
	}
	b := geom.BoundingBox(o.Mesh.Faces[0].UVs())
	if math.Abs(b.Max.Y-0.75) > 1e-9 {
		t.Errorf("face 0 top = %v, want 0.75", b.Max.Y)
	}
}

func TestAlignBuiltinStringDirection(t *testing.T) {
	s, o := testScene()
	evalOK(t, NewEngine(nil, nil), s, `(align "right")`)

	b := geom.BoundingBox(o.Mesh.Faces[0].UVs())
	if math.Abs(b.Max.X-0.5) > 1e-9 {
		t.Errorf("face 0 right = %v, want 0.5", b.Max.X)
	}
}

func TestAlignBuiltinBadDirectionWarns(t *testing.T) {
	s, _ := testScene()
	res := evalOK(t, NewEngine(nil, nil), s, "(align :up)")

	if res.Ops[0].Result.Status != ops.Cancelled {
		t.Errorf("expected cancelled, got %v", res.Ops[0].Result.Status)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Op != "align" {
		t.Errorf("unexpected warnings: %+v", res.Warnings)
	}
}

func TestAlignBuiltinArity(t *testing.T) {
	s, _ := testScene()
	res, err := NewEngine(nil, nil).Evaluate(s, "(align)")
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected an eval error for missing direction")
	}
	if !strings.Contains(res.Errors[0].Message, "direction") {
		t.Errorf("error should mention the direction, got %q", res.Errors[0].Message)
	}
}

func TestAlignIslandByEdgeBuiltin(t *testing.T) {
	m := uvmesh.NewMesh()
	uvs := []v2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	ids := make([]uvmesh.VertexID, len(uvs))
	for i, uv := range uvs {
		uvs[i] = geom.RotateAbout(uv, v2.Vec{X: 0.5, Y: 0.5}, 0.3)
		ids[i] = m.AddVertex(v3.Vec{X: uv.X, Y: uv.Y})
	}
	m.MustAddFace(ids, uvs)
	m.SelectAll()
	f := &m.Faces[0]
	f.Loops[2].Select = false
	f.Loops[3].Select = false
	s := uvmesh.NewScene(&uvmesh.Object{Name: "quad", Mesh: m})

	res := evalOK(t, NewEngine(nil, nil), s, "(select-mode :edge)\n(align-island-by-edge)")
	if res.Ops[0].Result.Status != ops.Finished {
		t.Fatalf("expected finished, got %+v", res.Ops[0].Result)
	}
	if d := math.Abs(f.Loops[0].UV.Y - f.Loops[1].UV.Y); d > 1e-9 {
		t.Errorf("edge not horizontal, dy = %v", d)
	}
}

func TestTexelDensityBuiltin(t *testing.T) {
	s, _ := testScene()
	st := ops.DefaultSettings()
	res := evalOK(t, NewEngine(st, nil), s, "(def d (texel-density))\n(texel-density :all)")

	if math.Abs(res.Density-25) > 1e-9 {
		t.Errorf("density = %v, want 25", res.Density)
	}
	if st.Scope != texel.All {
		t.Errorf("scope = %v, want all", st.Scope)
	}
	if len(res.Ops) != 2 || res.Ops[1].Args[0] != "all" {
		t.Errorf("unexpected ops: %+v", res.Ops)
	}
}

func TestTexelDensityScopePersists(t *testing.T) {
	s, o := testScene()
	eng := NewEngine(nil, nil)
	evalOK(t, eng, s, "(texel-density :all)")

	o.Mesh.DeselectAll()
	res := evalOK(t, eng, s, "(texel-density)")
	if res.Ops[0].Result.Status != ops.Finished {
		t.Fatalf("bare call should still measure every face: %+v", res.Ops[0].Result)
	}
	if math.Abs(res.Density-25) > 1e-9 {
		t.Errorf("density = %v, want 25", res.Density)
	}

	evalOK(t, eng, s, "(texel-density :selected)")
	if eng.Settings().Scope != texel.Selected {
		t.Errorf("scope = %v, want selected", eng.Settings().Scope)
	}
}

func TestTexelDensityBuiltinBadScope(t *testing.T) {
	s, _ := testScene()
	res, err := NewEngine(nil, nil).Evaluate(s, "(texel-density :everything)")
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected an eval error for an unknown scope")
	}
}

// ---------------------------------------------------------------------------
// Selection and settings builtins
// ---------------------------------------------------------------------------

func TestSelectionBuiltins(t *testing.T) {
	s, o := testScene()
	eng := NewEngine(nil, nil)

	evalOK(t, eng, s, `(deselect-all)`)
	if len(o.Mesh.SelectedFaces()) != 0 {
		t.Fatal("deselect-all left faces selected")
	}

	evalOK(t, eng, s, `(select-faces "grid" 1 7)`)
	sel := o.Mesh.SelectedFaces()
	if len(sel) != 1 || sel[0].ID != 1 {
		t.Fatalf("expected only face 1 selected, got %v", sel)
	}

	evalOK(t, eng, s, `(select-all)`)
	if len(o.Mesh.SelectedFaces()) != 2 {
		t.Fatal("select-all did not select every face")
	}
}

func TestSelectFacesList(t *testing.T) {
	s, o := testScene()
	evalOK(t, NewEngine(nil, nil), s, "(deselect-all)\n(select-faces \"grid\" '(0 1))")
	if len(o.Mesh.SelectedFaces()) != 2 {
		t.Fatalf("expected 2 selected faces, got %d", len(o.Mesh.SelectedFaces()))
	}
}

func TestSelectFacesUnknownObject(t *testing.T) {
	s, _ := testScene()
	res, err := NewEngine(nil, nil).Evaluate(s, `(select-faces "nope" 0)`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(res.Errors) == 0 || !strings.Contains(res.Errors[0].Message, "nope") {
		t.Fatalf("expected error naming the object, got %v", res.Errors)
	}
}

func TestSelectModeBuiltin(t *testing.T) {
	s, _ := testScene()
	evalOK(t, NewEngine(nil, nil), s, "(select-mode :vertex)")
	if s.Tool.UVSelectMode != uvmesh.SelectVertex {
		t.Errorf("select mode = %v, want vertex", s.Tool.UVSelectMode)
	}

	res, _ := NewEngine(nil, nil).Evaluate(s, "(select-mode :lasso)")
	if len(res.Errors) == 0 {
		t.Error("expected an eval error for an unknown mode")
	}
}

func TestIslandsAndTolerance(t *testing.T) {
	s, _ := testScene()
	st := ops.DefaultSettings()
	eng := NewEngine(st, nil)

	if res := evalOK(t, eng, s, `(islands)`); res.Value != "2" {
		t.Fatalf("islands = %s, want 2", res.Value)
	}

	evalOK(t, eng, s, `(tolerance 2)`)
	if st.Tolerance != 2 {
		t.Errorf("tolerance = %v, want 2", st.Tolerance)
	}
	// On a grid that coarse the lifted face joins its neighbour again.
	if res := evalOK(t, eng, s, `(islands)`); res.Value != "1" {
		t.Errorf("islands = %s, want 1", res.Value)
	}

	res, _ := eng.Evaluate(s, `(tolerance -1)`)
	if len(res.Errors) == 0 {
		t.Error("expected an eval error for a negative tolerance")
	}
}
