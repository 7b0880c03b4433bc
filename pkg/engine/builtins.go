package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/texeltools/pkg/island"
	"github.com/chazu/texeltools/pkg/ops"
	"github.com/chazu/texeltools/pkg/texel"
	"github.com/chazu/texeltools/pkg/uvmesh"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites script source before zygomys sees it:
//
//  1. :keyword becomes the string literal "__kw_keyword", so builtins can
//     tell keywords from plain strings without registering globals.
//
//  2. Kebab-case identifiers become underscores (align-island-by-edge ->
//     align_island_by_edge). zygomys reads a hyphen between identifier
//     characters as subtraction.
//
//  3. ; line comments become // comments.
//
// String literals are copied unchanged.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			j := skipQuoted(b, i)
			result = append(result, b[i:j]...)
			i = j
		case b[i] == '`':
			j := i + 1
			for j < len(b) && b[j] != '`' {
				j++
			}
			if j < len(b) {
				j++
			}
			result = append(result, b[i:j]...)
			i = j
		case b[i] == ';':
			result = append(result, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			result = append(result, b[i], b[i+1])
			i += 2
		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j
		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			result = append(result, '_')
			i++
		default:
			result = append(result, b[i])
			i++
		}
	}
	return string(result)
}

// skipQuoted returns the index just past the double-quoted literal that
// starts at i, honoring backslash escapes.
func skipQuoted(b []byte, i int) int {
	j := i + 1
	for j < len(b) && b[j] != '"' {
		if b[j] == '\\' && j+1 < len(b) {
			j += 2
			continue
		}
		j++
	}
	if j < len(b) {
		j++
	}
	return j
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
// Argument helpers
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_top) and plain strings ("top").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
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

// faceIDs flattens integer arguments and lists of integers into face ids.
func faceIDs(args []zygo.Sexp) ([]uvmesh.FaceID, error) {
	var ids []uvmesh.FaceID
	for _, a := range args {
		if n, err := toInt(a); err == nil {
			ids = append(ids, uvmesh.FaceID(n))
			continue
		}
		items, err := sexpListToSlice(a)
		if err != nil {
			return nil, fmt.Errorf("face id: %w", err)
		}
		nested, err := faceIDs(items)
		if err != nil {
			return nil, err
		}
		ids = append(ids, nested...)
	}
	return ids, nil
}

func status(res ops.Result) zygo.Sexp {
	return &zygo.SexpStr{S: res.Status.String()}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// evalState is what the builtins of one evaluation operate on.
type evalState struct {
	scene    *uvmesh.Scene
	settings *ops.Settings
	resolver texel.ImageResolver
	result   *EvalResult
}

// registerBuiltins installs the UV tool builtins into a zygomys
// environment. Source must be preprocessed with preprocessSource so that
// :keyword tokens and kebab-case names resolve.
func registerBuiltins(env *zygo.Zlisp, st *evalState) {
	s := st.scene

	// -----------------------------------------------------------------------
	// (align :top) / (align "left")
	// -----------------------------------------------------------------------
	env.AddFunction("align", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("align requires a direction (:top, :bottom, :left, :right)")
		}
		dir, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("align: direction: %w", err)
		}
		res := ops.Align(s, st.settings, dir)
		st.result.record("align", []string{dir}, res)
		return status(res), nil
	})

	// -----------------------------------------------------------------------
	// (align-island-by-edge)
	// -----------------------------------------------------------------------
	env.AddFunction("align_island_by_edge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		res := ops.AlignIslandByEdge(s, st.settings)
		st.result.record("align-island-by-edge", nil, res)
		return status(res), nil
	})

	// -----------------------------------------------------------------------
	// (texel-density) / (texel-density :all) -> density
	//
	// A scope argument is stored in the shared settings, so later bare calls
	// and later evaluations keep measuring that scope until it is changed.
	// -----------------------------------------------------------------------
	env.AddFunction("texel_density", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var opArgs []string
		if len(args) > 0 {
			kw, err := toKeywordString(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("texel-density: scope: %w", err)
			}
			scope, err := texel.ParseScope(kw)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("texel-density: %w", err)
			}
			st.settings.Scope = scope
			opArgs = []string{kw}
		}
		res := ops.GetTexelDensity(s, st.settings, st.resolver)
		st.result.record("texel-density", opArgs, res)
		return &zygo.SexpFloat{Val: st.settings.TexelDensity}, nil
	})

	// -----------------------------------------------------------------------
	// (tolerance 0.001) sets, (tolerance) reads the island UV tolerance
	// -----------------------------------------------------------------------
	env.AddFunction("tolerance", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) > 0 {
			tol, err := toFloat64(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("tolerance: %w", err)
			}
			if tol < 0 {
				return zygo.SexpNull, fmt.Errorf("tolerance must not be negative, got %g", tol)
			}
			st.settings.Tolerance = tol
		}
		return &zygo.SexpFloat{Val: st.settings.Tolerance}, nil
	})

	// -----------------------------------------------------------------------
	// (select-mode :edge) sets, (select-mode) reads the UV select mode
	// -----------------------------------------------------------------------
	env.AddFunction("select_mode", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) > 0 {
			kw, err := toKeywordString(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("select-mode: %w", err)
			}
			mode, err := uvmesh.ParseSelectMode(kw)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("select-mode: %w", err)
			}
			s.Tool.UVSelectMode = mode
		}
		return &zygo.SexpStr{S: s.Tool.UVSelectMode.String()}, nil
	})

	// -----------------------------------------------------------------------
	// (select-all) / (deselect-all)
	// -----------------------------------------------------------------------
	env.AddFunction("select_all", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		s.SelectAll()
		return zygo.SexpNull, nil
	})
	env.AddFunction("deselect_all", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		for _, o := range s.Objects {
			o.Mesh.DeselectAll()
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (select-faces "obj" 0 1 2) / (select-faces "obj" '(0 1 2)) -> count
	// -----------------------------------------------------------------------
	env.AddFunction("select_faces", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("select-faces requires an object name")
		}
		objName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("select-faces: object: %w", err)
		}
		o := s.Object(objName)
		if o == nil {
			return zygo.SexpNull, fmt.Errorf("select-faces: no object named %q", objName)
		}
		ids, err := faceIDs(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("select-faces: %w", err)
		}
		return &zygo.SexpInt{Val: int64(o.Mesh.SelectFaces(ids...))}, nil
	})

	// -----------------------------------------------------------------------
	// (islands) -> number of selected islands
	// -----------------------------------------------------------------------
	env.AddFunction("islands", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		islands := island.Partition(s, island.Options{Tolerance: st.settings.Tolerance})
		return &zygo.SexpInt{Val: int64(len(islands))}, nil
	})
}
