package uvmesh

import "fmt"

// ValidationSeverity indicates whether a finding makes the mesh unusable
// for UV operations or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // mesh must not be edited
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single structural finding.
type ValidationError struct {
	Face     FaceID
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] face %d: %s", e.Severity, e.Face, e.Message)
}

// Validate checks the invariants the UV algorithms rely on. It never
// mutates the mesh.
func Validate(m *Mesh) []ValidationError {
	if m == nil {
		return []ValidationError{{Message: "no mesh data", Severity: SeverityError}}
	}
	var errs []ValidationError
	for i := range m.Faces {
		f := &m.Faces[i]
		if f.ID != FaceID(i) {
			errs = append(errs, ValidationError{
				Face:     FaceID(i),
				Message:  fmt.Sprintf("face id %d does not match its index", f.ID),
				Severity: SeverityError,
			})
		}
		if len(f.Loops) < 3 {
			errs = append(errs, ValidationError{
				Face:     FaceID(i),
				Message:  fmt.Sprintf("face has %d loops, need at least 3", len(f.Loops)),
				Severity: SeverityError,
			})
		}
		seen := make(map[VertexID]bool, len(f.Loops))
		for _, l := range f.Loops {
			if !m.HasVertex(l.Vert) {
				errs = append(errs, ValidationError{
					Face:     FaceID(i),
					Message:  fmt.Sprintf("loop references vertex %d, mesh has %d", l.Vert, len(m.Verts)),
					Severity: SeverityError,
				})
			}
			if l.Face != FaceID(i) {
				errs = append(errs, ValidationError{
					Face:     FaceID(i),
					Message:  fmt.Sprintf("loop claims face %d", l.Face),
					Severity: SeverityError,
				})
			}
			if seen[l.Vert] {
				errs = append(errs, ValidationError{
					Face:     FaceID(i),
					Message:  fmt.Sprintf("vertex %d appears twice", l.Vert),
					Severity: SeverityWarning,
				})
			}
			seen[l.Vert] = true
		}
	}
	return errs
}

// HasErrors reports whether any finding has error severity.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}
