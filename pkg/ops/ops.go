// Package ops is the operator surface of the UV tools: Align,
// AlignIslandByEdge and GetTexelDensity. Each operator checks that it can
// run, snapshots the selection, does its work through the core packages
// and restores the selection on every exit path. Failures never escape as
// errors; they become a Cancelled status with warning text for the user.
package ops

import (
	"errors"
	"fmt"

	"github.com/chazu/texeltools/pkg/align"
	"github.com/chazu/texeltools/pkg/island"
	"github.com/chazu/texeltools/pkg/selection"
	"github.com/chazu/texeltools/pkg/texel"
	"github.com/chazu/texeltools/pkg/uvmesh"
)

// ErrPoll is wrapped by Poll when an operator cannot run in the current
// context.
var ErrPoll = errors.New("operator unavailable")

// Status is the outcome reported to the host.
type Status int

const (
	Finished Status = iota
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Finished:
		return "FINISHED"
	case Cancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// MarshalText reports the status by name in JSON output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is what an operator hands back to the host.
type Result struct {
	Status   Status   `json:"status"`
	Warnings []string `json:"warnings,omitempty"`
	Islands  int      `json:"islands,omitempty"`
	Moved    int      `json:"moved,omitempty"`
	Density  float64  `json:"density,omitempty"`
}

func (r *Result) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	Logger().Warn(msg)
}

func cancelled(err error) Result {
	r := Result{Status: Cancelled}
	r.warn("%v", err)
	return r
}

// DefaultTolerance is the UV coincidence tolerance used for islands.
// Zero means exact comparison.
const DefaultTolerance = 0.0

// Settings holds operator parameters and outputs that outlive a single
// call, like the add-on's settings panel.
type Settings struct {
	TexelDensity float64     `json:"texel_density"` // last measured density
	Tolerance    float64     `json:"tolerance"`     // island UV coincidence
	Scope        texel.Scope `json:"scope"`         // faces measured for texel density
}

// DefaultSettings returns settings with exact island matching and
// selected-face texel measurement.
func DefaultSettings() *Settings {
	return &Settings{
		Tolerance: DefaultTolerance,
		Scope:     texel.Selected,
	}
}

func (st *Settings) islandOptions() island.Options {
	if st == nil {
		return island.Options{Tolerance: DefaultTolerance}
	}
	return island.Options{Tolerance: st.Tolerance}
}

// Requirements describe what an operator needs from the context.
type Requirements struct {
	NoSync     bool               // UV sync selection must be off
	SelectMode *uvmesh.SelectMode // required UV select mode, if any
}

// Poll reports whether an operator with the given requirements can run on
// s: every object needs mesh data and at least one needs UVs. The returned
// error wraps ErrPoll.
func Poll(s *uvmesh.Scene, req Requirements) error {
	if s == nil || len(s.Objects) == 0 {
		return fmt.Errorf("%w: no mesh objects in edit mode", ErrPoll)
	}
	for _, o := range s.Objects {
		if o.Mesh == nil {
			return fmt.Errorf("%w: object %q has no mesh data", ErrPoll, o.Name)
		}
	}
	if !s.HasUVs() {
		return fmt.Errorf("%w: object has no UV map", ErrPoll)
	}
	if req.NoSync && s.Tool.UVSync {
		return fmt.Errorf("%w: UV sync selection is not supported", ErrPoll)
	}
	if req.SelectMode != nil && s.Tool.UVSelectMode != *req.SelectMode {
		return fmt.Errorf("%w: requires %s select mode, current mode is %s",
			ErrPoll, *req.SelectMode, s.Tool.UVSelectMode)
	}
	return nil
}

var (
	alignRequirements  = Requirements{NoSync: true}
	edgeMode           = uvmesh.SelectEdge
	byEdgeRequirements = Requirements{NoSync: true, SelectMode: &edgeMode}
	texelRequirements  = Requirements{}
)

// restore runs a selection scope's restore and logs anything it skipped.
func restore(fn func() selection.Stats) {
	if st := fn(); st.Skipped > 0 {
		Logger().Warn("selection restore skipped stale ids", "skipped", st.Skipped)
	}
}

// Align aligns to the given side. In face or island select mode whole
// islands are translated; in edge or vertex mode the selected UVs are
// clamped onto the side.
func Align(s *uvmesh.Scene, st *Settings, direction string) Result {
	if err := Poll(s, alignRequirements); err != nil {
		return cancelled(err)
	}
	defer restore(selection.Scope(s))

	d, err := align.ParseDirection(direction)
	if err != nil {
		return cancelled(err)
	}
	log := Logger().With("op", "align", "direction", d.String(), "mode", s.Tool.UVSelectMode.String())
	log.Info("align")

	var rep align.Report
	switch s.Tool.UVSelectMode {
	case uvmesh.SelectFace, uvmesh.SelectIsland:
		islands := island.Partition(s, st.islandOptions())
		n, faces := island.Count(islands)
		log.Debug("islands", "count", n, "faces", faces)
		rep, err = align.Islands(s, islands, d)
	default:
		rep, err = align.Verts(s, d)
	}
	if err != nil {
		return cancelled(err)
	}
	res := Result{Status: Finished, Islands: rep.Islands, Moved: rep.Moved}
	for _, msg := range rep.Skipped {
		res.warn("%s", msg)
	}
	log.Info("align done", "moved", rep.Moved)
	return res
}

// AlignIslandByEdge rotates every selected island so its selected edge is
// axis-parallel. It needs edge select mode.
func AlignIslandByEdge(s *uvmesh.Scene, st *Settings) Result {
	if err := Poll(s, byEdgeRequirements); err != nil {
		return cancelled(err)
	}
	defer restore(selection.Scope(s))

	log := Logger().With("op", "align-island-by-edge")
	islands := island.Partition(s, st.islandOptions())
	if len(islands) == 0 {
		return cancelled(fmt.Errorf("align island by edge: %w", align.ErrNoSelection))
	}
	n, faces := island.Count(islands)
	log.Debug("islands", "count", n, "faces", faces)

	rep := align.IslandsByEdge(s, islands)
	res := Result{Status: Finished, Islands: rep.Islands, Moved: rep.Moved}
	for _, msg := range rep.Skipped {
		res.warn("%s", msg)
	}
	log.Info("align island by edge done", "islands", rep.Islands, "moved", rep.Moved, "skipped", len(rep.Skipped))
	return res
}

// GetTexelDensity measures texel density and stores it in
// st.TexelDensity. On failure the stored value is left unchanged.
func GetTexelDensity(s *uvmesh.Scene, st *Settings, resolver texel.ImageResolver) Result {
	if st == nil {
		st = DefaultSettings()
	}
	if err := Poll(s, texelRequirements); err != nil {
		return cancelled(err)
	}
	defer restore(selection.Scope(s))

	if resolver == nil {
		resolver = texel.SceneResolver{Scene: s}
	}
	tr, err := texel.Estimate(s, resolver, st.Scope)
	if err != nil {
		return cancelled(err)
	}
	res := Result{Status: Finished, Density: tr.Density}
	if tr.SkippedFaces > 0 {
		res.warn("%d faces have no image and were not measured", tr.SkippedFaces)
	}
	st.TexelDensity = tr.Density
	Logger().Info("texel density", "density", tr.Density, "faces", tr.Faces, "triangles", tr.Triangles)
	return res
}
