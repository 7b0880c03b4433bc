package main

import (
	"fmt"
	"log"

	"github.com/chazu/texeltools/pkg/engine"
	"github.com/chazu/texeltools/pkg/island"
	"github.com/chazu/texeltools/pkg/kernel"
	"github.com/chazu/texeltools/pkg/kernel/sdfx"
	"github.com/chazu/texeltools/pkg/meshio"
	"github.com/chazu/texeltools/pkg/ops"
	"github.com/chazu/texeltools/pkg/texel"
	"github.com/chazu/texeltools/pkg/uvmesh"
)

// DemoImage is the image shown in the UV editor for demo scenes.
var DemoImage = uvmesh.Image{Name: "demo-checker", Width: 1024, Height: 1024}

// App is the host: it owns the scene in edit mode, the scripting engine
// and the mesh kernel used for demo scenes.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
	scene  *uvmesh.Scene
}

// ObjectSummary describes one object of the scene after a run.
type ObjectSummary struct {
	Name     string `json:"name"`
	Verts    int    `json:"verts"`
	Faces    int    `json:"faces"`
	Islands  int    `json:"islands"`
	Seams    int    `json:"seam_verts"`     // vertices split by a UV seam
	SelFaces int    `json:"selected_faces"` // faces with every loop UV-selected
	SelVerts int    `json:"selected_verts"` // vertices with a UV-selected loop
	Image    string `json:"image,omitempty"`
	Revision uint64 `json:"revision"`
}

// Report is the JSON document printed after a run.
type Report struct {
	Objects  []ObjectSummary      `json:"objects"`
	Ops      []engine.OpRecord    `json:"ops"`
	Errors   []engine.EvalError   `json:"errors"`
	Warnings []engine.EvalWarning `json:"warnings"`
	Density  float64              `json:"density"`
	Value    string               `json:"value,omitempty"`
}

// NewApp creates an App with an empty scene, the sdfx kernel and the
// given operator settings (nil for defaults).
func NewApp(settings *ops.Settings) *App {
	return &App{
		engine: engine.NewEngine(settings, nil),
		kernel: sdfx.New(),
		scene:  uvmesh.NewScene(),
	}
}

// Scene returns the scene in edit mode.
func (a *App) Scene() *uvmesh.Scene {
	return a.scene
}

// Settings returns the operator settings shared by every run.
func (a *App) Settings() *ops.Settings {
	return a.engine.Settings()
}

// LoadOBJ replaces the scene with the objects of an OBJ file, everything
// selected. Textures named by the materials are looked up in textureDir;
// ones that cannot be read are logged and left unmeasured.
func (a *App) LoadOBJ(objPath, mtlPath, textureDir string) error {
	objs, err := meshio.LoadOBJ(objPath, mtlPath)
	if err != nil {
		return err
	}
	r := meshio.NewFileImageResolver(textureDir)
	for _, err := range r.Attach(objs) {
		log.Printf("texture: %v", err)
	}
	a.setObjects(objs, r)
	return nil
}

// LoadDemo replaces the scene with a generated, box-projected solid:
// "box" is a block with a hole through it, "bracket" an L of two blocks,
// "cylinder" a plain cylinder.
func (a *App) LoadDemo(name string) error {
	var solid kernel.Solid
	switch name {
	case "box":
		block := a.kernel.Box(4, 2, 2)
		hole := a.kernel.Translate(a.kernel.Cylinder(4, 0.6), 2, 1, 1)
		solid = a.kernel.Difference(block, hole)
	case "bracket":
		base := a.kernel.Box(4, 1, 2)
		upright := a.kernel.Box(1, 3, 2)
		solid = a.kernel.Union(base, upright)
	case "cylinder":
		solid = a.kernel.Cylinder(2, 1)
	default:
		return fmt.Errorf("unknown demo %q, expected box, bracket or cylinder", name)
	}

	m, err := a.kernel.ToMesh(solid)
	if err != nil {
		return fmt.Errorf("demo %s: %w", name, err)
	}
	m.Name = name
	o, err := uvmesh.FromTriangles(name, m, uvmesh.DefaultWeldTolerance)
	if err != nil {
		return fmt.Errorf("demo %s: %w", name, err)
	}
	a.setObjects([]*uvmesh.Object{o}, nil)
	img := DemoImage
	a.scene.DisplayedImage = &img
	return nil
}

func (a *App) setObjects(objs []*uvmesh.Object, resolver texel.ImageResolver) {
	tool := a.scene.Tool
	a.scene = uvmesh.NewScene(objs...)
	a.scene.Tool = tool
	a.scene.SelectAll()
	a.engine = engine.NewEngine(a.engine.Settings(), resolver)
	for _, o := range objs {
		if errs := uvmesh.Validate(o.Mesh); uvmesh.HasErrors(errs) {
			log.Printf("object %s: %d validation problems, first: %v", o.Name, len(errs), errs[0])
		}
	}
}

// Evaluate runs a script against the scene and reports the outcome.
func (a *App) Evaluate(source string) Report {
	report := Report{
		Ops:      []engine.OpRecord{},
		Errors:   []engine.EvalError{},
		Warnings: []engine.EvalWarning{},
	}

	res, err := a.engine.Evaluate(a.scene, source)
	if err != nil {
		log.Printf("Evaluate fatal error: %v", err)
		report.Errors = append(report.Errors, engine.EvalError{Message: err.Error()})
		report.Objects = a.summarize()
		return report
	}

	report.Ops = append(report.Ops, res.Ops...)
	report.Errors = append(report.Errors, res.Errors...)
	report.Warnings = append(report.Warnings, res.Warnings...)
	report.Density = res.Density
	report.Value = res.Value
	report.Objects = a.summarize()
	return report
}

// RunOp runs a single operator by name: "align" with a direction,
// "align-edge" or "texel".
func (a *App) RunOp(op, direction string) (Report, error) {
	var source string
	switch op {
	case "align":
		source = fmt.Sprintf("(align %q)", direction)
	case "align-edge":
		source = "(align-island-by-edge)"
	case "texel":
		source = "(texel-density)"
	default:
		return Report{}, fmt.Errorf("unknown operator %q, expected align, align-edge or texel", op)
	}
	return a.Evaluate(source), nil
}

func (a *App) summarize() []ObjectSummary {
	opts := island.Options{Tolerance: a.Settings().Tolerance}
	out := make([]ObjectSummary, 0, len(a.scene.Objects))
	for _, o := range a.scene.Objects {
		sum := ObjectSummary{Name: o.Name}
		if o.Mesh != nil {
			sum.Verts = len(o.Mesh.Verts)
			sum.Faces = o.Mesh.FaceCount()
			sum.Islands = len(island.PartitionObject(o, opts))
			sum.Seams = o.Mesh.SeamVerts()
			sum.SelFaces = len(o.Mesh.SelectedUVFaces())
			sum.SelVerts = len(o.Mesh.SelectedUVVerts())
			sum.Revision = o.Mesh.Revision
		}
		if o.Image != nil {
			sum.Image = o.Image.Name
		} else if a.scene.DisplayedImage != nil {
			sum.Image = a.scene.DisplayedImage.Name
		}
		out = append(out, sum)
	}
	return out
}
