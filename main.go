// Command texeltools runs UV alignment and texel density tools against a
// mesh in edit mode, either from an OBJ file or a generated demo solid,
// and prints a JSON report.
//
// Usage:
//
//	texeltools -demo box -op align -dir top
//	texeltools -obj model.obj -textures ./tex -script examples/align.uvs
package main

import (
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/chazu/texeltools/pkg/ops"
	"github.com/chazu/texeltools/pkg/texel"
	"github.com/chazu/texeltools/pkg/uvmesh"
)

func main() {
	var (
		objPath   = flag.String("obj", "", "OBJ file to load")
		mtlPath   = flag.String("mtl", "", "MTL file (default: the OBJ's mtllib)")
		textures  = flag.String("textures", ".", "directory for texture files named by materials")
		demo      = flag.String("demo", "", "generated demo scene: box, bracket or cylinder")
		script    = flag.String("script", "", "script file to evaluate")
		op        = flag.String("op", "", "single operator: align, align-edge or texel")
		dir       = flag.String("dir", "top", "direction for -op align: top, bottom, left or right")
		mode      = flag.String("mode", "face", "UV select mode: vertex, edge, face or island")
		tolerance = flag.Float64("tolerance", ops.DefaultTolerance, "UV tolerance for island detection (0 = exact)")
		all       = flag.Bool("all", false, "measure texel density over every face, not just the selection")
		verbose   = flag.Bool("v", false, "log operator activity to stderr")
	)
	flag.Parse()
	log.SetFlags(0)
	log.SetPrefix("texeltools: ")

	if *verbose {
		ops.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	settings := ops.DefaultSettings()
	settings.Tolerance = *tolerance
	if *all {
		settings.Scope = texel.All
	}
	app := NewApp(settings)

	selectMode, err := uvmesh.ParseSelectMode(*mode)
	if err != nil {
		log.Fatalf("%v", err)
	}

	switch {
	case *objPath != "":
		err = app.LoadOBJ(*objPath, *mtlPath, *textures)
	case *demo != "":
		err = app.LoadDemo(*demo)
	default:
		err = app.LoadDemo("box")
	}
	if err != nil {
		log.Fatalf("load: %v", err)
	}
	app.Scene().Tool.UVSelectMode = selectMode

	var report Report
	switch {
	case *script != "":
		source, err := os.ReadFile(*script)
		if err != nil {
			log.Fatalf("script: %v", err)
		}
		report = app.Evaluate(string(source))
	case *op != "":
		report, err = app.RunOp(*op, *dir)
		if err != nil {
			log.Fatalf("%v", err)
		}
	default:
		report = app.Evaluate("")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatalf("write report: %v", err)
	}
	if len(report.Errors) > 0 {
		os.Exit(1)
	}
}
