// meshport converts meshes between an in-memory scene and Wavefront OBJ/MTL
// files with PNG textures.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshport/internal/config"
	"github.com/Faultbox/meshport/internal/convert"
	"github.com/Faultbox/meshport/internal/logger"
	"github.com/Faultbox/meshport/internal/scene"
	"github.com/Faultbox/meshport/internal/texture"
	"github.com/Faultbox/meshport/pkg/math"
	"github.com/Faultbox/meshport/pkg/mesh"
	"github.com/Faultbox/meshport/pkg/pngcodec"
	"github.com/Faultbox/meshport/pkg/wavefront"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	if command == "help" || command == "-h" || command == "--help" {
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args = args[1:]
	switch command {
	case "import":
		err = cmdImport(cfg, args)
	case "export":
		err = cmdExport(cfg, args)
	case "convert":
		err = cmdConvert(cfg, args)
	case "info":
		err = cmdInfo(cfg, args)
	case "png":
		err = cmdPNG(cfg, args)
	case "config":
		err = cmdConfig(cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshport - OBJ/MTL mesh converter

Usage:
  meshport [flags] <command> [arguments]

Commands:
  import <file.obj>          Import an OBJ into the scene and print a summary
  export <mesh>              Load the scene directory and export one mesh
  convert <file.obj> <name>  Import an OBJ and export it under a new name
  info <file.obj>            Parse an OBJ and print its contents
  png <image> <out.png>      Convert an image to an RGBA8 PNG
  config [path]              Write the effective configuration (default: user config dir)

Flags:
  -config <path>     Config file (default: ./meshport.yaml)
  -debug             Enable debug logging
  -out <dir>         Export output directory
  -in <dir>          Import input directory
  -mesh <name>       Mesh to export
  -obj <file>        OBJ file to import
  -scene <dir>       Directory of OBJ files loaded for export
  -scale <factor>    Scale positions on import
  -flip-normals      Negate normals on import

Examples:
  meshport info crate.obj
  meshport -scale 100 import rock.obj
  meshport -scene level1 -out dist export Crate
  meshport png wood.tga wood.png
  meshport -out dist -scale 100 config meshport.yaml`)
}

func exportOptions(cfg *config.Config) convert.ExportOptions {
	return convert.ExportOptions{
		OutputDir: cfg.Export.OutputDir,
		MTL: wavefront.MTLOptions{
			WriteCoefficients: cfg.Export.WriteCoefficients,
			Ambient:           vec3(cfg.Export.Ambient),
			Diffuse:           vec3(cfg.Export.Diffuse),
			Specular:          vec3(cfg.Export.Specular),
		},
		MaxTextureSize: cfg.Export.MaxTextureSize,
		Charset:        cfg.Export.Charset,
	}
}

func importOptions(cfg *config.Config) convert.ImportOptions {
	return convert.ImportOptions{
		MTLBaseDir:     cfg.Import.MTLBaseDir,
		Charset:        cfg.Import.Charset,
		MaxTextureSize: cfg.Import.MaxTextureSize,
		Build: convert.BuildOptions{
			FlipNormals:   cfg.Import.FlipNormals,
			PositionScale: cfg.Import.PositionScale,
			VertexColors:  cfg.Import.VertexColors,
		},
	}
}

func vec3(v [3]float32) math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// objPath returns the OBJ named on the command line, or the configured one,
// relative to the input directory.
func objPath(cfg *config.Config, args []string) (string, error) {
	p := cfg.Import.OBJFile
	if len(args) > 0 {
		p = args[0]
	}
	if p == "" {
		return "", fmt.Errorf("no OBJ file given")
	}
	if filepath.IsAbs(p) || cfg.Import.InputDir == "" {
		return p, nil
	}
	return filepath.Join(cfg.Import.InputDir, p), nil
}

func meshName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func cmdImport(cfg *config.Config, args []string) error {
	path, err := objPath(cfg, args)
	if err != nil {
		return err
	}

	store := scene.NewStore()
	res, err := convert.NewImporter(store, store, importOptions(cfg)).Import(path, meshName(path))
	if err != nil {
		return err
	}

	printMesh(os.Stdout, res.Mesh)
	fmt.Printf("Textures:  %d\n", len(res.Textures))
	for _, name := range res.Textures {
		fmt.Printf("  %s\n", name)
	}
	printDiagnostics(res.Diagnostics)
	return nil
}

func cmdExport(cfg *config.Config, args []string) error {
	name := cfg.Export.MeshName
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		return fmt.Errorf("no mesh name given")
	}

	store := scene.NewStore()
	if _, err := scene.LoadDir(convert.NewImporter(store, store, importOptions(cfg)), cfg.Scene.Dir); err != nil {
		return err
	}
	logger.Debug("scene loaded",
		zap.String("dir", cfg.Scene.Dir),
		zap.Strings("meshes", store.MeshNames()),
		zap.Strings("textures", store.TextureNames()),
	)
	return export(cfg, store, name)
}

func cmdConvert(cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: meshport convert <file.obj> <name>")
	}
	path, err := objPath(cfg, args)
	if err != nil {
		return err
	}

	store := scene.NewStore()
	res, err := convert.NewImporter(store, store, importOptions(cfg)).Import(path, args[1])
	if err != nil {
		return err
	}
	printDiagnostics(res.Diagnostics)
	return export(cfg, store, args[1])
}

func export(cfg *config.Config, store *scene.Store, name string) error {
	res, err := convert.NewExporter(store, store, exportOptions(cfg)).Export(name)
	hits, misses := store.Stats()
	logger.Debug("scene lookups", zap.Int("hits", hits), zap.Int("misses", misses))
	if err != nil {
		return err
	}

	fmt.Printf("OBJ:       %s\n", res.OBJPath)
	fmt.Printf("MTL:       %s\n", res.MTLPath)
	for _, f := range res.TextureFiles {
		fmt.Printf("Texture:   %s\n", f)
	}
	fmt.Printf("Triangles: %d in %d groups\n", res.Stats.Triangles, res.Stats.Groups)
	printDiagnostics(res.Diagnostics)
	return nil
}

func cmdConfig(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", filepath.Join(config.ConfigDir(), config.FileName))
		return nil
	}
	if err := cfg.SaveTo(args[0]); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", args[0])
	return nil
}

func cmdInfo(cfg *config.Config, args []string) error {
	path, err := objPath(cfg, args)
	if err != nil {
		return err
	}

	res, warnings, err := wavefront.LoadFile(path, wavefront.Options{
		MTLBaseDir: cfg.Import.MTLBaseDir,
		Charset:    cfg.Import.Charset,
	})
	if err != nil {
		return err
	}

	fmt.Printf("File:      %s\n", path)
	fmt.Printf("Positions: %d\n", len(res.Positions))
	fmt.Printf("Normals:   %d\n", len(res.Normals))
	fmt.Printf("TexCoords: %d\n", len(res.TexCoords))
	fmt.Printf("Colors:    %d\n", len(res.Colors))
	fmt.Printf("Faces:     %d\n", res.FaceCount())
	fmt.Println()

	fmt.Printf("Shapes (%d):\n", len(res.Shapes))
	for _, s := range res.Shapes {
		material := "(none)"
		if id := s.Faces[0].Material; id >= 0 {
			material = res.Materials[id].Name
		}
		fmt.Printf("  %-24s %6d faces  %s\n", s.Name, len(s.Faces), material)
	}

	fmt.Printf("Materials (%d):\n", len(res.Materials))
	for _, m := range res.Materials {
		tex := m.DiffuseTexture()
		if tex == "" {
			tex = "(no texture)"
		}
		fmt.Printf("  %-24s %s\n", m.Name, tex)
	}

	if len(warnings) > 0 {
		fmt.Printf("Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("  %s\n", w)
		}
	}
	return nil
}

func cmdPNG(cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: meshport png <image> <out.png>")
	}

	img, err := texture.FileLoader{MaxSize: cfg.Export.MaxTextureSize}.Load(args[0])
	if err != nil {
		return err
	}
	data, err := pngcodec.EncodePNG(img)
	if err != nil {
		return err
	}
	err = wavefront.WriteFile(args[1], "", func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %s (%dx%d)\n", args[1], img.Width, img.Height)
	return nil
}

func printMesh(w io.Writer, m *mesh.IndexedMesh) {
	stats := mesh.ComputeStats(m)
	fmt.Fprintf(w, "Mesh:      %s\n", m.Name)
	fmt.Fprintf(w, "Vertices:  %d\n", stats.Vertices)
	fmt.Fprintf(w, "Instances: %d\n", stats.Instances)
	fmt.Fprintf(w, "Triangles: %d\n", stats.Triangles)
	fmt.Fprintf(w, "Bounds:    %v - %v\n", stats.Bounds.Min, stats.Bounds.Max)
	fmt.Fprintf(w, "Groups:    %d\n", stats.Groups)
	for _, g := range m.Groups {
		name := g.Material.Name
		if name == "" {
			name = "(unresolved)"
		}
		fmt.Fprintf(w, "  %-24s %6d triangles\n", name, len(g.Triangles))
	}
}

func printDiagnostics(diags []error) {
	if len(diags) == 0 {
		return
	}
	fmt.Printf("Diagnostics (%d):\n", len(diags))
	for _, d := range diags {
		fmt.Printf("  %v\n", d)
	}
}
