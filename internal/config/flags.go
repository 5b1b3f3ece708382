package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagOut         = flag.String("out", "", "Export output directory")
	flagIn          = flag.String("in", "", "Import input directory")
	flagMesh        = flag.String("mesh", "", "Mesh name used for exported file names")
	flagOBJ         = flag.String("obj", "", "OBJ file to import")
	flagScene       = flag.String("scene", "", "Directory of OBJ files loaded into the scene")
	flagScale       = flag.Float64("scale", 0, "Position scale applied on import")
	flagFlipNormals = flag.Bool("flip-normals", false, "Negate normals on import")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments: the command and its operands.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagOut != "" {
		cfg.Export.OutputDir = *flagOut
	}
	if *flagIn != "" {
		cfg.Import.InputDir = *flagIn
	}
	if *flagMesh != "" {
		cfg.Export.MeshName = *flagMesh
	}
	if *flagOBJ != "" {
		cfg.Import.OBJFile = *flagOBJ
	}
	if *flagScene != "" {
		cfg.Scene.Dir = *flagScene
	}
	if *flagScale > 0 {
		cfg.Import.PositionScale = float32(*flagScale)
	}
	if *flagFlipNormals {
		cfg.Import.FlipNormals = true
	}
}
