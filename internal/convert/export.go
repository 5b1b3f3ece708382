package convert

import (
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/meshport/internal/logger"
	"github.com/Faultbox/meshport/pkg/mesh"
	"github.com/Faultbox/meshport/pkg/wavefront"
)

// ExportOptions configures an Exporter.
type ExportOptions struct {
	OutputDir      string
	MTL            wavefront.MTLOptions
	MaxTextureSize int    // 0 keeps source size
	Charset        string // OBJ/MTL text encoding, empty for UTF-8
}

// DefaultExportOptions writes UTF-8 files with the default MTL coefficients
// into dir.
func DefaultExportOptions(dir string) ExportOptions {
	return ExportOptions{OutputDir: dir, MTL: wavefront.DefaultMTLOptions()}
}

// ExportResult lists the files an export produced.
type ExportResult struct {
	OBJPath      string
	MTLPath      string
	TextureFiles []string
	Bindings     []mesh.MaterialBinding
	Stats        mesh.Stats
	Diagnostics  []error
}

// Exporter writes scene meshes as OBJ + MTL + PNG files.
type Exporter struct {
	scene    SceneMeshProvider
	textures TextureProvider
	opts     ExportOptions
	log      *zap.Logger
}

// NewExporter creates an exporter reading from scene and textures.
func NewExporter(scene SceneMeshProvider, textures TextureProvider, opts ExportOptions) *Exporter {
	return &Exporter{
		scene:    scene,
		textures: textures,
		opts:     opts,
		log:      logger.Named("export"),
	}
}

// Export writes mesh meshName to <OutputDir>/<meshName>.obj and .mtl.
func (e *Exporter) Export(meshName string) (*ExportResult, error) {
	return e.ExportAs(meshName, meshName)
}

// ExportAs writes scene mesh meshName under the file base name fileName.
// Textures are written first, then the MTL, then the OBJ, so an OBJ on disk
// always has its materials. Texture failures are diagnostics; failing to
// write the MTL or OBJ aborts the export.
func (e *Exporter) ExportAs(meshName, fileName string) (*ExportResult, error) {
	m, err := e.scene.Mesh(meshName)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", meshName, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("export %s: %w", meshName, err)
	}

	log := e.log.With(zap.String("mesh", meshName))
	stats := mesh.ComputeStats(m)
	log.Info("exporting mesh",
		zap.Int("vertices", stats.Vertices),
		zap.Int("instances", stats.Instances),
		zap.Int("triangles", stats.Triangles),
		zap.Int("groups", stats.Groups),
		zap.Stringer("min", stats.Bounds.Min),
		zap.Stringer("max", stats.Bounds.Max),
	)

	report := NewReport(log)
	soup := mesh.Flatten(m)
	resolver := NewMaterialResolver(fileName, e.opts.OutputDir, e.textures, e.opts.MaxTextureSize, report)
	bindings := make([]mesh.MaterialBinding, len(m.Groups))
	for i, g := range m.Groups {
		bindings[i] = resolver.Resolve(g)
	}

	res := &ExportResult{
		OBJPath:      filepath.Join(e.opts.OutputDir, fileName+".obj"),
		MTLPath:      filepath.Join(e.opts.OutputDir, fileName+".mtl"),
		TextureFiles: resolver.Written(),
		Bindings:     bindings,
		Stats:        stats,
	}

	err = wavefront.WriteFile(res.MTLPath, e.opts.Charset, func(w io.Writer) error {
		return wavefront.WriteMTL(w, fileName, bindings, e.opts.MTL)
	})
	if err != nil {
		return nil, err
	}
	err = wavefront.WriteFile(res.OBJPath, e.opts.Charset, func(w io.Writer) error {
		return wavefront.WriteOBJ(w, fileName, soup)
	})
	if err != nil {
		return nil, err
	}

	res.Diagnostics = report.Diagnostics()
	log.Info("export complete",
		zap.String("obj", res.OBJPath),
		zap.Int("textures", len(res.TextureFiles)),
		zap.Int("diagnostics", report.Len()),
	)
	return res, nil
}
