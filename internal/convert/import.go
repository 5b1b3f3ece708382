package convert

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/meshport/internal/logger"
	"github.com/Faultbox/meshport/internal/texture"
	"github.com/Faultbox/meshport/pkg/mesh"
	"github.com/Faultbox/meshport/pkg/wavefront"
)

// ImportOptions configures an Importer.
type ImportOptions struct {
	// MTLBaseDir resolves mtllib and texture paths; empty means the OBJ's
	// directory.
	MTLBaseDir     string
	Charset        string
	MaxTextureSize int
	Build          BuildOptions
}

// DefaultImportOptions reads UTF-8 files with unchanged geometry.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{Build: DefaultBuildOptions()}
}

// ImportResult is what an import installed into the host.
type ImportResult struct {
	Mesh        *mesh.IndexedMesh
	Bindings    []mesh.MaterialBinding
	Textures    []string // installed texture names
	Diagnostics []error
}

// Importer reads OBJ files and installs the rebuilt meshes into the host.
// Texture names stay unique across every import run by one Importer. It is
// not safe for concurrent use.
type Importer struct {
	meshes   MeshSink
	textures TextureSink
	loader   TextureLoader
	opts     ImportOptions
	log      *zap.Logger

	texNames  map[string]string // resolved texture path -> installed name
	texOwners map[string]string // installed name -> resolved texture path
}

// NewImporter creates an importer. textures may be nil to drop decoded
// textures.
func NewImporter(meshes MeshSink, textures TextureSink, opts ImportOptions) *Importer {
	return &Importer{
		meshes:   meshes,
		textures: textures,
		opts:      opts,
		log:       logger.Named("import"),
		texNames:  make(map[string]string),
		texOwners: make(map[string]string),
	}
}

// WithLoader replaces the file system texture loader.
func (im *Importer) WithLoader(l TextureLoader) *Importer {
	im.loader = l
	return im
}

// Import parses objPath and installs it as meshName. Parse failures and
// sink failures abort; everything else is reported in Diagnostics.
func (im *Importer) Import(objPath, meshName string) (*ImportResult, error) {
	log := im.log.With(zap.String("mesh", meshName), zap.String("obj", objPath))
	report := NewReport(log)

	baseDir := im.opts.MTLBaseDir
	if baseDir == "" {
		baseDir = filepath.Dir(objPath)
	}
	parsed, warnings, err := wavefront.LoadFile(objPath, wavefront.Options{
		MTLBaseDir: baseDir,
		Charset:    im.opts.Charset,
	})
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		report.Warn(w)
	}

	loader := im.loader
	if loader == nil {
		loader = texture.FileLoader{BaseDir: baseDir, MaxSize: im.opts.MaxTextureSize}
	}
	m, materials := Build(meshName, parsed, loader, im.opts.Build, report)
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("import %s: %w", objPath, err)
	}

	res := &ImportResult{Mesh: m}
	installed := make(map[string]bool)
	resolve := texture.FileLoader{BaseDir: baseDir}
	for _, mat := range materials {
		if im.textures != nil {
			mat.Binding.Textures = make(map[string]string)
		}
		if mat.Diffuse == nil || im.textures == nil {
			res.Bindings = append(res.Bindings, mat.Binding)
			continue
		}
		name := im.textureName(resolve.Resolve(mat.DiffuseRef), mat.DiffuseRef, log)
		for channel, ref := range mat.Binding.TextureFiles {
			if ref == mat.DiffuseRef {
				mat.Binding.Textures[channel] = name
			}
		}
		res.Bindings = append(res.Bindings, mat.Binding)
		if installed[name] {
			continue
		}
		installed[name] = true
		if err := im.textures.InstallTexture(name, mat.Diffuse); err != nil {
			return nil, fmt.Errorf("import %s: install texture %s: %w", objPath, name, err)
		}
		res.Textures = append(res.Textures, name)
	}

	if err := im.meshes.InstallMesh(meshName, m, res.Bindings); err != nil {
		return nil, fmt.Errorf("import %s: install mesh: %w", objPath, err)
	}

	res.Diagnostics = report.Diagnostics()
	stats := mesh.ComputeStats(m)
	log.Info("import complete",
		zap.Int("vertices", stats.Vertices),
		zap.Int("triangles", stats.Triangles),
		zap.Int("groups", stats.Groups),
		zap.Int("textures", len(res.Textures)),
		zap.Int("diagnostics", report.Len()),
	)
	return res, nil
}

// textureName returns the host texture name for the file at path. Files
// sharing a base name get "_2", "_3", ... suffixes in the order they are
// first seen.
func (im *Importer) textureName(path, ref string, log *zap.Logger) string {
	if name, ok := im.texNames[path]; ok {
		return name
	}
	base := TextureName(ref)
	name := base
	for i := 2; ; i++ {
		if _, taken := im.texOwners[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s_%d", base, i)
	}
	if name != base {
		log.Debug("texture renamed", zap.String("path", path), zap.String("texture", name))
	}
	im.texNames[path] = name
	im.texOwners[name] = path
	return name
}
