package convert

import (
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshport/pkg/encoding"
	"github.com/Faultbox/meshport/pkg/mesh"
	"github.com/Faultbox/meshport/pkg/pngcodec"
	"github.com/Faultbox/meshport/pkg/wavefront"
)

// ExportChannels are the material channels written on export, in order.
var ExportChannels = []string{mesh.ChannelBaseColor, mesh.ChannelNormal}

// TextureName derives a texture identifier from a material file reference:
// the base name without extension.
func TextureName(ref string) string {
	base := path.Base(encoding.NormalizePath(ref))
	return strings.TrimSuffix(base, path.Ext(base))
}

// TextureFileName returns the exported PNG file name for a texture name.
// Characters that are unsafe in file names become underscores.
func TextureFileName(texture string) string {
	var b strings.Builder
	for _, r := range texture {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := strings.Trim(b.String(), ".")
	if name == "" {
		name = "texture"
	}
	return name + ".png"
}

// MaterialResolver turns polygon group materials into bindings, writing each
// referenced texture to dir as PNG. Only the first texture of each channel is
// exported. A texture shared by several groups is written once.
type MaterialResolver struct {
	meshName string
	dir      string
	textures TextureProvider
	maxSize  int
	report   *Report
	log      *zap.Logger

	files   map[string]string // texture name -> file name, "" after a failure
	owners  map[string]string // file name -> texture name
	written []string
}

// NewMaterialResolver creates a resolver for one export. textures may be nil,
// in which case bindings carry names only.
func NewMaterialResolver(meshName, dir string, textures TextureProvider, maxSize int, report *Report) *MaterialResolver {
	return &MaterialResolver{
		meshName: meshName,
		dir:      dir,
		textures: textures,
		maxSize:  maxSize,
		report:   report,
		log:      report.log,
		files:    make(map[string]string),
		owners:   make(map[string]string),
	}
}

// Resolve returns the binding for group. An unnamed material yields an empty
// binding and a diagnostic; the writer emits it under the mesh name.
func (r *MaterialResolver) Resolve(group mesh.PolygonGroup) mesh.MaterialBinding {
	name := group.Material.Name
	binding := mesh.MaterialBinding{Name: name, TextureFiles: make(map[string]string)}
	if name == "" {
		r.report.Add(&ResolutionError{Mesh: r.meshName, Err: ErrUnresolvedMaterial})
		return binding
	}
	if r.textures == nil {
		return binding
	}

	for _, channel := range ExportChannels {
		handles := r.textures.Textures(name, channel)
		if len(handles) == 0 {
			continue
		}
		if len(handles) > 1 {
			r.log.Debug("exporting first texture only",
				zap.String("material", name),
				zap.String("channel", channel),
				zap.Int("textures", len(handles)),
			)
		}
		if file := r.export(name, channel, handles[0]); file != "" {
			binding.TextureFiles[channel] = file
		}
	}
	return binding
}

// Written returns the paths of the PNG files written so far.
func (r *MaterialResolver) Written() []string {
	return r.written
}

// export writes h once per resolver and returns its file name, or "" when the
// texture could not be exported.
func (r *MaterialResolver) export(material, channel string, h TextureHandle) string {
	texName := h.Name()
	if file, ok := r.files[texName]; ok {
		return file
	}

	file := r.claim(texName)
	full := filepath.Join(r.dir, file)
	err := acquire(h, func(img *pngcodec.RawImage) error {
		img, err := pngcodec.Resize(img, r.maxSize)
		if err != nil {
			return err
		}
		data, err := pngcodec.EncodePNG(img)
		if err != nil {
			return err
		}
		return wavefront.WriteFile(full, "", func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		})
	})
	if err != nil {
		r.files[texName] = ""
		r.report.Add(&ResolutionError{
			Mesh:     r.meshName,
			Material: material,
			Channel:  channel,
			Texture:  texName,
			Err:      err,
		})
		return ""
	}

	r.files[texName] = file
	r.written = append(r.written, full)
	r.log.Debug("wrote texture", zap.String("texture", texName), zap.String("path", full))
	return file
}

// claim picks a file name for texName that no other texture of this export
// uses.
func (r *MaterialResolver) claim(texName string) string {
	file := TextureFileName(texName)
	base := strings.TrimSuffix(file, ".png")
	for i := 2; ; i++ {
		owner, taken := r.owners[file]
		if !taken || owner == texName {
			break
		}
		file = fmt.Sprintf("%s_%d.png", base, i)
	}
	r.owners[file] = texName
	return file
}
