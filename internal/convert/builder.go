package convert

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshport/pkg/math"
	"github.com/Faultbox/meshport/pkg/mesh"
	"github.com/Faultbox/meshport/pkg/pngcodec"
	"github.com/Faultbox/meshport/pkg/wavefront"
)

// BuildOptions adjusts geometry while rebuilding a mesh.
type BuildOptions struct {
	FlipNormals   bool    // negate every normal
	PositionScale float32 // uniform position scale; 0 means 1
	VertexColors  bool    // use "v x y z r g b" colours when present
}

// DefaultBuildOptions keeps geometry unchanged and uses vertex colours.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{PositionScale: 1, VertexColors: true}
}

// MaterialInstance is a material created once per build and shared by every
// shape that references the same name.
type MaterialInstance struct {
	Binding mesh.MaterialBinding
	// DiffuseRef is the diffuse texture reference from the MTL, or "".
	DiffuseRef string
	// Diffuse holds the decoded diffuse texture, nil when absent or when
	// loading failed.
	Diffuse *pngcodec.RawImage
}

// Build reconstructs an indexed mesh from parsed OBJ data.
//
// Each shape becomes one polygon group whose material is that of the shape's
// first face. Each face becomes one triangle with three fresh vertex
// instances. Materials are created once per name; the first creation loads
// the diffuse texture through loader (nil skips loading). Texture failures
// are added to report and leave the material untextured.
func Build(name string, res *wavefront.Result, loader TextureLoader, opts BuildOptions, report *Report) (*mesh.IndexedMesh, []MaterialInstance) {
	b := mesh.NewBuilder(name)

	scale := opts.PositionScale
	if scale == 0 {
		scale = 1
	}
	xf := mgl32.Scale3D(scale, scale, scale)
	for _, p := range res.Positions {
		if scale != 1 {
			p = p.Transform(xf)
		}
		b.AppendVertex(p)
	}

	var instances []MaterialInstance
	byName := make(map[string]int)
	for _, shape := range res.Shapes {
		matName := ""
		if len(shape.Faces) > 0 {
			if id := shape.Faces[0].Material; id >= 0 && id < len(res.Materials) {
				matName = res.Materials[id].Name
				if _, ok := byName[matName]; !ok {
					byName[matName] = len(instances)
					instances = append(instances, newMaterialInstance(name, res.Materials[id], loader, report))
				}
			}
		}

		g := b.AppendPolygonGroup(mesh.MaterialRef{Name: matName})
		for _, f := range shape.Faces {
			var corners [3]mesh.VertexInstance
			for i, c := range f.Corners {
				corners[i] = vertexInstance(res, c, opts)
			}
			b.AppendTriangle(g, corners)
		}
	}
	return b.Mesh(), instances
}

func vertexInstance(res *wavefront.Result, c wavefront.Index, opts BuildOptions) mesh.VertexInstance {
	inst := mesh.VertexInstance{VertexIndex: c.Vertex, Color: math.White}
	if c.Normal >= 0 {
		inst.Normal = res.Normals[c.Normal]
		if opts.FlipNormals {
			inst.Normal = inst.Normal.Neg()
		}
	}
	if c.TexCoord >= 0 {
		inst.UV = res.TexCoords[c.TexCoord].FlipV()
	}
	if opts.VertexColors && c.Vertex < len(res.Colors) {
		inst.Color = math.Opaque(res.Colors[c.Vertex])
	}
	return inst
}

func newMaterialInstance(meshName string, m wavefront.Material, loader TextureLoader, report *Report) MaterialInstance {
	inst := MaterialInstance{
		Binding:    mesh.MaterialBinding{Name: m.Name, TextureFiles: make(map[string]string, len(m.Textures))},
		DiffuseRef: m.DiffuseTexture(),
	}
	for k, v := range m.Textures {
		inst.Binding.TextureFiles[k] = v
	}
	if inst.DiffuseRef == "" || loader == nil {
		return inst
	}

	img, err := loader.Load(inst.DiffuseRef)
	if err != nil {
		report.Add(&ResolutionError{
			Mesh:     meshName,
			Material: m.Name,
			Channel:  mesh.ChannelDiffuse,
			Texture:  inst.DiffuseRef,
			Err:      err,
		})
		return inst
	}
	inst.Diffuse = img
	return inst
}
