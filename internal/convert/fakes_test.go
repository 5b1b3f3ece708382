package convert

import (
	"github.com/Faultbox/meshport/pkg/math"
	"github.com/Faultbox/meshport/pkg/mesh"
	"github.com/Faultbox/meshport/pkg/pngcodec"
)

type fakeScene map[string]*mesh.IndexedMesh

func (f fakeScene) Mesh(name string) (*mesh.IndexedMesh, error) {
	m, ok := f[name]
	if !ok {
		return nil, ErrMeshNotFound
	}
	return m, nil
}

type fakeHandle struct {
	name     string
	img      *pngcodec.RawImage
	err      error
	acquired int
	released int
}

func (h *fakeHandle) Name() string { return h.name }

func (h *fakeHandle) Acquire() (*pngcodec.RawImage, func(), error) {
	if h.err != nil {
		return nil, nil, h.err
	}
	h.acquired++
	return h.img, func() { h.released++ }, nil
}

// fakeTextures is keyed by "material/channel".
type fakeTextures map[string][]TextureHandle

func (f fakeTextures) Textures(material, channel string) []TextureHandle {
	return f[material+"/"+channel]
}

type fakeSink struct {
	meshes   map[string]*mesh.IndexedMesh
	bindings map[string][]mesh.MaterialBinding
	textures map[string]*pngcodec.RawImage
}

func newFakeSink() *fakeSink {
	return &fakeSink{
		meshes:   make(map[string]*mesh.IndexedMesh),
		bindings: make(map[string][]mesh.MaterialBinding),
		textures: make(map[string]*pngcodec.RawImage),
	}
}

func (s *fakeSink) InstallMesh(name string, m *mesh.IndexedMesh, b []mesh.MaterialBinding) error {
	s.meshes[name] = m
	s.bindings[name] = b
	return nil
}

func (s *fakeSink) InstallTexture(name string, img *pngcodec.RawImage) error {
	s.textures[name] = img
	return nil
}

func solidImage(w, h int, c [4]byte) *pngcodec.RawImage {
	img := pngcodec.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// crate builds a mesh with one quad per material name given.
func crate(materials ...string) *mesh.IndexedMesh {
	b := mesh.NewBuilder("Crate")
	for _, p := range []math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0}} {
		b.AppendVertex(p)
	}
	up := math.Vec3{X: 0, Y: 0, Z: 1}
	inst := func(v int, u, w float32) mesh.VertexInstance {
		return mesh.VertexInstance{VertexIndex: v, Normal: up, UV: math.Vec2{X: u, Y: w}, Color: math.White}
	}
	for _, name := range materials {
		g := b.AppendPolygonGroup(mesh.MaterialRef{Name: name})
		b.AppendTriangle(g, [3]mesh.VertexInstance{inst(0, 0, 0), inst(1, 1, 0), inst(2, 1, 1)})
		b.AppendTriangle(g, [3]mesh.VertexInstance{inst(0, 0, 0), inst(2, 1, 1), inst(3, 0, 1)})
	}
	return b.Mesh()
}
