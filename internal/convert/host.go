// Package convert runs the export and import pipelines between a host scene
// and Wavefront OBJ/MTL files with PNG textures.
//
// The host is reached only through the interfaces in this file. Exporting
// reads a mesh from a SceneMeshProvider and its textures from a
// TextureProvider; importing hands the rebuilt mesh to a MeshSink and decoded
// textures to a TextureSink.
package convert

import (
	"github.com/Faultbox/meshport/pkg/mesh"
	"github.com/Faultbox/meshport/pkg/pngcodec"
)

// SceneMeshProvider returns a snapshot of a named scene mesh, or an error
// wrapping ErrMeshNotFound.
type SceneMeshProvider interface {
	Mesh(name string) (*mesh.IndexedMesh, error)
}

// TextureHandle is one texture bound to a material channel.
type TextureHandle interface {
	// Name identifies the texture. Equal names mean the same pixels.
	Name() string
	// Acquire locks the pixel buffer for reading. The image must not be used
	// after release is called, and release must be called exactly once.
	Acquire() (img *pngcodec.RawImage, release func(), err error)
}

// TextureProvider lists the textures bound to a material channel, in
// priority order.
type TextureProvider interface {
	Textures(material, channel string) []TextureHandle
}

// MeshSink installs a rebuilt mesh and its material bindings into the host.
type MeshSink interface {
	InstallMesh(name string, m *mesh.IndexedMesh, bindings []mesh.MaterialBinding) error
}

// TextureSink installs a decoded texture into the host.
type TextureSink interface {
	InstallTexture(name string, img *pngcodec.RawImage) error
}

// TextureLoader decodes the texture a material file refers to.
type TextureLoader interface {
	Load(ref string) (*pngcodec.RawImage, error)
}

// TextureLoaderFunc adapts a function to TextureLoader.
type TextureLoaderFunc func(ref string) (*pngcodec.RawImage, error)

// Load calls f(ref).
func (f TextureLoaderFunc) Load(ref string) (*pngcodec.RawImage, error) {
	return f(ref)
}

// acquire runs fn with the locked pixels of h and always releases them.
func acquire(h TextureHandle, fn func(*pngcodec.RawImage) error) error {
	img, release, err := h.Acquire()
	if err != nil {
		return err
	}
	defer release()
	return fn(img)
}
