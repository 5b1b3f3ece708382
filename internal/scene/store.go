// Package scene is an in-memory host for meshes, materials and textures. It
// backs the converter's provider and sink interfaces for the CLI and tests.
package scene

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Faultbox/meshport/internal/convert"
	"github.com/Faultbox/meshport/pkg/mesh"
	"github.com/Faultbox/meshport/pkg/pngcodec"
)

// ErrTextureNotFound is returned when acquiring a texture the store does not hold.
var ErrTextureNotFound = errors.New("texture not found")

// textureEntry guards one pixel buffer. Acquire holds lock until release.
type textureEntry struct {
	lock sync.Mutex
	img  *pngcodec.RawImage
}

// Store holds named meshes, material bindings and textures. It is safe for
// concurrent use.
type Store struct {
	mu        sync.RWMutex
	meshes    map[string]*mesh.IndexedMesh
	materials map[string]mesh.MaterialBinding
	textures  map[string]*textureEntry

	// Stats
	hits   int
	misses int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		meshes:    make(map[string]*mesh.IndexedMesh),
		materials: make(map[string]mesh.MaterialBinding),
		textures:  make(map[string]*textureEntry),
	}
}

// Mesh returns a deep copy of the named mesh.
func (s *Store) Mesh(name string) (*mesh.IndexedMesh, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meshes[name]
	if !ok {
		s.misses++
		if len(s.meshes) == 0 {
			return nil, fmt.Errorf("%w: %s (scene is empty)", convert.ErrMeshNotFound, name)
		}
		return nil, fmt.Errorf("%w: %s (have %s)", convert.ErrMeshNotFound, name, strings.Join(s.meshNames(), ", "))
	}
	s.hits++
	return cloneMesh(m), nil
}

// MeshNames returns the installed mesh names, sorted.
func (s *Store) MeshNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meshNames()
}

func (s *Store) meshNames() []string {
	names := make([]string, 0, len(s.meshes))
	for n := range s.meshes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// InstallMesh stores m under name, replacing any previous mesh, and registers
// its material bindings by material name.
func (s *Store) InstallMesh(name string, m *mesh.IndexedMesh, bindings []mesh.MaterialBinding) error {
	if name == "" {
		return fmt.Errorf("install mesh: empty name")
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("install mesh %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.meshes[name] = cloneMesh(m)
	for _, b := range bindings {
		if b.Name != "" {
			s.materials[b.Name] = b
		}
	}
	return nil
}

// InstallTexture stores a copy of img under name. It waits for readers of a
// previous texture with the same name to release it.
func (s *Store) InstallTexture(name string, img *pngcodec.RawImage) error {
	if err := img.Validate(); err != nil {
		return fmt.Errorf("install texture %s: %w", name, err)
	}

	s.mu.Lock()
	e, ok := s.textures[name]
	if !ok {
		s.textures[name] = &textureEntry{img: img.Clone()}
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	e.lock.Lock()
	e.img = img.Clone()
	e.lock.Unlock()
	return nil
}

// Textures returns the texture bound to a material channel, if it is loaded.
// The base colour channel falls back from map_Ka to map_Kd, since imported
// materials usually carry a diffuse map.
func (s *Store) Textures(material, channel string) []convert.TextureHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.materials[material]
	if !ok {
		s.misses++
		return nil
	}
	name := boundTexture(b, channel)
	if name == "" && channel == mesh.ChannelBaseColor {
		name = boundTexture(b, mesh.ChannelDiffuse)
	}
	if name == "" {
		return nil
	}

	if _, ok := s.textures[name]; !ok {
		s.misses++
		return nil
	}
	s.hits++
	return []convert.TextureHandle{&textureHandle{store: s, name: name}}
}

// boundTexture returns the texture name b uses for channel. Bindings with
// installed texture names are authoritative; others derive the name from the
// texture file.
func boundTexture(b mesh.MaterialBinding, channel string) string {
	if b.Textures != nil {
		return b.Textures[channel]
	}
	if ref := b.Texture(channel); ref != "" {
		return convert.TextureName(ref)
	}
	return ""
}

// TextureNames returns the installed texture names, sorted.
func (s *Store) TextureNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.textures))
	for n := range s.textures {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Stats returns lookup statistics for meshes and textures.
func (s *Store) Stats() (hits, misses int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hits, s.misses
}

type textureHandle struct {
	store *Store
	name  string
}

func (h *textureHandle) Name() string {
	return h.name
}

// Acquire locks the texture's pixel buffer until release is called.
func (h *textureHandle) Acquire() (*pngcodec.RawImage, func(), error) {
	h.store.mu.RLock()
	e, ok := h.store.textures[h.name]
	h.store.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrTextureNotFound, h.name)
	}

	e.lock.Lock()
	var once sync.Once
	return e.img, func() { once.Do(e.lock.Unlock) }, nil
}

func cloneMesh(m *mesh.IndexedMesh) *mesh.IndexedMesh {
	out := &mesh.IndexedMesh{
		Name:      m.Name,
		Vertices:  append([]mesh.Vertex(nil), m.Vertices...),
		Instances: append([]mesh.VertexInstance(nil), m.Instances...),
		Groups:    make([]mesh.PolygonGroup, len(m.Groups)),
	}
	for i, g := range m.Groups {
		out.Groups[i] = mesh.PolygonGroup{
			Material:  g.Material,
			Triangles: append([]mesh.Triangle(nil), g.Triangles...),
		}
	}
	return out
}
