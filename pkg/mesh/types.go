// Package mesh holds the indexed mesh representation exchanged with the host
// and the flat per-corner triangle soup used for text serialisation.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshport/pkg/math"
)

// Mesh validation errors.
var (
	ErrVertexIndex   = errors.New("vertex instance references a missing vertex")
	ErrInstanceIndex = errors.New("triangle references a missing vertex instance")
)

// Vertex is a unique position shared by any number of vertex instances.
type Vertex struct {
	Position math.Vec3
}

// VertexInstance is the attribute bundle of one triangle corner.
type VertexInstance struct {
	VertexIndex int
	Normal      math.Vec3
	UV          math.Vec2
	Color       math.Vec4
}

// Triangle references three vertex instances by index, in winding order.
type Triangle struct {
	Corners [3]int
}

// MaterialRef names the material bound to a polygon group. An empty name means
// the material could not be resolved.
type MaterialRef struct {
	Name string
}

// PolygonGroup is a set of triangles sharing one material.
type PolygonGroup struct {
	Material  MaterialRef
	Triangles []Triangle
}

// IndexedMesh is the indexed mesh description: unique positions, per-corner
// instances, and polygon groups. Instances are never shared between triangles.
type IndexedMesh struct {
	Name      string
	Vertices  []Vertex
	Instances []VertexInstance
	Groups    []PolygonGroup
}

// Channel keys used in material bindings and MTL files.
const (
	ChannelBaseColor = "map_Ka"
	ChannelDiffuse   = "map_Kd"
	ChannelNormal    = "bump"
)

// MaterialBinding is a resolved material: its name and texture file per channel key.
// Textures names the host texture installed for each channel. When it is nil,
// hosts derive texture names from TextureFiles instead.
type MaterialBinding struct {
	Name         string
	TextureFiles map[string]string
	Textures     map[string]string
}

// Texture returns the file bound to channel, or "".
func (b MaterialBinding) Texture(channel string) string {
	if b.TextureFiles == nil {
		return ""
	}
	return b.TextureFiles[channel]
}

// TriangleCount returns the number of triangles across all groups.
func (m *IndexedMesh) TriangleCount() int {
	n := 0
	for _, g := range m.Groups {
		n += len(g.Triangles)
	}
	return n
}

// Corner returns the instance at corner c of triangle t.
func (m *IndexedMesh) Corner(t Triangle, c int) VertexInstance {
	return m.Instances[t.Corners[c]]
}

// Validate checks that every triangle and instance index is in range.
func (m *IndexedMesh) Validate() error {
	for i, inst := range m.Instances {
		if inst.VertexIndex < 0 || inst.VertexIndex >= len(m.Vertices) {
			return fmt.Errorf("%w: instance %d -> vertex %d (have %d)", ErrVertexIndex, i, inst.VertexIndex, len(m.Vertices))
		}
	}
	for gi, g := range m.Groups {
		for ti, t := range g.Triangles {
			for _, c := range t.Corners {
				if c < 0 || c >= len(m.Instances) {
					return fmt.Errorf("%w: group %d triangle %d -> instance %d", ErrInstanceIndex, gi, ti, c)
				}
			}
		}
	}
	return nil
}
