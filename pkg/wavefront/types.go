// Package wavefront reads and writes Wavefront OBJ geometry and MTL material
// libraries. Only the subset needed for triangle meshes is supported: v, vn,
// vt, g, o, usemtl, mtllib and f, plus the common MTL colour and texture
// statements.
package wavefront

import (
	"github.com/Faultbox/meshport/pkg/math"
	"github.com/Faultbox/meshport/pkg/mesh"
)

// Index is one face corner: 0-based indices into Result.Positions,
// Result.Normals and Result.TexCoords. Normal and TexCoord are -1 when absent.
type Index struct {
	Vertex   int
	Normal   int
	TexCoord int
}

// Face is a triangle. Material is an index into Result.Materials or -1.
type Face struct {
	Corners  [3]Index
	Material int

	line int
}

// Shape is a named run of faces started by a "g" or "o" statement.
type Shape struct {
	Name  string
	Faces []Face
}

// MaterialIDs returns the material index of every face, in order.
func (s Shape) MaterialIDs() []int {
	ids := make([]int, len(s.Faces))
	for i, f := range s.Faces {
		ids[i] = f.Material
	}
	return ids
}

// Material is one newmtl block.
type Material struct {
	Name      string
	Ambient   math.Vec3
	Diffuse   math.Vec3
	Specular  math.Vec3
	Shininess float32
	Dissolve  float32
	Illum     int
	// Textures maps a channel key (map_Kd, map_Ka, bump, ...) to the path as
	// written in the file.
	Textures map[string]string
}

// DiffuseTexture returns the diffuse map, falling back to the ambient map,
// which is where this package's writer stores base colour.
func (m Material) DiffuseTexture() string {
	if t := m.Textures[mesh.ChannelDiffuse]; t != "" {
		return t
	}
	return m.Textures[mesh.ChannelBaseColor]
}

// Result is a decoded OBJ file with its materials.
type Result struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	TexCoords []math.Vec2
	// Colors holds one RGB colour per position when any "v" line carried a
	// colour, and is empty otherwise. Vertices without a colour are white.
	Colors       []math.Vec3
	Shapes       []Shape
	Materials    []Material
	MaterialLibs []string
}

// FaceCount returns the number of faces across shapes.
func (r *Result) FaceCount() int {
	n := 0
	for _, s := range r.Shapes {
		n += len(s.Faces)
	}
	return n
}
