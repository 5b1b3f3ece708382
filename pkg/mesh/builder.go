package mesh

import "github.com/Faultbox/meshport/pkg/math"

// Builder appends vertices, instances, and triangles to an IndexedMesh.
type Builder struct {
	mesh *IndexedMesh
}

// NewBuilder starts an empty mesh with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{mesh: &IndexedMesh{Name: name}}
}

// AppendVertex adds a position and returns its index.
func (b *Builder) AppendVertex(p math.Vec3) int {
	b.mesh.Vertices = append(b.mesh.Vertices, Vertex{Position: p})
	return len(b.mesh.Vertices) - 1
}

// AppendPolygonGroup adds an empty group and returns its index.
func (b *Builder) AppendPolygonGroup(material MaterialRef) int {
	b.mesh.Groups = append(b.mesh.Groups, PolygonGroup{Material: material})
	return len(b.mesh.Groups) - 1
}

// AppendTriangle creates one new instance per corner and a triangle over them
// in group. Corners are never shared with earlier triangles.
func (b *Builder) AppendTriangle(group int, corners [3]VertexInstance) {
	var t Triangle
	for i, c := range corners {
		b.mesh.Instances = append(b.mesh.Instances, c)
		t.Corners[i] = len(b.mesh.Instances) - 1
	}
	g := &b.mesh.Groups[group]
	g.Triangles = append(g.Triangles, t)
}

// Mesh returns the mesh built so far.
func (b *Builder) Mesh() *IndexedMesh {
	return b.mesh
}
