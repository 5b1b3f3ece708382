package mesh

import "github.com/Faultbox/meshport/pkg/math"

// Bounds holds the axis-aligned bounding box of the mesh.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Stats summarises a mesh for logging.
type Stats struct {
	Vertices  int
	Instances int
	Triangles int
	Groups    int
	Bounds    Bounds
}

// ComputeStats returns counts and bounds of m. Bounds are zero for a mesh
// without vertices.
func ComputeStats(m *IndexedMesh) Stats {
	s := Stats{
		Vertices:  len(m.Vertices),
		Instances: len(m.Instances),
		Triangles: m.TriangleCount(),
		Groups:    len(m.Groups),
	}
	for i, v := range m.Vertices {
		if i == 0 {
			s.Bounds = Bounds{Min: v.Position, Max: v.Position}
			continue
		}
		s.Bounds.Min = s.Bounds.Min.Min(v.Position)
		s.Bounds.Max = s.Bounds.Max.Max(v.Position)
	}
	return s
}
