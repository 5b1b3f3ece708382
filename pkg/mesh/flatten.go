package mesh

import "github.com/Faultbox/meshport/pkg/math"

// Corner is one flattened triangle corner.
type Corner struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
}

// SoupGroup holds the corners of one material slot; len(Corners) is a multiple of 3.
type SoupGroup struct {
	Material MaterialRef
	Corners  []Corner
}

// FlatTriangleSoup is the per-corner expansion of an IndexedMesh, one group per
// polygon group in mesh order.
type FlatTriangleSoup struct {
	Groups []SoupGroup
}

// CornerCount returns the total number of corners across groups.
func (s *FlatTriangleSoup) CornerCount() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g.Corners)
	}
	return n
}

// Flatten expands every triangle of m into three corner records, preserving
// group order and the instance order of each triangle. Groups without
// triangles are kept as empty groups. m must pass Validate.
func Flatten(m *IndexedMesh) *FlatTriangleSoup {
	soup := &FlatTriangleSoup{Groups: make([]SoupGroup, 0, len(m.Groups))}
	for _, g := range m.Groups {
		sg := SoupGroup{
			Material: g.Material,
			Corners:  make([]Corner, 0, len(g.Triangles)*3),
		}
		for _, t := range g.Triangles {
			for c := 0; c < 3; c++ {
				inst := m.Corner(t, c)
				sg.Corners = append(sg.Corners, Corner{
					Position: m.Vertices[inst.VertexIndex].Position,
					Normal:   inst.Normal,
					UV:       inst.UV,
				})
			}
		}
		soup.Groups = append(soup.Groups, sg)
	}
	return soup
}
