package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshport/pkg/math"
)

// quad builds two triangles over four positions in material "Wood", plus an
// empty group bound to "Unused".
func quad() *IndexedMesh {
	b := NewBuilder("Quad")
	for _, p := range []math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0}} {
		b.AppendVertex(p)
	}
	g := b.AppendPolygonGroup(MaterialRef{Name: "Wood"})
	up := math.Vec3{X: 0, Y: 0, Z: 1}
	inst := func(v int, u, w float32) VertexInstance {
		return VertexInstance{VertexIndex: v, Normal: up, UV: math.Vec2{X: u, Y: w}, Color: math.White}
	}
	b.AppendTriangle(g, [3]VertexInstance{inst(0, 0, 0), inst(1, 1, 0), inst(2, 1, 1)})
	b.AppendTriangle(g, [3]VertexInstance{inst(0, 0, 0), inst(2, 1, 1), inst(3, 0, 1)})
	b.AppendPolygonGroup(MaterialRef{Name: "Unused"})
	return b.Mesh()
}

func TestBuilderDoesNotShareInstances(t *testing.T) {
	m := quad()

	assert.Len(t, m.Vertices, 4)
	assert.Len(t, m.Instances, 6)
	assert.Equal(t, 2, m.TriangleCount())
	assert.Equal(t, [3]int{0, 1, 2}, m.Groups[0].Triangles[0].Corners)
	assert.Equal(t, [3]int{3, 4, 5}, m.Groups[0].Triangles[1].Corners)
	require.NoError(t, m.Validate())
}

func TestValidate(t *testing.T) {
	t.Run("bad vertex index", func(t *testing.T) {
		m := quad()
		m.Instances[2].VertexIndex = 9
		assert.ErrorIs(t, m.Validate(), ErrVertexIndex)
	})

	t.Run("bad instance index", func(t *testing.T) {
		m := quad()
		m.Groups[0].Triangles[1].Corners[2] = 42
		assert.ErrorIs(t, m.Validate(), ErrInstanceIndex)
	})
}

func TestFlatten(t *testing.T) {
	m := quad()
	soup := Flatten(m)

	require.Len(t, soup.Groups, 2)
	assert.Equal(t, "Wood", soup.Groups[0].Material.Name)
	assert.Equal(t, 6, soup.CornerCount())

	// Corner order follows each triangle's instance order.
	want := []math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0}}
	for i, c := range soup.Groups[0].Corners {
		assert.Equal(t, want[i], c.Position, "corner %d", i)
		assert.Equal(t, math.Vec3{X: 0, Y: 0, Z: 1}, c.Normal)
	}
	assert.Equal(t, math.Vec2{X: 0, Y: 1}, soup.Groups[0].Corners[5].UV)
}

func TestFlattenKeepsEmptyGroups(t *testing.T) {
	soup := Flatten(quad())

	require.Len(t, soup.Groups, 2)
	assert.Equal(t, "Unused", soup.Groups[1].Material.Name)
	assert.Empty(t, soup.Groups[1].Corners)
	for _, g := range soup.Groups {
		assert.Zero(t, len(g.Corners)%3)
	}
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats(quad())

	assert.Equal(t, 4, s.Vertices)
	assert.Equal(t, 6, s.Instances)
	assert.Equal(t, 2, s.Triangles)
	assert.Equal(t, 2, s.Groups)
	assert.Equal(t, math.Vec3{X: 0, Y: 0, Z: 0}, s.Bounds.Min)
	assert.Equal(t, math.Vec3{X: 1, Y: 1, Z: 0}, s.Bounds.Max)

	empty := ComputeStats(&IndexedMesh{})
	assert.Equal(t, Bounds{}, empty.Bounds)
}

func TestMaterialBindingTexture(t *testing.T) {
	var b MaterialBinding
	assert.Empty(t, b.Texture(ChannelBaseColor))

	b.TextureFiles = map[string]string{ChannelBaseColor: "wood.png"}
	assert.Equal(t, "wood.png", b.Texture(ChannelBaseColor))
	assert.Empty(t, b.Texture(ChannelNormal))
}
