package convert

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshport/pkg/mesh"
	"github.com/Faultbox/meshport/pkg/pngcodec"
	"github.com/Faultbox/meshport/pkg/wavefront"
)

func TestTextureNames(t *testing.T) {
	assert.Equal(t, "wood", TextureName(`C:\textures\wood.tga`))
	assert.Equal(t, "Wood_D", TextureName("tex/Wood_D.png"))
	assert.Equal(t, "grain", TextureName("grain"))

	assert.Equal(t, "Wood_D.png", TextureFileName("Wood_D"))
	assert.Equal(t, "T_Rock_01_Base_Color.png", TextureFileName("T_Rock 01/Base Color"))
	assert.Equal(t, "texture.png", TextureFileName(""))
}

func TestResolverSharesTextureFiles(t *testing.T) {
	dir := t.TempDir()
	shared := solidImage(4, 4, [4]byte{10, 20, 30, 255})
	h1 := &fakeHandle{name: "Shared", img: shared}
	h2 := &fakeHandle{name: "Shared", img: shared}
	textures := fakeTextures{
		"A/" + mesh.ChannelBaseColor: {h1},
		"B/" + mesh.ChannelBaseColor: {h2},
	}

	report := NewReport(nil)
	r := NewMaterialResolver("Mesh", dir, textures, 0, report)
	a := r.Resolve(mesh.PolygonGroup{Material: mesh.MaterialRef{Name: "A"}})
	b := r.Resolve(mesh.PolygonGroup{Material: mesh.MaterialRef{Name: "B"}})

	assert.Equal(t, "Shared.png", a.Texture(mesh.ChannelBaseColor))
	assert.Equal(t, "Shared.png", b.Texture(mesh.ChannelBaseColor))
	assert.Equal(t, 1, h1.acquired+h2.acquired, "shared texture encoded once")
	assert.Equal(t, h1.acquired, h1.released)
	assert.Zero(t, report.Len())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, []string{filepath.Join(dir, "Shared.png")}, r.Written())
}

func TestResolverFirstTextureOnly(t *testing.T) {
	dir := t.TempDir()
	first := &fakeHandle{name: "First", img: solidImage(1, 1, [4]byte{255, 0, 0, 255})}
	second := &fakeHandle{name: "Second", img: solidImage(1, 1, [4]byte{0, 255, 0, 255})}
	normal := &fakeHandle{name: "Normal", img: solidImage(1, 1, [4]byte{128, 128, 255, 255})}
	textures := fakeTextures{
		"M/" + mesh.ChannelBaseColor: {first, second},
		"M/" + mesh.ChannelNormal:    {normal},
	}

	r := NewMaterialResolver("Mesh", dir, textures, 0, NewReport(nil))
	b := r.Resolve(mesh.PolygonGroup{Material: mesh.MaterialRef{Name: "M"}})

	assert.Equal(t, map[string]string{
		mesh.ChannelBaseColor: "First.png",
		mesh.ChannelNormal:    "Normal.png",
	}, b.TextureFiles)
	assert.Zero(t, second.acquired)
}

func TestResolverFileNameCollision(t *testing.T) {
	dir := t.TempDir()
	textures := fakeTextures{
		"A/" + mesh.ChannelBaseColor: {&fakeHandle{name: "wood grain", img: solidImage(1, 1, [4]byte{1, 1, 1, 255})}},
		"B/" + mesh.ChannelBaseColor: {&fakeHandle{name: "wood/grain", img: solidImage(1, 1, [4]byte{2, 2, 2, 255})}},
	}

	r := NewMaterialResolver("Mesh", dir, textures, 0, NewReport(nil))
	a := r.Resolve(mesh.PolygonGroup{Material: mesh.MaterialRef{Name: "A"}})
	b := r.Resolve(mesh.PolygonGroup{Material: mesh.MaterialRef{Name: "B"}})

	assert.Equal(t, "wood_grain.png", a.Texture(mesh.ChannelBaseColor))
	assert.Equal(t, "wood_grain_2.png", b.Texture(mesh.ChannelBaseColor))
}

func TestResolverFailures(t *testing.T) {
	dir := t.TempDir()
	broken := &fakeHandle{name: "Broken", img: &pngcodec.RawImage{Width: 2, Height: 2, Pixels: make([]byte, 3)}}
	locked := &fakeHandle{name: "Locked", err: errors.New("buffer busy")}
	textures := fakeTextures{
		"A/" + mesh.ChannelBaseColor: {broken},
		"B/" + mesh.ChannelNormal:    {locked},
	}

	report := NewReport(nil)
	r := NewMaterialResolver("Mesh", dir, textures, 0, report)

	empty := r.Resolve(mesh.PolygonGroup{})
	assert.Equal(t, "", empty.Name)
	assert.Empty(t, empty.TextureFiles)

	a := r.Resolve(mesh.PolygonGroup{Material: mesh.MaterialRef{Name: "A"}})
	assert.Empty(t, a.TextureFiles)
	assert.Equal(t, 1, broken.released, "pixels released after a failed encode")

	b := r.Resolve(mesh.PolygonGroup{Material: mesh.MaterialRef{Name: "B"}})
	assert.Empty(t, b.TextureFiles)

	// A failed texture is not retried.
	r.Resolve(mesh.PolygonGroup{Material: mesh.MaterialRef{Name: "A"}})
	assert.Equal(t, 1, broken.acquired)

	diags := report.Diagnostics()
	require.Len(t, diags, 3)
	assert.ErrorIs(t, diags[0], ErrUnresolvedMaterial)
	assert.ErrorIs(t, diags[1], pngcodec.ErrPixelLength)
	var re *ResolutionError
	require.ErrorAs(t, diags[2], &re)
	assert.Equal(t, "B", re.Material)
	assert.Equal(t, mesh.ChannelNormal, re.Channel)
	assert.Equal(t, "Locked", re.Texture)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResolverResizes(t *testing.T) {
	dir := t.TempDir()
	textures := fakeTextures{
		"A/" + mesh.ChannelBaseColor: {&fakeHandle{name: "Big", img: solidImage(64, 32, [4]byte{9, 9, 9, 255})}},
	}
	r := NewMaterialResolver("Mesh", dir, textures, 16, NewReport(nil))
	r.Resolve(mesh.PolygonGroup{Material: mesh.MaterialRef{Name: "A"}})

	data, err := os.ReadFile(filepath.Join(dir, "Big.png"))
	require.NoError(t, err)
	img, err := pngcodec.DecodePNG(data)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Width)
	assert.Equal(t, 8, img.Height)
}

func TestResolverResizeKeepsInvalidImagesFailing(t *testing.T) {
	dir := t.TempDir()
	textures := fakeTextures{
		"A/" + mesh.ChannelBaseColor: {&fakeHandle{name: "Empty", img: &pngcodec.RawImage{Width: 0, Height: 64}}},
		"B/" + mesh.ChannelBaseColor: {&fakeHandle{name: "Short", img: &pngcodec.RawImage{Width: 64, Height: 64, Pixels: make([]byte, 10)}}},
	}
	report := NewReport(nil)
	r := NewMaterialResolver("Mesh", dir, textures, 16, report)

	a := r.Resolve(mesh.PolygonGroup{Material: mesh.MaterialRef{Name: "A"}})
	b := r.Resolve(mesh.PolygonGroup{Material: mesh.MaterialRef{Name: "B"}})
	assert.Empty(t, a.TextureFiles)
	assert.Empty(t, b.TextureFiles)

	diags := report.Diagnostics()
	require.Len(t, diags, 2)
	var re *ResolutionError
	require.ErrorAs(t, diags[0], &re)
	assert.Equal(t, "Empty", re.Texture)
	assert.ErrorIs(t, diags[0], pngcodec.ErrEmptyImage)
	assert.ErrorIs(t, diags[1], pngcodec.ErrPixelLength)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	scene := fakeScene{"Crate": crate("Wood", "Metal", "")}
	textures := fakeTextures{
		"Wood/" + mesh.ChannelBaseColor:  {&fakeHandle{name: "Wood_D", img: solidImage(2, 2, [4]byte{120, 80, 40, 255})}},
		"Wood/" + mesh.ChannelNormal:     {&fakeHandle{name: "Wood_N", img: solidImage(2, 2, [4]byte{128, 128, 255, 255})}},
		"Metal/" + mesh.ChannelBaseColor: {&fakeHandle{name: "Wood_D", img: solidImage(2, 2, [4]byte{120, 80, 40, 255})}},
	}

	res, err := NewExporter(scene, textures, DefaultExportOptions(dir)).Export("Crate")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "Crate.obj"), res.OBJPath)
	assert.Equal(t, filepath.Join(dir, "Crate.mtl"), res.MTLPath)
	assert.Len(t, res.TextureFiles, 2)
	assert.Equal(t, 6, res.Stats.Triangles)
	require.Len(t, res.Diagnostics, 1)
	assert.ErrorIs(t, res.Diagnostics[0], ErrUnresolvedMaterial)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4, "obj, mtl and two textures")

	mtl, err := os.ReadFile(res.MTLPath)
	require.NoError(t, err)
	assert.Contains(t, string(mtl), "newmtl Wood\n")
	assert.Contains(t, string(mtl), "map_Ka Wood_D.png\n")
	assert.Contains(t, string(mtl), "bump Wood_N.png\n")
	assert.Contains(t, string(mtl), "newmtl Crate\n")

	obj, err := os.ReadFile(res.OBJPath)
	require.NoError(t, err)
	text := string(obj)
	assert.True(t, strings.HasPrefix(text, wavefront.Header+"Crate\n"))
	assert.Contains(t, text, "mtllib Crate.mtl\n")
	assert.Contains(t, text, "usemtl Metal\n")
	assert.Contains(t, text, "f 16/16/16 17/17/17 18/18/18\n")
	assert.Equal(t, 6, strings.Count(text, "\nf "))
}

func TestExportAsAndCharset(t *testing.T) {
	dir := t.TempDir()
	scene := fakeScene{"Crate": crate("Bois é")}
	opts := DefaultExportOptions(dir)
	opts.Charset = "windows-1252"
	opts.MTL = wavefront.MTLOptions{}

	res, err := NewExporter(scene, nil, opts).ExportAs("Crate", "box")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "box.obj"), res.OBJPath)

	mtl, err := os.ReadFile(res.MTLPath)
	require.NoError(t, err)
	assert.Equal(t, "# Exported by meshport: box\n\nnewmtl Bois \xe9\n", string(mtl))
}

func TestExportErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewExporter(fakeScene{}, nil, DefaultExportOptions(dir)).Export("Missing")
	assert.ErrorIs(t, err, ErrMeshNotFound)

	bad := crate("A")
	bad.Instances[0].VertexIndex = 99
	_, err = NewExporter(fakeScene{"Bad": bad}, nil, DefaultExportOptions(dir)).Export("Bad")
	assert.ErrorIs(t, err, mesh.ErrVertexIndex)

	// The output directory is a file.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	_, err = NewExporter(fakeScene{"Crate": crate("A")}, nil, DefaultExportOptions(blocker)).Export("Crate")
	var ioErr *IOError
	assert.ErrorAs(t, err, &ioErr)
}
