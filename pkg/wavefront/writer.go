package wavefront

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/Faultbox/meshport/pkg/encoding"
	"github.com/Faultbox/meshport/pkg/math"
	"github.com/Faultbox/meshport/pkg/mesh"
)

// Header is written as the first comment line of every OBJ and MTL file.
const Header = "# Exported by meshport: "

// MaterialName returns name, or the mesh name when the material is unresolved.
func MaterialName(meshName, name string) string {
	if name == "" {
		return meshName
	}
	return name
}

// WriteOBJ serialises soup as an OBJ document referencing <meshName>.mtl.
//
// Each group is written as "g", its v, vn and vt lines, "usemtl", then one "f"
// per triangle. Corner N (0-based, counted across the whole soup) is written as
// index N+1 for position, normal and texture coordinate alike. Texture V is
// stored flipped (1-v).
func WriteOBJ(w io.Writer, meshName string, soup *mesh.FlatTriangleSoup) error {
	bw := bufio.NewWriter(w)
	p := func(format string, args ...any) {
		fmt.Fprintf(bw, format+"\n", args...)
	}

	p("%s%s", Header, meshName)
	p("")
	p("mtllib %s.mtl", meshName)

	base := 0
	for _, g := range soup.Groups {
		name := MaterialName(meshName, g.Material.Name)
		p("g %s", name)
		p("")
		for _, c := range g.Corners {
			p("v %s %s %s", ftoa(c.Position.X), ftoa(c.Position.Y), ftoa(c.Position.Z))
		}
		p("")
		for _, c := range g.Corners {
			p("vn %s %s %s", ftoa(c.Normal.X), ftoa(c.Normal.Y), ftoa(c.Normal.Z))
		}
		p("")
		for _, c := range g.Corners {
			uv := c.UV.FlipV()
			p("vt %s %s", ftoa(uv.X), ftoa(uv.Y))
		}
		p("")
		p("usemtl %s", name)
		p("")
		for i := 0; i+2 < len(g.Corners); i += 3 {
			a, b, c := base+i+1, base+i+2, base+i+3
			p("f %d/%d/%d %d/%d/%d %d/%d/%d", a, a, a, b, b, b, c, c, c)
		}
		base += len(g.Corners)
	}
	return bw.Flush()
}

// MTLOptions controls the optional colour coefficients written per material.
type MTLOptions struct {
	WriteCoefficients bool
	Ambient           math.Vec3
	Diffuse           math.Vec3
	Specular          math.Vec3
}

// DefaultMTLOptions returns neutral coefficients; textures carry the real detail.
func DefaultMTLOptions() MTLOptions {
	return MTLOptions{
		WriteCoefficients: true,
		Ambient:           math.Vec3{X: 0.2, Y: 0.2, Z: 0.2},
		Diffuse:           math.Vec3{X: 0.6, Y: 0.6, Z: 0.6},
		Specular:          math.Vec3{X: 0.9, Y: 0.9, Z: 0.9},
	}
}

// WriteMTL serialises one newmtl block per distinct material name. Bindings
// without a name are written under the mesh name. Channel lines are sorted by
// key and empty paths are omitted.
func WriteMTL(w io.Writer, meshName string, bindings []mesh.MaterialBinding, opts MTLOptions) error {
	bw := bufio.NewWriter(w)
	p := func(format string, args ...any) {
		fmt.Fprintf(bw, format+"\n", args...)
	}

	p("%s%s", Header, meshName)

	seen := make(map[string]bool, len(bindings))
	for _, b := range bindings {
		name := MaterialName(meshName, b.Name)
		if seen[name] {
			continue
		}
		seen[name] = true

		p("")
		p("newmtl %s", name)
		if opts.WriteCoefficients {
			p("Ka %s", vec3toa(opts.Ambient))
			p("Kd %s", vec3toa(opts.Diffuse))
			p("Ks %s", vec3toa(opts.Specular))
		}

		keys := make([]string, 0, len(b.TextureFiles))
		for k, v := range b.TextureFiles {
			if v != "" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			p("%s %s", k, b.TextureFiles[k])
		}
	}
	return bw.Flush()
}

// WriteFile writes a text document to path through write, transcoding to
// charset. The file is written to a temporary sibling and renamed into place,
// so a failed write never leaves a truncated file or touches the previous one.
func WriteFile(path, charset string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &IOError{Op: "create", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	defer os.Remove(tmp.Name())

	out, err := encoding.NewWriter(tmp, charset)
	if err != nil {
		tmp.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := write(out); err != nil {
		tmp.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if c, ok := out.(io.Closer); ok && out != io.Writer(tmp) {
		if err := c.Close(); err != nil {
			tmp.Close()
			return &IOError{Op: "write", Path: path, Err: err}
		}
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// ftoa formats f in the shortest form that parses back to the same float32.
func ftoa(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func vec3toa(v math.Vec3) string {
	return ftoa(v.X) + " " + ftoa(v.Y) + " " + ftoa(v.Z)
}
