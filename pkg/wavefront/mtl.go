package wavefront

import (
	"io"
	"strings"

	"github.com/Faultbox/meshport/pkg/mesh"
)

// texture option flags and how many values follow each.
var textureOptions = map[string]int{
	"-blendu": 1, "-blendv": 1, "-boost": 1, "-cc": 1, "-clamp": 1,
	"-imfchan": 1, "-mm": 2, "-o": 3, "-s": 3, "-t": 3, "-texres": 1,
	"-bm": 1, "-type": 1,
}

// DecodeMTL parses a standalone material library.
func DecodeMTL(r io.Reader, name, charset string) ([]Material, []string, error) {
	d := &decoder{res: &Result{}, file: name, charset: charset, matIndex: make(map[string]int)}
	if err := d.run(r, name, d.mtlLine); err != nil {
		return nil, d.warnings, err
	}
	return d.res.Materials, d.warnings, nil
}

func (d *decoder) mtlLine(fields []string) error {
	key, args := fields[0], fields[1:]
	if key == "newmtl" {
		name := strings.Join(args, " ")
		if _, dup := d.matIndex[name]; dup {
			d.warn("material %q redefined", name)
		}
		d.res.Materials = append(d.res.Materials, Material{
			Name:     name,
			Dissolve: 1,
			Textures: make(map[string]string),
		})
		d.matIndex[name] = len(d.res.Materials) - 1
		d.mtl = &d.res.Materials[len(d.res.Materials)-1]
		return nil
	}
	if d.mtl == nil {
		d.warn("%s before newmtl ignored", key)
		return nil
	}
	m := d.mtl

	switch key {
	case "Ka", "Kd", "Ks":
		v, err := d.parseVec3(key, args)
		if err != nil {
			return err
		}
		switch key {
		case "Ka":
			m.Ambient = v
		case "Kd":
			m.Diffuse = v
		default:
			m.Specular = v
		}
	case "Ns", "d", "Tr":
		if len(args) < 1 {
			return d.errorf("%s needs a value", key)
		}
		f, err := d.parseFloat(args[0])
		if err != nil {
			return err
		}
		switch key {
		case "Ns":
			m.Shininess = f
		case "d":
			m.Dissolve = f
		default:
			m.Dissolve = 1 - f
		}
	case "illum":
		if len(args) < 1 {
			return d.errorf("illum needs a value")
		}
		f, err := d.parseFloat(args[0])
		if err != nil {
			return err
		}
		m.Illum = int(f)
	case "Ke", "Ni", "Tf", "sharpness":
		// not used by the mesh model
	default:
		if strings.HasPrefix(key, "map_") || key == "bump" || key == "norm" || key == "disp" || key == "decal" || key == "refl" {
			path := texturePath(args)
			if path == "" {
				d.warn("%s without a file name", key)
				return nil
			}
			m.Textures[textureKey(key)] = path
			return nil
		}
		d.warn("unsupported material statement %q", key)
	}
	return nil
}

// texturePath strips option flags from a map statement and returns the path.
// Paths may contain spaces.
func texturePath(args []string) string {
	i := 0
	for i < len(args) {
		n, ok := textureOptions[args[i]]
		if !ok {
			break
		}
		i++
		for j := 0; j < n && i < len(args); j++ {
			// -o, -s, -t and -mm take a variable count of numbers.
			if n > 1 && !isNumber(args[i]) {
				break
			}
			i++
		}
	}
	return strings.Join(args[i:], " ")
}

func textureKey(key string) string {
	switch key {
	case "map_bump", "map_Bump", "bump":
		return mesh.ChannelNormal
	}
	return key
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == 'e', r == 'E':
		case (r == '-' || r == '+') && (i == 0 || s[i-1] == 'e' || s[i-1] == 'E'):
		default:
			return false
		}
	}
	return true
}
