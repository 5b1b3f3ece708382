package wavefront

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/meshport/pkg/encoding"
	"github.com/Faultbox/meshport/pkg/math"
)

const maxLineSize = 16 << 20

// Options controls decoding.
type Options struct {
	// MTLBaseDir is the directory mtllib paths are resolved against.
	// Empty means the directory of the OBJ file.
	MTLBaseDir string
	// Charset of the OBJ and MTL text; empty means UTF-8.
	Charset string
}

// Load parses an OBJ file and the material libraries it references.
// Non-fatal problems are discarded; use LoadWithWarnings to see them.
func Load(objPath, mtlBaseDir string) (*Result, error) {
	res, _, err := LoadFile(objPath, Options{MTLBaseDir: mtlBaseDir})
	return res, err
}

// LoadWithWarnings is Load that also returns non-fatal warnings such as
// skipped faces, missing material libraries, or unknown materials.
func LoadWithWarnings(objPath, mtlBaseDir string) (*Result, []string, error) {
	return LoadFile(objPath, Options{MTLBaseDir: mtlBaseDir})
}

// LoadFile parses objPath with the given options.
func LoadFile(objPath string, opts Options) (*Result, []string, error) {
	f, err := os.Open(objPath)
	if err != nil {
		return nil, nil, &ParseError{File: objPath, Err: err}
	}
	defer f.Close()

	baseDir := opts.MTLBaseDir
	if baseDir == "" {
		baseDir = filepath.Dir(objPath)
	}
	open := func(name string) (io.ReadCloser, error) {
		p := encoding.NormalizePath(name)
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		return os.Open(p)
	}
	return Decode(f, filepath.Base(objPath), open, opts.Charset)
}

// Decode parses OBJ text from r. name labels errors and warnings. openMTL
// opens a material library named by an mtllib statement; it may be nil, in
// which case mtllib statements only produce a warning.
func Decode(r io.Reader, name string, openMTL func(string) (io.ReadCloser, error), charset string) (*Result, []string, error) {
	d := &decoder{
		res:      &Result{},
		file:     name,
		openMTL:  openMTL,
		charset:  charset,
		material: -1,
		matIndex: make(map[string]int),
	}
	if err := d.run(r, name, d.objLine); err != nil {
		return nil, d.warnings, err
	}
	d.flushShape()
	d.checkFaces()
	return d.res, d.warnings, nil
}

type decoder struct {
	res      *Result
	warnings []string
	file     string
	line     int
	openMTL  func(string) (io.ReadCloser, error)
	charset  string

	shape    Shape
	material int
	matIndex map[string]int
	mtl      *Material
}

// run feeds every line of r to parse. file and line are saved and restored
// so an MTL read in the middle of an OBJ reports its own positions.
func (d *decoder) run(r io.Reader, file string, parse func([]string) error) error {
	prevFile, prevLine := d.file, d.line
	defer func() { d.file, d.line = prevFile, prevLine }()
	d.file, d.line = file, 0

	text, err := encoding.NewReader(r, d.charset)
	if err != nil {
		return &ParseError{File: file, Err: err}
	}
	sc := bufio.NewScanner(text)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	for sc.Scan() {
		d.line++
		fields := strings.Fields(stripComment(sc.Text()))
		if len(fields) == 0 {
			continue
		}
		if err := parse(fields); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return &ParseError{File: file, Line: d.line, Err: err}
	}
	return nil
}

// stripComment cuts a "#" comment that starts the line or follows
// whitespace. A "#" inside a token such as "usemtl Mat#1" is kept.
func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != '#' {
			continue
		}
		if i == 0 || line[i-1] == ' ' || line[i-1] == '\t' {
			return line[:i]
		}
	}
	return line
}

func (d *decoder) objLine(fields []string) error {
	args := fields[1:]
	switch fields[0] {
	case "v":
		return d.parseVertex(args)
	case "vn":
		v, err := d.parseVec3("vn", args)
		if err != nil {
			return err
		}
		d.res.Normals = append(d.res.Normals, v)
	case "vt":
		return d.parseTexCoord(args)
	case "f":
		return d.parseFace(args)
	case "g", "o":
		d.flushShape()
		d.shape = Shape{Name: strings.Join(args, " ")}
	case "usemtl":
		d.useMaterial(strings.Join(args, " "))
	case "mtllib":
		d.loadLibraries(args)
	case "s", "vp", "cstype", "deg", "curv", "curv2", "surf", "parm", "trim", "hole", "end":
		// smoothing groups and free-form geometry are ignored
	default:
		d.warn("unsupported statement %q", fields[0])
	}
	return nil
}

// parseVertex parses "v x y z [w]" or "v x y z r g b".
func (d *decoder) parseVertex(args []string) error {
	pos, err := d.parseVec3("v", args)
	if err != nil {
		return err
	}
	d.res.Positions = append(d.res.Positions, pos)

	if len(args) >= 6 {
		c, err := d.parseVec3("v", args[3:6])
		if err != nil {
			return err
		}
		// Backfill white for earlier vertices the first time a colour appears.
		for len(d.res.Colors) < len(d.res.Positions)-1 {
			d.res.Colors = append(d.res.Colors, math.Vec3{X: 1, Y: 1, Z: 1})
		}
		d.res.Colors = append(d.res.Colors, c)
	} else if len(d.res.Colors) > 0 {
		d.res.Colors = append(d.res.Colors, math.Vec3{X: 1, Y: 1, Z: 1})
	}
	return nil
}

func (d *decoder) parseTexCoord(args []string) error {
	if len(args) < 1 {
		return d.errorf("vt with no coordinates")
	}
	var uv [2]float32
	for i := 0; i < len(args) && i < 2; i++ {
		f, err := d.parseFloat(args[i])
		if err != nil {
			return err
		}
		uv[i] = f
	}
	d.res.TexCoords = append(d.res.TexCoords, math.Vec2{X: uv[0], Y: uv[1]})
	return nil
}

// parseFace parses "f v[/vt][/vn] ...". Only triangles are kept; faces with any
// other corner count are skipped with a warning.
func (d *decoder) parseFace(args []string) error {
	corners := make([]Index, len(args))
	for i, tok := range args {
		idx, err := d.parseIndex(tok)
		if err != nil {
			return err
		}
		corners[i] = idx
	}
	if len(corners) != 3 {
		d.warn("face with %d vertices skipped, only triangles are supported", len(corners))
		return nil
	}
	d.shape.Faces = append(d.shape.Faces, Face{
		Corners:  [3]Index{corners[0], corners[1], corners[2]},
		Material: d.material,
		line:     d.line,
	})
	return nil
}

func (d *decoder) parseIndex(tok string) (Index, error) {
	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return Index{}, d.errorf("malformed face corner %q", tok)
	}
	idx := Index{Normal: -1, TexCoord: -1}

	v, err := d.resolveIndex(parts[0], len(d.res.Positions), true)
	if err != nil {
		return Index{}, err
	}
	idx.Vertex = v
	if len(parts) > 1 {
		if idx.TexCoord, err = d.resolveIndex(parts[1], len(d.res.TexCoords), false); err != nil {
			return Index{}, err
		}
	}
	if len(parts) > 2 {
		if idx.Normal, err = d.resolveIndex(parts[2], len(d.res.Normals), false); err != nil {
			return Index{}, err
		}
	}
	return idx, nil
}

// resolveIndex converts a 1-based or negative (relative) OBJ index to 0-based.
// An empty optional component yields -1.
func (d *decoder) resolveIndex(s string, count int, required bool) (int, error) {
	if s == "" {
		if required {
			return 0, d.errorf("face corner without vertex index")
		}
		return -1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, d.errorf("invalid index %q", s)
	}
	switch {
	case n > 0:
		return n - 1, nil
	case n < 0:
		return count + n, nil
	default:
		return 0, d.errorf("index value equal to 0")
	}
}

func (d *decoder) flushShape() {
	if len(d.shape.Faces) > 0 {
		d.res.Shapes = append(d.res.Shapes, d.shape)
	}
	d.shape = Shape{Name: d.shape.Name}
}

// checkFaces runs after the whole file is read, since positive indices may
// refer forward. Faces whose vertex is missing are dropped; missing normals
// and texture coordinates are cleared.
func (d *decoder) checkFaces() {
	shapes := d.res.Shapes[:0]
	for _, s := range d.res.Shapes {
		faces := s.Faces[:0]
		for _, f := range s.Faces {
			if d.checkFace(&f) {
				faces = append(faces, f)
			}
		}
		s.Faces = faces
		if len(s.Faces) > 0 {
			shapes = append(shapes, s)
		}
	}
	d.res.Shapes = shapes
}

func (d *decoder) checkFace(f *Face) bool {
	for i := range f.Corners {
		c := &f.Corners[i]
		if c.Vertex < 0 || c.Vertex >= len(d.res.Positions) {
			d.warnAt(f.line, "face skipped, vertex index %d out of range (have %d)", c.Vertex+1, len(d.res.Positions))
			return false
		}
		if c.Normal >= len(d.res.Normals) || c.Normal < -1 {
			d.warnAt(f.line, "normal index %d out of range, ignored", c.Normal+1)
			c.Normal = -1
		}
		if c.TexCoord >= len(d.res.TexCoords) || c.TexCoord < -1 {
			d.warnAt(f.line, "texture coordinate index %d out of range, ignored", c.TexCoord+1)
			c.TexCoord = -1
		}
	}
	return true
}

func (d *decoder) useMaterial(name string) {
	id, ok := d.matIndex[name]
	if !ok {
		d.warn("material %q not found", name)
		id = -1
	}
	d.material = id
}

func (d *decoder) loadLibraries(names []string) {
	if len(names) == 0 {
		d.warn("mtllib with no file name")
		return
	}
	for _, name := range names {
		d.res.MaterialLibs = append(d.res.MaterialLibs, name)
		if d.openMTL == nil {
			d.warn("material library %q not loaded", name)
			continue
		}
		f, err := d.openMTL(name)
		if err != nil {
			d.warn("material library %q: %v", name, err)
			continue
		}
		err = d.run(f, filepath.Base(encoding.NormalizePath(name)), d.mtlLine)
		f.Close()
		d.mtl = nil
		if err != nil {
			// A broken library degrades to missing materials.
			d.warn("material library %q: %v", name, err)
		}
	}
}

func (d *decoder) parseVec3(stmt string, args []string) (math.Vec3, error) {
	if len(args) < 3 {
		return math.Vec3{}, d.errorf("%s needs 3 values, got %d", stmt, len(args))
	}
	var v [3]float32
	for i := 0; i < 3; i++ {
		f, err := d.parseFloat(args[i])
		if err != nil {
			return math.Vec3{}, err
		}
		v[i] = f
	}
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}

func (d *decoder) parseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, d.errorf("invalid number %q", s)
	}
	return float32(f), nil
}

func (d *decoder) errorf(format string, args ...any) error {
	return &ParseError{File: d.file, Line: d.line, Msg: fmt.Sprintf(format, args...)}
}

func (d *decoder) warn(format string, args ...any) {
	d.warnAt(d.line, format, args...)
}

func (d *decoder) warnAt(line int, format string, args ...any) {
	d.warnings = append(d.warnings, fmt.Sprintf("%s:%d: %s", d.file, line, fmt.Sprintf(format, args...)))
}
