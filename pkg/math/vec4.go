package math

// Vec4 is a 4D vector, used for RGBA vertex colours in the 0..1 range.
type Vec4 struct {
	X, Y, Z, W float32
}

// White is opaque white, the default vertex colour.
var White = Vec4{1, 1, 1, 1}

// Opaque returns an opaque colour from an RGB triple.
func Opaque(c Vec3) Vec4 {
	return Vec4{c.X, c.Y, c.Z, 1}
}
