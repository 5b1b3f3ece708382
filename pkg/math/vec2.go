package math

// Vec2 is a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}

// FlipV returns the coordinate with V mirrored (u, 1-v).
// OBJ texture space has V pointing up, mesh texture space has it pointing down;
// applying FlipV twice yields the original coordinate.
func (v Vec2) FlipV() Vec2 {
	return Vec2{v.X, 1 - v.Y}
}

// ApproxEqual reports whether both components differ by at most eps.
func (v Vec2) ApproxEqual(other Vec2, eps float32) bool {
	return absDiff(v.X, other.X) <= eps && absDiff(v.Y, other.Y) <= eps
}
