// Package math provides the small float32 vector types used by mesh data.
package math

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 is a 3D vector (positions, normals, RGB colours).
type Vec3 struct {
	X, Y, Z float32
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Min returns the component-wise minimum.
func (v Vec3) Min(other Vec3) Vec3 {
	return Vec3{min(v.X, other.X), min(v.Y, other.Y), min(v.Z, other.Z)}
}

// Max returns the component-wise maximum.
func (v Vec3) Max(other Vec3) Vec3 {
	return Vec3{max(v.X, other.X), max(v.Y, other.Y), max(v.Z, other.Z)}
}

// ApproxEqual reports whether every component differs by at most eps.
func (v Vec3) ApproxEqual(other Vec3, eps float32) bool {
	return absDiff(v.X, other.X) <= eps &&
		absDiff(v.Y, other.Y) <= eps &&
		absDiff(v.Z, other.Z) <= eps
}

// Mgl converts v to an mgl32 vector.
func (v Vec3) Mgl() mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

// Vec3FromMgl converts an mgl32 vector.
func Vec3FromMgl(m mgl32.Vec3) Vec3 {
	return Vec3{m[0], m[1], m[2]}
}

// Transform applies an affine transform to a point.
func (v Vec3) Transform(m mgl32.Mat4) Vec3 {
	return Vec3FromMgl(mgl32.TransformCoordinate(v.Mgl(), m))
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

func absDiff(a, b float32) float32 {
	if a > b {
		return a - b
	}
	return b - a
}
