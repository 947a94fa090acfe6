package skeleton

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/anim_inspector/utils"
)

// Coords is an affine frame: a point p maps to Origin + Axis*p. The columns
// of Axis are the frame's X, Y and Z axes.
type Coords struct {
	Origin mgl32.Vec3
	Axis   mgl32.Mat3
}

func IdentityCoords() Coords {
	return Coords{Axis: mgl32.Ident3()}
}

func CoordsFromPose(pos mgl32.Vec3, q mgl32.Quat) Coords {
	return Coords{Origin: pos, Axis: q.Normalize().Mat4().Mat3()}
}

// Concat returns the frame applying b first and then c.
func (c Coords) Concat(b Coords) Coords {
	return Coords{
		Origin: c.Origin.Add(c.Axis.Mul3x1(b.Origin)),
		Axis:   c.Axis.Mul3(b.Axis),
	}
}

func (c Coords) Inverse() Coords {
	inv := c.Axis.Inv()
	return Coords{
		Origin: inv.Mul3x1(c.Origin).Mul(-1),
		Axis:   inv,
	}
}

// UnTransform expresses the displacement from ref to c. With ref being a bind
// pose frame the result maps bind pose model space positions to current ones.
func (c Coords) UnTransform(ref Coords) Coords {
	return c.Concat(ref.Inverse())
}

func (c Coords) TransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	return c.Origin.Add(c.Axis.Mul3x1(p))
}

func (c Coords) TransformVector(v mgl32.Vec3) mgl32.Vec3 {
	return c.Axis.Mul3x1(v)
}

// ScaleAxes scales the axes and leaves the origin in place.
func (c Coords) ScaleAxes(s float32) Coords {
	c.Axis = c.Axis.Mul(s)
	return c
}

// AddScaled accumulates w*b into c component wise. Used for weighted blends
// of frames, the result is not orthonormal in general.
func (c *Coords) AddScaled(b *Coords, w float32) {
	c.Origin = c.Origin.Add(b.Origin.Mul(w))
	for i := range c.Axis {
		c.Axis[i] += b.Axis[i] * w
	}
}

func (c Coords) Mat4() mgl32.Mat4 {
	m := c.Axis.Mat4()
	m.SetCol(3, c.Origin.Vec4(1))
	return m
}

// ApproxEqual compares every component with an absolute tolerance.
func (c Coords) ApproxEqual(b Coords, eps float32) bool {
	if !utils.Vec3ApproxEqual(c.Origin, b.Origin, eps) {
		return false
	}
	for i := range c.Axis {
		if !utils.ApproxEqual(c.Axis[i], b.Axis[i], eps) {
			return false
		}
	}
	return true
}
