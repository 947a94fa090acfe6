package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// result in radians
func QuatToEuler(q mgl32.Quat) (e mgl32.Vec3) {
	sinr_cosp := float64(2 * (q.W*q.X() + q.Y()*q.Z()))
	cosr_cosp := float64(1 - 2*(q.X()*q.X()+q.Y()*q.Y()))

	e[0] = float32(math.Atan2(sinr_cosp, cosr_cosp))

	sinp := float64(2 * (q.W*q.Y() - q.Z()*q.X()))
	if math.Abs(sinp) >= 1 {
		e[1] = math.Pi / 2
		if sinp < 0 {
			e[1] *= -1
		}
	} else {
		e[1] = float32(math.Asin(sinp))
	}

	siny_cosp := float64(2 * (q.W*q.Z() + q.X()*q.Y()))
	cosy_cosp := float64(1 - 2*(q.Y()*q.Y()+q.Z()*q.Z()))
	e[2] = float32(math.Atan2(siny_cosp, cosy_cosp))

	return e
}

// QuatFromXYZ rebuilds W of a unit quaternion stored without it.
func QuatFromXYZ(x, y, z float32) mgl32.Quat {
	wSq := 1 - x*x - y*y - z*z
	var w float32
	if wSq > 0 {
		w = float32(math.Sqrt(float64(wSq)))
	}
	return mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
}

func LerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// SlerpQuat interpolates along the shortest arc. The endpoints are returned
// as is, without renormalisation.
func SlerpQuat(a, b mgl32.Quat, t float32) mgl32.Quat {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl32.QuatSlerp(a, b, t)
}

func Conjugate(q mgl32.Quat) mgl32.Quat {
	return mgl32.Quat{W: q.W, V: q.V.Mul(-1)}
}

// ApproxEqual compares absolutely, unlike mgl32.FloatEqualThreshold which
// turns into eps*eps when either side is zero.
func ApproxEqual(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func Vec3ApproxEqual(a, b mgl32.Vec3, eps float32) bool {
	for i := range a {
		if !ApproxEqual(a[i], b[i], eps) {
			return false
		}
	}
	return true
}

func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
