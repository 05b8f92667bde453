package geom

import "github.com/chewxy/math32"

type RotationOrder int

const (
	RotationOrderXYZ RotationOrder = iota
	RotationOrderYXZ
	RotationOrderZXY
	RotationOrderZYX
)

// StandardRotationOrder is the single Euler convention used by every
// codec in this module. Angle composition and decomposition must agree,
// so nothing outside tests should pick another order.
const StandardRotationOrder = RotationOrderZXY

type EulerAngles struct {
	Vector3
	Order RotationOrder
}

func NewEuler(x, y, z Element, order RotationOrder) *EulerAngles {
	return &EulerAngles{Vector3: Vector3{x, y, z}, Order: order}
}

func NewEulerFromQuaternion(q *Quaternion, order RotationOrder) *EulerAngles {
	return NewEulerFromMatrix4(NewRotationMatrix4FromQuaternion(q), order)
}

// NewEulerFromMatrix4 decomposes a pure rotation matrix. The asin argument
// is clamped to [-1, 1], so angles at gimbal lock collapse to a valid but
// non-unique solution instead of NaN.
func NewEulerFromMatrix4(mat *Matrix4, order RotationOrder) *EulerAngles {
	const eps = 1e-7
	m11, m21, m31 := mat[0], mat[1], mat[2]
	m12, m22, m32 := mat[4], mat[5], mat[6]
	m13, m23, m33 := mat[8], mat[9], mat[10]

	ret := &EulerAngles{Order: order}
	switch order {
	case RotationOrderXYZ:
		ret.Y = math32.Asin(clamp(m13, -1, 1))
		if math32.Abs(m13) < 1-eps {
			ret.X = math32.Atan2(-m23, m33)
			ret.Z = math32.Atan2(-m12, m11)
		} else {
			ret.X = math32.Atan2(m32, m22)
			ret.Z = 0
		}
	case RotationOrderYXZ:
		ret.X = math32.Asin(-clamp(m23, -1, 1))
		if math32.Abs(m23) < 1-eps {
			ret.Y = math32.Atan2(m13, m33)
			ret.Z = math32.Atan2(m21, m22)
		} else {
			ret.Y = math32.Atan2(-m31, m11)
			ret.Z = 0
		}
	case RotationOrderZXY:
		ret.X = math32.Asin(clamp(m32, -1, 1))
		if math32.Abs(m32) < 1-eps {
			ret.Y = math32.Atan2(-m31, m33)
			ret.Z = math32.Atan2(-m12, m22)
		} else {
			ret.Y = 0
			ret.Z = math32.Atan2(m21, m11)
		}
	case RotationOrderZYX:
		ret.Y = math32.Asin(-clamp(m31, -1, 1))
		if math32.Abs(m31) < 1-eps {
			ret.X = math32.Atan2(m32, m33)
			ret.Z = math32.Atan2(m21, m11)
		} else {
			ret.X = 0
			ret.Z = math32.Atan2(-m12, m22)
		}
	}
	return ret
}

func (v *EulerAngles) ToQuaternion() *Quaternion {
	cx := math32.Cos(v.X / 2)
	cy := math32.Cos(v.Y / 2)
	cz := math32.Cos(v.Z / 2)
	sx := math32.Sin(v.X / 2)
	sy := math32.Sin(v.Y / 2)
	sz := math32.Sin(v.Z / 2)

	switch v.Order {
	case RotationOrderXYZ:
		return &Quaternion{
			X: sx*cy*cz + cx*sy*sz,
			Y: cx*sy*cz - sx*cy*sz,
			Z: cx*cy*sz + sx*sy*cz,
			W: cx*cy*cz - sx*sy*sz}
	case RotationOrderYXZ:
		return &Quaternion{
			X: sx*cy*cz + cx*sy*sz,
			Y: cx*sy*cz - sx*cy*sz,
			Z: cx*cy*sz - sx*sy*cz,
			W: cx*cy*cz + sx*sy*sz}
	case RotationOrderZXY:
		return &Quaternion{
			X: sx*cy*cz - cx*sy*sz,
			Y: cx*sy*cz + sx*cy*sz,
			Z: cx*cy*sz + sx*sy*cz,
			W: cx*cy*cz - sx*sy*sz}
	case RotationOrderZYX:
		return &Quaternion{
			X: sx*cy*cz - cx*sy*sz,
			Y: cx*sy*cz + sx*cy*sz,
			Z: cx*cy*sz - sx*sy*cz,
			W: cx*cy*cz + sx*sy*sz}
	default:
		return &Quaternion{W: 1}
	}
}

func clamp(v, lo, hi Element) Element {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
