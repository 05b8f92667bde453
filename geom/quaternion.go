package geom

import "github.com/chewxy/math32"

type Vector4 struct {
	X Element
	Y Element
	Z Element
	W Element
}

// Quaternion is stored as [x, y, z, w], matching the GLTF node rotation layout.
type Quaternion = Vector4

func NewQuaternion(x, y, z, w Element) *Quaternion {
	return &Quaternion{X: x, Y: y, Z: z, W: w}
}

func NewQuaternionFromSlice(arr []Element) *Quaternion {
	return &Quaternion{X: arr[0], Y: arr[1], Z: arr[2], W: arr[3]}
}

func (v *Vector4) Add(v2 *Vector4) *Vector4 {
	return &Vector4{X: v.X + v2.X, Y: v.Y + v2.Y, Z: v.Z + v2.Z, W: v.W + v2.W}
}

func (v *Vector4) Sub(v2 *Vector4) *Vector4 {
	return &Vector4{X: v.X - v2.X, Y: v.Y - v2.Y, Z: v.Z - v2.Z, W: v.W - v2.W}
}

func (v *Vector4) Dot(v2 *Vector4) Element {
	return v.X*v2.X + v.Y*v2.Y + v.Z*v2.Z + v.W*v2.W
}

func (v *Vector4) Len() Element {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z + v.W*v.W)
}

func (v *Vector4) Normalize() *Vector4 {
	l := v.Len()
	if l > 0 {
		v.X /= l
		v.Y /= l
		v.Z /= l
		v.W /= l
	} else {
		v.W = 1
	}
	return v
}

// Inverse returns the conjugate. Equal to the inverse for unit quaternions.
func (v *Vector4) Inverse() *Vector4 {
	return &Vector4{X: -v.X, Y: -v.Y, Z: -v.Z, W: v.W}
}

// Mul returns the Hamilton product a*b.
func (a *Vector4) Mul(b *Vector4) *Vector4 {
	return &Vector4{
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
	}
}

func (v *Vector4) ToArray(array []Element) {
	array[0] = v.X
	array[1] = v.Y
	array[2] = v.Z
	array[3] = v.W
}
