package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector3Basics(t *testing.T) {
	a := NewVector3(1, 2, 3)
	b := NewVector3(4, 5, 6)
	assert.Equal(t, Vector3{X: 5, Y: 7, Z: 9}, *a.Add(b))
	assert.Equal(t, Vector3{X: -3, Y: -3, Z: -3}, *a.Sub(b))
	assert.Equal(t, Element(32), a.Dot(b))
	assert.Equal(t, Vector3{X: -3, Y: 6, Z: -3}, *a.Cross(b))
}

func TestVector3Normalize(t *testing.T) {
	v := NewVector3(3, 0, 4)
	v.Normalize()
	assert.InDelta(t, 1.0, float64(v.Len()), 1e-6)

	// Zero vectors normalize to the unit X axis instead of NaN.
	z := NewVector3(0, 0, 0)
	z.Normalize()
	assert.Equal(t, Vector3{X: 1}, *z)
}

func TestQuaternionMul(t *testing.T) {
	// Two 45-degree Z rotations compose into one 90-degree rotation.
	half := NewEuler(0, 0, 0.25*3.14159265, RotationOrderZXY).ToQuaternion()
	full := half.Mul(half)
	want := NewEuler(0, 0, 0.5*3.14159265, RotationOrderZXY).ToQuaternion()
	assert.InDelta(t, float64(want.Z), float64(full.Z), 1e-5)
	assert.InDelta(t, float64(want.W), float64(full.W), 1e-5)
}

func TestQuaternionNormalizeZero(t *testing.T) {
	q := NewQuaternion(0, 0, 0, 0)
	q.Normalize()
	assert.Equal(t, Element(1), q.W)
}
