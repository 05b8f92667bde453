package geom

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrix4Identity(t *testing.T) {
	m := NewMatrix4()
	v := NewVector3(1, 2, 3)
	assert.Equal(t, *v, *m.ApplyTo(v))
	assert.InDelta(t, 1.0, float64(m.Det()), 1e-6)

	inv := m.Inverse()
	require.NotNil(t, inv)
	assert.Equal(t, *m, *inv)
}

func TestMatrix4TranslateScale(t *testing.T) {
	m := NewTranslateMatrix4(1, 2, 3).Mul(NewScaleMatrix4(2, 2, 2))
	v := m.ApplyTo(NewVector3(1, 1, 1))
	assert.Equal(t, Vector3{X: 3, Y: 4, Z: 5}, *v)
}

func TestMatrix4RotationFromQuaternion(t *testing.T) {
	// 90 degrees around Z maps +X to +Y.
	q := NewEuler(0, 0, math32.Pi/2, RotationOrderZXY).ToQuaternion()
	m := NewRotationMatrix4FromQuaternion(q)
	v := m.ApplyTo(NewVector3(1, 0, 0))
	assert.InDelta(t, 0, float64(v.X), 1e-6)
	assert.InDelta(t, 1, float64(v.Y), 1e-6)
	assert.InDelta(t, 0, float64(v.Z), 1e-6)
}

func TestMatrix4TRSOrder(t *testing.T) {
	// Scale applies before rotation, translation after.
	q := NewEuler(0, 0, math32.Pi/2, RotationOrderZXY).ToQuaternion()
	m := NewTRSMatrix4(NewVector3(10, 0, 0), q, NewVector3(2, 2, 2))
	v := m.ApplyTo(NewVector3(1, 0, 0))
	assert.InDelta(t, 10, float64(v.X), 1e-5)
	assert.InDelta(t, 2, float64(v.Y), 1e-5)
}

func TestMatrix4Inverse(t *testing.T) {
	q := NewEuler(0.3, -0.8, 1.1, RotationOrderZXY).ToQuaternion()
	m := NewTRSMatrix4(NewVector3(1, -2, 3), q, NewVector3(2, 3, 4))
	inv := m.Inverse()
	require.NotNil(t, inv)

	id := m.Mul(inv)
	want := NewMatrix4()
	for i := range id {
		assert.InDelta(t, float64(want[i]), float64(id[i]), 1e-5, "element %d", i)
	}
}

func TestMatrix4InverseSingular(t *testing.T) {
	assert.Nil(t, NewScaleMatrix4(1, 1, 0).Inverse())
	assert.Nil(t, (&Matrix4{}).Inverse())
}

func TestMatrix4Transposed(t *testing.T) {
	m := NewTranslateMatrix4(1, 2, 3)
	tr := m.Transposed()
	assert.Equal(t, m[12], tr[3])
	assert.Equal(t, *m, *tr.Transposed())
}
