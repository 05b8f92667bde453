package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriangulateTriangle(t *testing.T) {
	poly := []*Vector3{
		NewVector3(0, 0, 0),
		NewVector3(1, 0, 0),
		NewVector3(0, 1, 0),
	}
	tris := Triangulate(poly)
	assert.Len(t, tris, 1)
}

func TestTriangulateConvex(t *testing.T) {
	// Regular pentagon: always n-2 triangles, every index used.
	poly := []*Vector3{
		NewVector3(0, 1, 0),
		NewVector3(-0.95, 0.31, 0),
		NewVector3(-0.59, -0.81, 0),
		NewVector3(0.59, -0.81, 0),
		NewVector3(0.95, 0.31, 0),
	}
	tris := Triangulate(poly)
	assert.Len(t, tris, 3)
	seen := map[int]bool{}
	for _, tri := range tris {
		for _, i := range tri {
			assert.GreaterOrEqual(t, i, 0)
			assert.Less(t, i, len(poly))
			seen[i] = true
		}
	}
	assert.Len(t, seen, len(poly))
}

func TestTriangulateConcave(t *testing.T) {
	// Arrowhead: the fan from vertex 0 would cross the notch, so ear
	// clipping must pick other tips.
	poly := []*Vector3{
		NewVector3(0, 0, 0),
		NewVector3(2, 1, 0),
		NewVector3(4, 0, 0),
		NewVector3(2, 3, 0),
	}
	tris := Triangulate(poly)
	assert.Len(t, tris, 2)
	for _, tri := range tris {
		assert.NotEqual(t, tri[0], tri[1])
		assert.NotEqual(t, tri[1], tri[2])
	}
}

func TestTriangulateDegenerate(t *testing.T) {
	assert.Empty(t, Triangulate(nil))
	assert.Empty(t, Triangulate([]*Vector3{NewVector3(0, 0, 0), NewVector3(1, 0, 0)}))
}

func TestIsInTriangle(t *testing.T) {
	a, b, c := NewVector3(0, 0, 0), NewVector3(2, 0, 0), NewVector3(0, 2, 0)
	assert.True(t, IsInTriangle(NewVector3(0.5, 0.5, 0), a, b, c))
	assert.False(t, IsInTriangle(NewVector3(2, 2, 0), a, b, c))
}
