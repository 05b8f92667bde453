package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkinWeightsNormalizeTopFour(t *testing.T) {
	sw := NewSkinWeights()
	sw.Add(0, 0, 0.5)
	sw.Add(0, 1, 0.3)
	sw.Add(0, 2, 0.1)
	sw.Add(0, 3, 0.05)
	sw.Add(0, 4, 0.05)
	sw.Normalize()

	infs := sw.Get(0)
	require.Len(t, infs, MaxInfluences)
	var sum float32
	for i, inf := range infs {
		sum += inf.Weight
		if i > 0 {
			assert.LessOrEqual(t, inf.Weight, infs[i-1].Weight, "sorted descending")
		}
	}
	assert.InDelta(t, 1.0, float64(sum), 1e-6)
	assert.Equal(t, 0, infs[0].BoneID, "heaviest influence survives")
}

func TestSkinWeightsNormalizeDropsZero(t *testing.T) {
	sw := NewSkinWeights()
	sw.Add(0, 0, 0.5)
	sw.Add(0, 1, 0)
	sw.Normalize()

	infs := sw.Get(0)
	require.Len(t, infs, 1)
	assert.InDelta(t, 1.0, float64(infs[0].Weight), 1e-6)
}

func TestSkinWeightsAllZeroStaysZero(t *testing.T) {
	sw := NewSkinWeights()
	sw.Set(0, []BoneInfluence{{BoneID: 1, Weight: 0}})
	sw.Normalize()
	assert.Empty(t, sw.Get(0))
}

func TestSkinWeightsVertexIDsSorted(t *testing.T) {
	sw := NewSkinWeights()
	sw.Add(5, 0, 1)
	sw.Add(1, 0, 1)
	sw.Add(3, 0, 1)
	assert.Equal(t, []int{1, 3, 5}, sw.VertexIDs())
	assert.Equal(t, 3, sw.VertexCount())
}

func TestSkinWeightsSetCopies(t *testing.T) {
	src := []BoneInfluence{{BoneID: 0, Weight: 1}}
	sw := NewSkinWeights()
	sw.Set(0, src)
	src[0].Weight = 0.5
	assert.Equal(t, float32(1), sw.Get(0)[0].Weight)
}
