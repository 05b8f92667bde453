package gltfconv

import (
	"fmt"
	"testing"

	"github.com/CharmingBlaze/meshkit/scene"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportedJointMap(t *testing.T, boneCount int) *JointMap {
	t.Helper()
	s := scene.NewSkeleton()
	for i := 0; i < boneCount; i++ {
		b := scene.NewBone(i, fmt.Sprintf("bone_%d", i))
		if i > 0 {
			b.ParentID = i - 1
		}
		require.NoError(t, s.AddBone(b))
	}
	doc := gltf.NewDocument()
	_, jm := NewSkeletonCodec(nil).ExportSkeleton(doc, s)
	return jm
}

func TestExportArraysCapsAndNormalizes(t *testing.T) {
	jm := exportedJointMap(t, 6)
	sw := scene.NewSkinWeights()
	for bone := 0; bone < 6; bone++ {
		sw.Add(0, bone, float32(bone+1)) // weights 1..6, top 4 are bones 2..5
	}

	codec := NewSkinWeightCodec(nil)
	packed, jointSize := codec.ExportArrays(sw, jm)
	assert.Equal(t, uint32(1), jointSize)

	vs := packed[0]
	require.NotNil(t, vs)
	assert.Equal(t, uint16(5), vs.Joints[0], "heaviest joint first")
	var sum float32
	for _, w := range vs.Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, float64(sum), 1e-6)
}

func TestExportArraysWideJoints(t *testing.T) {
	jm := exportedJointMap(t, 300)
	sw := scene.NewSkinWeights()
	sw.Add(0, 299, 1)

	_, jointSize := NewSkinWeightCodec(nil).ExportArrays(sw, jm)
	assert.Equal(t, uint32(2), jointSize, "joint slots beyond 255 need 16-bit storage")
}

func TestExportArraysUnknownBoneDropped(t *testing.T) {
	jm := exportedJointMap(t, 2)
	sw := scene.NewSkinWeights()
	sw.Add(0, 0, 0.5)
	sw.Add(0, 42, 0.5) // not in the skeleton

	packed, _ := NewSkinWeightCodec(nil).ExportArrays(sw, jm)
	vs := packed[0]
	require.NotNil(t, vs)
	assert.InDelta(t, 1.0, float64(vs.Weights[0]), 1e-6, "surviving weight renormalizes")
	assert.Zero(t, vs.Weights[1])
}

func TestImportSkinWeights(t *testing.T) {
	jm := exportedJointMap(t, 3)
	doc := gltf.NewDocument()
	joints := [][4]uint8{{0, 1, 0, 0}, {2, 0, 0, 0}}
	weights := [][4]float32{{0.75, 0.25, 0, 0}, {1, 0, 0, 0}}
	prim := &gltf.Primitive{Attributes: map[string]uint32{
		"JOINTS_0":  modeler.WriteJoints(doc, joints),
		"WEIGHTS_0": modeler.WriteWeights(doc, weights),
	}}

	sw, err := NewSkinWeightCodec(nil).ImportSkinWeights(doc, prim, jm, []int{10, 11})
	require.NoError(t, err)
	require.NotNil(t, sw)

	infs := sw.Get(10)
	require.Len(t, infs, 2, "zero-weight slots are dropped")
	assert.Equal(t, 0, infs[0].BoneID)
	assert.InDelta(t, 0.75, float64(infs[0].Weight), 1e-6)

	infs = sw.Get(11)
	require.Len(t, infs, 1)
	assert.Equal(t, 2, infs[0].BoneID)
}

func TestImportSkinWeightsAbsent(t *testing.T) {
	doc := gltf.NewDocument()
	prim := &gltf.Primitive{Attributes: map[string]uint32{}}
	sw, err := NewSkinWeightCodec(nil).ImportSkinWeights(doc, prim, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, sw)
}

func TestImportSkinWeightsLengthMismatch(t *testing.T) {
	jm := exportedJointMap(t, 2)
	doc := gltf.NewDocument()
	prim := &gltf.Primitive{Attributes: map[string]uint32{
		"JOINTS_0":  modeler.WriteJoints(doc, [][4]uint8{{0, 0, 0, 0}}),
		"WEIGHTS_0": modeler.WriteWeights(doc, [][4]float32{{1, 0, 0, 0}}),
	}}

	_, err := NewSkinWeightCodec(nil).ImportSkinWeights(doc, prim, jm, []int{0, 1, 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vertices")
}
