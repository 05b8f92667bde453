package gltfconv

import (
	"testing"

	"github.com/CharmingBlaze/meshkit/geom"
	"github.com/CharmingBlaze/meshkit/scene"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildChainSkeleton(t *testing.T) *scene.Skeleton {
	t.Helper()
	s := scene.NewSkeleton()
	root := scene.NewBone(0, "hips")
	spine := scene.NewBone(1, "spine")
	head := scene.NewBone(2, "head")
	spine.ParentID = 0
	head.ParentID = 1

	root.Bind.Position = geom.Vector3{Y: 1}
	spine.Bind.Position = geom.Vector3{Y: 0.5}
	head.Bind.Position = geom.Vector3{Y: 0.4}
	root.Transform, spine.Transform, head.Transform = root.Bind, spine.Bind, head.Bind
	root.Rest, spine.Rest, head.Rest = root.Bind, spine.Bind, head.Bind

	require.NoError(t, s.AddBone(root))
	require.NoError(t, s.AddBone(spine))
	require.NoError(t, s.AddBone(head))
	return s
}

func TestExportSkeletonNodes(t *testing.T) {
	skel := buildChainSkeleton(t)
	doc := gltf.NewDocument()
	codec := NewSkeletonCodec(nil)

	skinIdx, jm := codec.ExportSkeleton(doc, skel)
	skin := doc.Skins[skinIdx]
	require.Len(t, skin.Joints, 3)
	require.Len(t, doc.Nodes, 3)

	// Parents come before children in joint order.
	assert.Equal(t, "hips", doc.Nodes[skin.Joints[0]].Name)
	hips := doc.Nodes[jm.BoneToNode[0]]
	assert.Equal(t, [3]float32{0, 1, 0}, hips.Translation)
	assert.Contains(t, hips.Children, jm.BoneToNode[1])

	require.NotNil(t, skin.Skeleton)
	assert.Equal(t, jm.BoneToNode[0], *skin.Skeleton)
	assert.Contains(t, doc.Scenes[0].Nodes, jm.BoneToNode[0])
}

func TestExportSkeletonInverseBind(t *testing.T) {
	skel := buildChainSkeleton(t)
	doc := gltf.NewDocument()
	codec := NewSkeletonCodec(nil)

	skinIdx, jm := codec.ExportSkeleton(doc, skel)
	skin := doc.Skins[skinIdx]
	require.NotNil(t, skin.InverseBindMatrices)

	ibm, err := ReadAccessor(doc, skin.InverseBindMatrices)
	require.NoError(t, err)
	require.Len(t, ibm, 16*3)

	// ibm * globalBind must be identity for every joint.
	for slot, nodeIdx := range skin.Joints {
		boneID := jm.NodeToBone[nodeIdx]
		global := geom.NewMatrix4()
		for _, link := range skel.Chain(boneID) {
			bind := link.Bind
			global = global.Mul(bind.Matrix())
		}
		inv := geom.NewMatrix4FromSlice(ibm[slot*16 : slot*16+16])
		id := inv.Mul(global)
		want := geom.NewMatrix4()
		for i := range id {
			assert.InDelta(t, float64(want[i]), float64(id[i]), 1e-5, "joint %d element %d", slot, i)
		}
	}
}

func TestExportSkeletonSingularBind(t *testing.T) {
	s := scene.NewSkeleton()
	b := scene.NewBone(0, "flat")
	b.Bind.Scale = geom.Vector3{X: 1, Y: 1, Z: 0}
	require.NoError(t, s.AddBone(b))

	doc := gltf.NewDocument()
	skinIdx, _ := NewSkeletonCodec(nil).ExportSkeleton(doc, s)

	ibm, err := ReadAccessor(doc, doc.Skins[skinIdx].InverseBindMatrices)
	require.NoError(t, err)
	id := geom.NewMatrix4()
	for i := range id {
		assert.InDelta(t, float64(id[i]), float64(ibm[i]), 1e-6, "singular bind falls back to identity")
	}
}

func TestImportSkeletonRoundTrip(t *testing.T) {
	skel := buildChainSkeleton(t)
	skel.Bone(1).Transform.Rotation = geom.Vector3{Z: 0.7}
	doc := gltf.NewDocument()
	codec := NewSkeletonCodec(nil)
	codec.ExportSkeleton(doc, skel)

	back, jm, err := codec.ImportSkeleton(doc)
	require.NoError(t, err)
	require.NotNil(t, back)
	require.NotNil(t, jm)
	assert.Equal(t, 3, back.BoneCount())

	hips := back.FindBone("hips")
	require.NotNil(t, hips)
	assert.Equal(t, scene.NoBone, hips.ParentID)
	assert.InDelta(t, 1, float64(hips.Transform.Position.Y), 1e-6)

	spine := back.FindBone("spine")
	require.NotNil(t, spine)
	assert.Equal(t, hips.ID, spine.ParentID)
	assert.InDelta(t, 0.7, float64(spine.Transform.Rotation.Z), 1e-4)

	head := back.FindBone("head")
	require.NotNil(t, head)
	assert.Equal(t, spine.ID, head.ParentID)
}

func TestImportSkeletonNoSkin(t *testing.T) {
	doc := gltf.NewDocument()
	skel, jm, err := NewSkeletonCodec(nil).ImportSkeleton(doc)
	require.NoError(t, err)
	assert.Nil(t, skel)
	assert.Nil(t, jm)
}

func TestImportSkeletonZeroValueDefaults(t *testing.T) {
	doc := gltf.NewDocument()
	// A hand-built node with zero rotation and scale arrays, as a decoded
	// document leaves them when the file omits the fields.
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "bone"})
	doc.Skins = append(doc.Skins, &gltf.Skin{Joints: []uint32{0}})

	skel, _, err := NewSkeletonCodec(nil).ImportSkeleton(doc)
	require.NoError(t, err)
	b := skel.Bone(0)
	require.NotNil(t, b)
	assert.Equal(t, geom.Vector3{}, b.Transform.Rotation)
	assert.Equal(t, geom.Vector3{X: 1, Y: 1, Z: 1}, b.Transform.Scale, "zero scale reads as unit")
}

func TestImportSkeletonUnnamedJoints(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Nodes = append(doc.Nodes, &gltf.Node{}, &gltf.Node{Children: []uint32{0}})
	doc.Skins = append(doc.Skins, &gltf.Skin{Joints: []uint32{1, 0}})

	skel, _, err := NewSkeletonCodec(nil).ImportSkeleton(doc)
	require.NoError(t, err)
	assert.NotNil(t, skel.FindBone("Bone_0"))
	assert.NotNil(t, skel.FindBone("Bone_1"))
	// Joint slot 1 is node 0, whose parent is node 1 (slot 0).
	assert.Equal(t, 0, skel.Bone(1).ParentID)
}

func TestImportSkeletonBadJoint(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Skins = append(doc.Skins, &gltf.Skin{Joints: []uint32{5}})
	_, _, err := NewSkeletonCodec(nil).ImportSkeleton(doc)
	assert.Error(t, err)
}
