package gltfconv

import (
	"fmt"

	"github.com/CharmingBlaze/meshkit/geom"
	"github.com/CharmingBlaze/meshkit/scene"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

// JointMap ties skeleton bone ids to GLTF joint slots and node indices.
// Bone ids equal joint slots on import; on export the map records where
// each bone's node landed in the document.
type JointMap struct {
	Joints      []int // joint slot -> bone id
	boneToJoint map[int]uint16
	BoneToNode  map[int]uint32
	NodeToBone  map[uint32]int
}

// JointSlot returns the joint slot for a bone id.
func (jm *JointMap) JointSlot(boneID int) (uint16, bool) {
	slot, ok := jm.boneToJoint[boneID]
	return slot, ok
}

// SkeletonCodec converts between GLTF skins/nodes and scene skeletons.
type SkeletonCodec struct {
	log *zap.Logger
}

func NewSkeletonCodec(log *zap.Logger) *SkeletonCodec {
	if log == nil {
		log = zap.NewNop()
	}
	return &SkeletonCodec{log: log}
}

// ImportSkeleton builds a skeleton from the document's first skin. Bone
// ids are the skin's joint slots, so skin-weight joint indices map
// directly. Nodes without names get synthetic "Bone_{slot}" names.
// A document without a skin yields a nil skeleton and nil map.
func (c *SkeletonCodec) ImportSkeleton(doc *gltf.Document) (*scene.Skeleton, *JointMap, error) {
	if len(doc.Skins) == 0 {
		return nil, nil, nil
	}
	skin := doc.Skins[0]
	if len(doc.Skins) > 1 {
		c.log.Warn("document has multiple skins, importing the first", zap.Int("skins", len(doc.Skins)))
	}

	jm := &JointMap{
		boneToJoint: map[int]uint16{},
		BoneToNode:  map[int]uint32{},
		NodeToBone:  map[uint32]int{},
	}
	nodeToSlot := map[uint32]int{}
	for slot, node := range skin.Joints {
		if int(node) >= len(doc.Nodes) {
			return nil, nil, fmt.Errorf("gltfconv: skin joint %d references node %d of %d", slot, node, len(doc.Nodes))
		}
		nodeToSlot[node] = slot
		jm.Joints = append(jm.Joints, slot)
		jm.boneToJoint[slot] = uint16(slot)
		jm.BoneToNode[slot] = node
		jm.NodeToBone[node] = slot
	}

	skel := scene.NewSkeleton()
	// First pass creates every bone so parent links can resolve in any
	// joint order; AttachBone wires the hierarchy afterwards.
	for slot, nodeIndex := range skin.Joints {
		node := doc.Nodes[nodeIndex]
		name := node.Name
		if name == "" {
			name = fmt.Sprintf("Bone_%d", slot)
		}
		bone := scene.NewBone(slot, name)
		bone.Transform = nodeTransform(node)
		bone.Rest = bone.Transform
		bone.Bind = bone.Transform
		if err := skel.AddBone(bone); err != nil {
			return nil, nil, err
		}
	}
	for nodeIndex, parentSlot := range nodeToSlot {
		for _, child := range doc.Nodes[nodeIndex].Children {
			if childSlot, ok := nodeToSlot[child]; ok {
				if err := skel.AttachBone(childSlot, parentSlot); err != nil {
					return nil, nil, err
				}
			}
		}
	}
	return skel, jm, nil
}

// nodeTransform decodes a node TRS. GLTF zero values for rotation and
// scale come from Go's zero struct, not the file, so they normalize to
// identity and unit scale.
func nodeTransform(node *gltf.Node) scene.BoneTransform {
	t := scene.IdentityTransform()
	t.Position = geom.Vector3{X: node.Translation[0], Y: node.Translation[1], Z: node.Translation[2]}
	r := node.Rotation
	if r != [4]float32{} {
		q := geom.NewQuaternion(r[0], r[1], r[2], r[3]).Normalize()
		e := geom.NewEulerFromQuaternion(q, geom.StandardRotationOrder)
		t.Rotation = geom.Vector3{X: e.X, Y: e.Y, Z: e.Z}
	}
	if node.Scale != [3]float32{} {
		t.Scale = geom.Vector3{X: node.Scale[0], Y: node.Scale[1], Z: node.Scale[2]}
	}
	return t
}

// ExportSkeleton appends one node per bone (parents before children),
// wires the hierarchy, roots the trees in scene 0 and registers a skin
// with inverse bind matrices computed from the bind pose. Returns the
// skin index and the joint map for downstream codecs.
func (c *SkeletonCodec) ExportSkeleton(doc *gltf.Document, skel *scene.Skeleton) (uint32, *JointMap) {
	bones := skel.GetAllBones()
	jm := &JointMap{
		boneToJoint: map[int]uint16{},
		BoneToNode:  map[int]uint32{},
		NodeToBone:  map[uint32]int{},
	}

	skin := &gltf.Skin{}
	for slot, b := range bones {
		node := &gltf.Node{Name: b.Name}
		t := b.Transform
		node.Translation = [3]float32{t.Position.X, t.Position.Y, t.Position.Z}
		q := t.Quaternion().Normalize()
		node.Rotation = [4]float32{q.X, q.Y, q.Z, q.W}
		node.Scale = [3]float32{t.Scale.X, t.Scale.Y, t.Scale.Z}
		doc.Nodes = append(doc.Nodes, node)
		nodeIndex := uint32(len(doc.Nodes) - 1)

		jm.Joints = append(jm.Joints, b.ID)
		jm.boneToJoint[b.ID] = uint16(slot)
		jm.BoneToNode[b.ID] = nodeIndex
		jm.NodeToBone[nodeIndex] = b.ID
		skin.Joints = append(skin.Joints, nodeIndex)
	}
	for _, b := range bones {
		nodeIndex := jm.BoneToNode[b.ID]
		if b.ParentID == scene.NoBone {
			if len(doc.Scenes) > 0 {
				doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, nodeIndex)
			}
			if skin.Skeleton == nil {
				skin.Skeleton = gltf.Index(nodeIndex)
			}
			continue
		}
		parent := doc.Nodes[jm.BoneToNode[b.ParentID]]
		parent.Children = append(parent.Children, nodeIndex)
	}

	ibm := make([]float32, 0, 16*len(bones))
	for _, b := range bones {
		ibm = append(ibm, c.inverseBindMatrix(skel, b)...)
	}
	skin.InverseBindMatrices = gltf.Index(WriteAccessor(doc, ibm, gltf.AccessorMat4, gltf.TargetNone))

	doc.Skins = append(doc.Skins, skin)
	return uint32(len(doc.Skins) - 1), jm
}

// inverseBindMatrix inverts the bone's global bind matrix, accumulated
// root-down over its ancestor chain. A singular global matrix (usually a
// zero bind scale) falls back to identity with a warning.
func (c *SkeletonCodec) inverseBindMatrix(skel *scene.Skeleton, b *scene.Bone) []float32 {
	global := geom.NewMatrix4()
	for _, link := range skel.Chain(b.ID) {
		bind := link.Bind
		global = global.Mul(bind.Matrix())
	}
	inv := global.Inverse()
	if inv == nil {
		c.log.Warn("bind matrix is singular, writing identity inverse bind", zap.String("bone", b.Name))
		inv = geom.NewMatrix4()
	}
	out := make([]float32, 16)
	inv.ToArray(out)
	return out
}
