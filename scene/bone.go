package scene

import "github.com/CharmingBlaze/meshkit/geom"

// NoBone is the ParentID of a root bone.
const NoBone = -1

// BoneTransform is a local TRS transform. Rotation is Euler angles in
// radians using geom.StandardRotationOrder.
type BoneTransform struct {
	Position geom.Vector3
	Rotation geom.Vector3
	Scale    geom.Vector3
}

func IdentityTransform() BoneTransform {
	return BoneTransform{Scale: geom.Vector3{X: 1, Y: 1, Z: 1}}
}

// Matrix composes translation * rotation * scale.
func (t *BoneTransform) Matrix() *geom.Matrix4 {
	q := geom.NewEuler(t.Rotation.X, t.Rotation.Y, t.Rotation.Z, geom.StandardRotationOrder).ToQuaternion()
	return geom.NewTRSMatrix4(&t.Position, q, &t.Scale)
}

// Quaternion returns the rotation part as a unit quaternion.
func (t *BoneTransform) Quaternion() *geom.Quaternion {
	return geom.NewEuler(t.Rotation.X, t.Rotation.Y, t.Rotation.Z, geom.StandardRotationOrder).ToQuaternion()
}

// Bone is a node in the skeleton arena. Parent/child relations are held
// as ids, never pointers, so snapshots and external references stay valid
// while the skeleton is edited.
type Bone struct {
	ID       int
	Name     string
	ParentID int
	ChildIDs []int

	// Transform is the current pose; Rest and Bind are fixed reference
	// poses (Bind feeds the inverse-bind-matrix export).
	Transform BoneTransform
	Rest      BoneTransform
	Bind      BoneTransform
}

func NewBone(id int, name string) *Bone {
	return &Bone{
		ID:        id,
		Name:      name,
		ParentID:  NoBone,
		Transform: IdentityTransform(),
		Rest:      IdentityTransform(),
		Bind:      IdentityTransform(),
	}
}

// GetProperty implements PropertyTarget.
func (b *Bone) GetProperty(name string) ([]float32, bool) {
	switch name {
	case "translation":
		return []float32{b.Transform.Position.X, b.Transform.Position.Y, b.Transform.Position.Z}, true
	case "rotation":
		return []float32{b.Transform.Rotation.X, b.Transform.Rotation.Y, b.Transform.Rotation.Z}, true
	case "scale":
		return []float32{b.Transform.Scale.X, b.Transform.Scale.Y, b.Transform.Scale.Z}, true
	}
	return nil, false
}

// SetProperty implements PropertyTarget.
func (b *Bone) SetProperty(name string, value []float32) bool {
	if len(value) < 3 {
		return false
	}
	v := geom.Vector3{X: value[0], Y: value[1], Z: value[2]}
	switch name {
	case "translation":
		b.Transform.Position = v
	case "rotation":
		b.Transform.Rotation = v
	case "scale":
		b.Transform.Scale = v
	default:
		return false
	}
	return true
}
