package scene

import (
	"fmt"
	"path"
)

// Skeleton owns a forest of bones. Hierarchy is stored as ids inside the
// arena; cycle and dangling-parent invariants are enforced at mutation
// time, so traversal never has to re-check them.
type Skeleton struct {
	bones map[int]*Bone
	order []int // insertion order of bone ids
	poses map[string]map[int]BoneTransform
}

func NewSkeleton() *Skeleton {
	return &Skeleton{
		bones: map[int]*Bone{},
		poses: map[string]map[int]BoneTransform{},
	}
}

// AddBone inserts a bone. Its ParentID must be NoBone or refer to an
// existing bone; the child link is maintained here.
func (s *Skeleton) AddBone(b *Bone) error {
	if _, exists := s.bones[b.ID]; exists {
		return fmt.Errorf("skeleton: duplicate bone id %d", b.ID)
	}
	if b.ParentID != NoBone {
		parent, ok := s.bones[b.ParentID]
		if !ok {
			return fmt.Errorf("skeleton: bone %q references unknown parent %d", b.Name, b.ParentID)
		}
		parent.ChildIDs = append(parent.ChildIDs, b.ID)
	}
	s.bones[b.ID] = b
	s.order = append(s.order, b.ID)
	return nil
}

// AttachBone re-parents child under parent (NoBone detaches to root).
// Attaching a bone under its own descendant is rejected.
func (s *Skeleton) AttachBone(childID, parentID int) error {
	child, ok := s.bones[childID]
	if !ok {
		return fmt.Errorf("skeleton: unknown bone %d", childID)
	}
	if parentID != NoBone {
		if _, ok := s.bones[parentID]; !ok {
			return fmt.Errorf("skeleton: unknown parent %d", parentID)
		}
		for id := parentID; id != NoBone; id = s.bones[id].ParentID {
			if id == childID {
				return fmt.Errorf("skeleton: attaching bone %d under %d would create a cycle", childID, parentID)
			}
		}
	}
	if child.ParentID != NoBone {
		old := s.bones[child.ParentID]
		for i, id := range old.ChildIDs {
			if id == childID {
				old.ChildIDs = append(old.ChildIDs[:i], old.ChildIDs[i+1:]...)
				break
			}
		}
	}
	child.ParentID = parentID
	if parentID != NoBone {
		s.bones[parentID].ChildIDs = append(s.bones[parentID].ChildIDs, childID)
	}
	return nil
}

func (s *Skeleton) Bone(id int) *Bone { return s.bones[id] }

func (s *Skeleton) BoneCount() int { return len(s.bones) }

// Roots returns root bones in insertion order.
func (s *Skeleton) Roots() []*Bone {
	var roots []*Bone
	for _, id := range s.order {
		if b := s.bones[id]; b.ParentID == NoBone {
			roots = append(roots, b)
		}
	}
	return roots
}

// GetAllBones returns every bone, parents before children, stable across
// calls. This is the joint order used by the GLTF exporter.
func (s *Skeleton) GetAllBones() []*Bone {
	out := make([]*Bone, 0, len(s.bones))
	var walk func(b *Bone)
	walk = func(b *Bone) {
		out = append(out, b)
		for _, id := range b.ChildIDs {
			walk(s.bones[id])
		}
	}
	for _, r := range s.Roots() {
		walk(r)
	}
	return out
}

// FindBone matches by exact name first, then by path.Match glob pattern.
func (s *Skeleton) FindBone(pattern string) *Bone {
	for _, id := range s.order {
		if s.bones[id].Name == pattern {
			return s.bones[id]
		}
	}
	for _, id := range s.order {
		if ok, err := path.Match(pattern, s.bones[id].Name); err == nil && ok {
			return s.bones[id]
		}
	}
	return nil
}

// Chain returns the ancestor chain from a root down to (and including)
// the given bone.
func (s *Skeleton) Chain(id int) []*Bone {
	var chain []*Bone
	for cur := id; cur != NoBone; {
		b, ok := s.bones[cur]
		if !ok {
			break
		}
		chain = append(chain, b)
		cur = b.ParentID
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// SavePose snapshots every bone's current transform under a name. The
// snapshot is a deep copy keyed by bone id, independent of later edits.
func (s *Skeleton) SavePose(name string) {
	pose := make(map[int]BoneTransform, len(s.bones))
	for id, b := range s.bones {
		pose[id] = b.Transform
	}
	s.poses[name] = pose
}

// ApplyPose restores a named pose. Bones added after the snapshot keep
// their current transform; deleted bones are skipped.
func (s *Skeleton) ApplyPose(name string) bool {
	pose, ok := s.poses[name]
	if !ok {
		return false
	}
	for id, t := range pose {
		if b, exists := s.bones[id]; exists {
			b.Transform = t
		}
	}
	return true
}

func (s *Skeleton) PoseNames() []string {
	names := make([]string, 0, len(s.poses))
	for n := range s.poses {
		names = append(names, n)
	}
	return names
}

// ResetToRest copies every bone's rest transform into its current pose.
func (s *Skeleton) ResetToRest() {
	for _, b := range s.bones {
		b.Transform = b.Rest
	}
}
