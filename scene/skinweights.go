package scene

import "sort"

// MaxInfluences is the per-vertex influence cap enforced at export time.
const MaxInfluences = 4

// SkinWeights maps mesh vertex ids to bone influences. Bones are
// referenced by id value, so the data stays meaningful when the skeleton
// is edited later; stale ids resolve to nothing at use time.
type SkinWeights struct {
	weights map[int][]BoneInfluence
}

func NewSkinWeights() *SkinWeights {
	return &SkinWeights{weights: map[int][]BoneInfluence{}}
}

// Set replaces all influences of a vertex.
func (s *SkinWeights) Set(vertexID int, influences []BoneInfluence) {
	s.weights[vertexID] = append([]BoneInfluence(nil), influences...)
}

// Add appends one influence to a vertex.
func (s *SkinWeights) Add(vertexID, boneID int, weight float32) {
	s.weights[vertexID] = append(s.weights[vertexID], BoneInfluence{BoneID: boneID, Weight: weight})
}

func (s *SkinWeights) Get(vertexID int) []BoneInfluence {
	return s.weights[vertexID]
}

func (s *SkinWeights) VertexCount() int { return len(s.weights) }

// VertexIDs returns the skinned vertex ids in ascending order.
func (s *SkinWeights) VertexIDs() []int {
	ids := make([]int, 0, len(s.weights))
	for id := range s.weights {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// NormalizedInfluences returns up to MaxInfluences influences sorted by
// descending weight, renormalized to sum to 1. Vertices with no positive
// weight return nil (all-zero on export). The stored data is unchanged.
func NormalizedInfluences(influences []BoneInfluence) []BoneInfluence {
	kept := make([]BoneInfluence, 0, len(influences))
	for _, inf := range influences {
		if inf.Weight > 0 {
			kept = append(kept, inf)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Weight > kept[j].Weight })
	if len(kept) > MaxInfluences {
		kept = kept[:MaxInfluences]
	}
	var sum float32
	for _, inf := range kept {
		sum += inf.Weight
	}
	for i := range kept {
		kept[i].Weight /= sum
	}
	return kept
}

// Normalize rewrites every vertex entry with its normalized form.
func (s *SkinWeights) Normalize() {
	for id, influences := range s.weights {
		s.weights[id] = NormalizedInfluences(influences)
	}
}
