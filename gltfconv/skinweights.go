package gltfconv

import (
	"fmt"

	"github.com/CharmingBlaze/meshkit/scene"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

// SkinWeightCodec converts between JOINTS_0/WEIGHTS_0 attribute pairs
// and scene skin weights.
type SkinWeightCodec struct {
	log *zap.Logger
}

func NewSkinWeightCodec(log *zap.Logger) *SkinWeightCodec {
	if log == nil {
		log = zap.NewNop()
	}
	return &SkinWeightCodec{log: log}
}

// ImportSkinWeights reads a primitive's JOINTS_0/WEIGHTS_0 pair into
// skin weights keyed by the mesh vertex ids that slotVertexIDs maps each
// GLTF vertex to. Joint slots resolve to bone ids through jm.
// Zero-weight influences are dropped. Returns (nil, nil) when the
// primitive carries no skinning attributes.
func (c *SkinWeightCodec) ImportSkinWeights(doc *gltf.Document, prim *gltf.Primitive, jm *JointMap, slotVertexIDs []int) (*scene.SkinWeights, error) {
	jointsIdx, hasJoints := prim.Attributes["JOINTS_0"]
	weightsIdx, hasWeights := prim.Attributes["WEIGHTS_0"]
	if !hasJoints || !hasWeights {
		return nil, nil
	}
	joints, err := ReadAccessorUint(doc, gltf.Index(jointsIdx))
	if err != nil {
		return nil, fmt.Errorf("gltfconv: JOINTS_0: %w", err)
	}
	weights, err := ReadAccessor(doc, gltf.Index(weightsIdx))
	if err != nil {
		return nil, fmt.Errorf("gltfconv: WEIGHTS_0: %w", err)
	}
	n := len(slotVertexIDs)
	if len(joints) != n*4 || len(weights) != n*4 {
		return nil, fmt.Errorf("gltfconv: skin attributes hold %d joints and %d weights for %d vertices",
			len(joints)/4, len(weights)/4, n)
	}

	sw := scene.NewSkinWeights()
	for i, vid := range slotVertexIDs {
		var influences []scene.BoneInfluence
		for k := 0; k < 4; k++ {
			w := weights[i*4+k]
			if w <= 0 {
				continue
			}
			slot := int(joints[i*4+k])
			if jm != nil && slot < len(jm.Joints) {
				influences = append(influences, scene.BoneInfluence{BoneID: jm.Joints[slot], Weight: w})
			} else {
				c.log.Warn("skin references joint outside the skin's joint list",
					zap.Int("joint", slot), zap.Int("vertex", vid))
			}
		}
		if influences != nil {
			sw.Set(vid, influences)
		}
	}
	return sw, nil
}

// ExportArrays packs skin weights into per-vertex joint/weight 4-tuples
// for the vertex buffer builder. Influences are capped at four and
// renormalized; influences on bones outside the joint map are dropped
// with a warning. jointSize is 2 when any joint slot exceeds a byte.
func (c *SkinWeightCodec) ExportArrays(sw *scene.SkinWeights, jm *JointMap) (map[int]*VertexSkin, uint32) {
	packed := map[int]*VertexSkin{}
	jointSize := uint32(1)
	if sw == nil || jm == nil {
		return packed, jointSize
	}
	for _, vid := range sw.VertexIDs() {
		influences := scene.NormalizedInfluences(sw.Get(vid))
		var vs VertexSkin
		slot := 0
		var dropped float32
		for _, inf := range influences {
			j, ok := jm.JointSlot(inf.BoneID)
			if !ok {
				c.log.Warn("skin weight references bone outside the skeleton",
					zap.Int("bone", inf.BoneID), zap.Int("vertex", vid))
				dropped += inf.Weight
				continue
			}
			vs.Joints[slot] = j
			vs.Weights[slot] = inf.Weight
			if j > 255 {
				jointSize = 2
			}
			slot++
		}
		if slot == 0 {
			continue
		}
		if dropped > 0 {
			// Renormalize the surviving weights back to 1.
			rest := 1 - dropped
			for k := 0; k < slot; k++ {
				vs.Weights[k] /= rest
			}
		}
		packed[vid] = &vs
	}
	return packed, jointSize
}
