package gltfconv

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/CharmingBlaze/meshkit/geom"
	"github.com/CharmingBlaze/meshkit/scene"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

// AnimationCodec converts between GLTF animations and scene clips.
// Track paths use "{targetName}.{property}"; node targets outside the
// skeleton get synthetic "Node_{index}" names that round-trip back to
// the same node index on export.
type AnimationCodec struct {
	log *zap.Logger
}

func NewAnimationCodec(log *zap.Logger) *AnimationCodec {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnimationCodec{log: log}
}

func trsProperty(path gltf.TRSProperty) (string, int) {
	switch path {
	case gltf.TRSTranslation:
		return "translation", 3
	case gltf.TRSRotation:
		return "rotation", 4
	case gltf.TRSScale:
		return "scale", 3
	case gltf.TRSWeights:
		return "weights", 0
	}
	return "", 0
}

func easingTag(interp gltf.Interpolation) string {
	switch interp {
	case gltf.InterpolationStep:
		return scene.EasingStep
	case gltf.InterpolationCubicSpline:
		return scene.EasingCubicSpline
	}
	return scene.EasingLinear
}

// ImportAnimations converts every animation into a clip, one track per
// channel in channel order. Rotation samplers convert quaternions to
// Euler angles. Cubic-spline samplers keep only the value element of
// each in/value/out triple. Channels whose target or sampler cannot be
// resolved are skipped with a warning.
func (c *AnimationCodec) ImportAnimations(doc *gltf.Document, jm *JointMap, skel *scene.Skeleton) ([]*scene.AnimationClip, error) {
	var clips []*scene.AnimationClip
	for ai, anim := range doc.Animations {
		name := anim.Name
		if name == "" {
			name = fmt.Sprintf("animation_%d", ai)
		}
		clip := scene.NewAnimationClip(name)
		for ci, ch := range anim.Channels {
			if ch.Sampler == nil || int(*ch.Sampler) >= len(anim.Samplers) {
				c.log.Warn("channel has no valid sampler", zap.String("animation", name), zap.Int("channel", ci))
				continue
			}
			if ch.Target.Node == nil {
				c.log.Warn("channel targets no node", zap.String("animation", name), zap.Int("channel", ci))
				continue
			}
			target := c.targetName(doc, jm, skel, *ch.Target.Node)
			prop, comps := trsProperty(ch.Target.Path)
			if prop == "" {
				c.log.Warn("unsupported channel target path",
					zap.String("animation", name), zap.String("path", string(ch.Target.Path)))
				continue
			}

			sampler := anim.Samplers[*ch.Sampler]
			times, err := ReadAccessor(doc, sampler.Input)
			if err != nil {
				return nil, fmt.Errorf("gltfconv: animation %q sampler input: %w", name, err)
			}
			values, err := ReadAccessor(doc, sampler.Output)
			if err != nil {
				return nil, fmt.Errorf("gltfconv: animation %q sampler output: %w", name, err)
			}
			easing := easingTag(sampler.Interpolation)
			if comps == 0 {
				// Morph weights: the per-keyframe width is however many
				// scalars the sampler holds per input time.
				comps = morphComponents(len(times), len(values), easing)
				if comps == 0 {
					c.log.Warn("weights channel with no derivable width",
						zap.String("animation", name), zap.Int("channel", ci))
					continue
				}
			}
			stride := comps
			valueAt := func(i int) []float32 {
				if easing == scene.EasingCubicSpline {
					// in-tangent, value, out-tangent triples; keep the value.
					return values[(i*3+1)*stride : (i*3+2)*stride]
				}
				return values[i*stride : (i+1)*stride]
			}
			need := len(times) * stride
			if easing == scene.EasingCubicSpline {
				need *= 3
			}
			if len(values) < need {
				return nil, fmt.Errorf("gltfconv: animation %q channel %d holds %d output values for %d keyframes",
					name, ci, len(values), len(times))
			}

			track := scene.NewAnimationTrack(target + "." + prop)
			for i := range times {
				v := valueAt(i)
				if prop == "rotation" {
					q := geom.NewQuaternionFromSlice(v).Normalize()
					e := geom.NewEulerFromQuaternion(q, geom.StandardRotationOrder)
					v = []float32{e.X, e.Y, e.Z}
				} else {
					v = append([]float32(nil), v...)
				}
				track.AddKeyframe(&scene.Keyframe{Time: times[i], Value: v, Easing: easing})
			}
			clip.AddTrack(track)
		}
		clips = append(clips, clip)
	}
	return clips, nil
}

func morphComponents(keyCount, valueCount int, easing string) int {
	if keyCount == 0 {
		return 0
	}
	n := valueCount / keyCount
	if easing == scene.EasingCubicSpline {
		n /= 3
	}
	return n
}

func (c *AnimationCodec) targetName(doc *gltf.Document, jm *JointMap, skel *scene.Skeleton, node uint32) string {
	if jm != nil && skel != nil {
		if boneID, ok := jm.NodeToBone[node]; ok {
			if b := skel.Bone(boneID); b != nil {
				return b.Name
			}
		}
	}
	if int(node) < len(doc.Nodes) && doc.Nodes[node].Name != "" {
		return doc.Nodes[node].Name
	}
	return fmt.Sprintf("Node_%d", node)
}

// resolveTargetNode maps a track target name back to a node index:
// skeleton bone name (exact or glob) first, then a node with that name,
// then the synthetic "Node_{index}" form.
func (c *AnimationCodec) resolveTargetNode(doc *gltf.Document, jm *JointMap, skel *scene.Skeleton, target string) (uint32, bool) {
	if skel != nil && jm != nil {
		if b := skel.FindBone(target); b != nil {
			if node, ok := jm.BoneToNode[b.ID]; ok {
				return node, true
			}
		}
	}
	for i, node := range doc.Nodes {
		if node.Name == target {
			return uint32(i), true
		}
	}
	if rest, ok := strings.CutPrefix(target, "Node_"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 0 && n < len(doc.Nodes) {
			return uint32(n), true
		}
	}
	return 0, false
}

// ExportAnimations appends one GLTF animation per clip. Rotation tracks
// convert Euler keyframes back to quaternions; a track's easing is taken
// from its first keyframe. Tracks whose target resolves to no node are
// skipped with a warning, and clips that lose every track are dropped.
func (c *AnimationCodec) ExportAnimations(doc *gltf.Document, clips []*scene.AnimationClip, jm *JointMap, skel *scene.Skeleton) {
	for _, clip := range clips {
		anim := &gltf.Animation{Name: clip.Name}
		for _, track := range clip.GetAllTracks() {
			target, prop := track.TargetAndProperty()
			if len(track.Keyframes) == 0 {
				continue
			}
			node, ok := c.resolveTargetNode(doc, jm, skel, target)
			if !ok {
				c.log.Warn("animation track targets nothing in the document",
					zap.String("clip", clip.Name), zap.String("track", track.Path))
				continue
			}
			var trs gltf.TRSProperty
			accType := gltf.AccessorVec3
			switch prop {
			case "translation":
				trs = gltf.TRSTranslation
			case "rotation":
				trs = gltf.TRSRotation
				accType = gltf.AccessorVec4
			case "scale":
				trs = gltf.TRSScale
			case "weights":
				trs = gltf.TRSWeights
				accType = gltf.AccessorScalar
			default:
				c.log.Warn("animation track drives a property GLTF cannot store",
					zap.String("clip", clip.Name), zap.String("track", track.Path))
				continue
			}

			times := make([]float32, 0, len(track.Keyframes))
			values := make([]float32, 0, len(track.Keyframes)*4)
			for _, k := range track.Keyframes {
				times = append(times, k.Time)
				switch prop {
				case "rotation":
					q := geom.NewEuler(k.Value[0], k.Value[1], k.Value[2], geom.StandardRotationOrder).ToQuaternion().Normalize()
					values = append(values, q.X, q.Y, q.Z, q.W)
				case "weights":
					values = append(values, k.Value...)
				default:
					values = append(values, k.Value[0], k.Value[1], k.Value[2])
				}
			}

			interp := gltf.InterpolationLinear
			if track.Keyframes[0].Easing == scene.EasingStep {
				interp = gltf.InterpolationStep
			}
			sampler := &gltf.AnimationSampler{
				Input:         gltf.Index(WriteAccessor(doc, times, gltf.AccessorScalar, gltf.TargetNone)),
				Output:        gltf.Index(WriteAccessor(doc, values, accType, gltf.TargetNone)),
				Interpolation: interp,
			}
			anim.Samplers = append(anim.Samplers, sampler)
			anim.Channels = append(anim.Channels, &gltf.Channel{
				Sampler: gltf.Index(uint32(len(anim.Samplers) - 1)),
				Target:  gltf.ChannelTarget{Node: gltf.Index(node), Path: trs},
			})
		}
		if len(anim.Channels) > 0 {
			doc.Animations = append(doc.Animations, anim)
		}
	}
}
