package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackAddKeyframeSorted(t *testing.T) {
	tr := NewAnimationTrack("root.translation")
	tr.AddKeyframe(&Keyframe{Time: 2, Value: []float32{2, 0, 0}})
	tr.AddKeyframe(&Keyframe{Time: 0, Value: []float32{0, 0, 0}})
	tr.AddKeyframe(&Keyframe{Time: 1, Value: []float32{1, 0, 0}})
	tr.AddKeyframe(&Keyframe{Time: -5, Value: []float32{9, 0, 0}})

	times := make([]float32, 0, len(tr.Keyframes))
	for _, k := range tr.Keyframes {
		times = append(times, k.Time)
	}
	assert.Equal(t, []float32{0, 0, 1, 2}, times, "negative times clamp to zero")
}

func TestTrackTargetAndProperty(t *testing.T) {
	tr := NewAnimationTrack("mixamorig.Spine.rotation")
	target, prop := tr.TargetAndProperty()
	assert.Equal(t, "mixamorig.Spine", target)
	assert.Equal(t, "rotation", prop)

	target, prop = NewAnimationTrack("noproperty").TargetAndProperty()
	assert.Equal(t, "noproperty", target)
	assert.Equal(t, "", prop)
}

func TestTrackSample(t *testing.T) {
	tr := NewAnimationTrack("b.translation")
	tr.AddKeyframe(&Keyframe{Time: 0, Value: []float32{0, 0, 0}, Easing: EasingLinear})
	tr.AddKeyframe(&Keyframe{Time: 2, Value: []float32{4, 0, 0}, Easing: EasingLinear})

	assert.Equal(t, []float32{0, 0, 0}, tr.Sample(-1), "clamps before first key")
	assert.Equal(t, []float32{4, 0, 0}, tr.Sample(99), "clamps after last key")
	assert.InDelta(t, 2.0, float64(tr.Sample(1)[0]), 1e-6)
}

func TestTrackSampleStep(t *testing.T) {
	tr := NewAnimationTrack("b.translation")
	tr.AddKeyframe(&Keyframe{Time: 0, Value: []float32{0, 0, 0}, Easing: EasingStep})
	tr.AddKeyframe(&Keyframe{Time: 2, Value: []float32{4, 0, 0}, Easing: EasingStep})
	assert.Equal(t, []float32{0, 0, 0}, tr.Sample(1.9), "step holds the previous value")
}

func TestClipAddTrackReplacesDuplicatePath(t *testing.T) {
	c := NewAnimationClip("walk")
	t1 := NewAnimationTrack("root.translation")
	t2 := NewAnimationTrack("root.translation")
	t3 := NewAnimationTrack("root.rotation")

	assert.False(t, c.AddTrack(t1))
	assert.False(t, c.AddTrack(t3))
	assert.True(t, c.AddTrack(t2), "same path replaces")
	assert.Equal(t, 2, c.TrackCount())
	assert.Same(t, t2, c.Track("root.translation"))

	tracks := c.GetAllTracks()
	require.Len(t, tracks, 2)
	assert.Equal(t, "root.translation", tracks[0].Path, "replacement keeps position")
}

func TestClipDuration(t *testing.T) {
	c := NewAnimationClip("clip")
	assert.Equal(t, float32(0), c.Duration())

	tr := NewAnimationTrack("root.translation")
	tr.AddKeyframe(&Keyframe{Time: 1.5, Value: []float32{0, 0, 0}})
	tr.AddKeyframe(&Keyframe{Time: 0.5, Value: []float32{0, 0, 0}})
	c.AddTrack(tr)
	assert.InDelta(t, 1.5, float64(c.Duration()), 1e-6)

	c.SetDuration(3)
	assert.Equal(t, float32(3), c.Duration(), "explicit duration wins")
}

func TestClipApply(t *testing.T) {
	bone := NewBone(0, "root")
	c := NewAnimationClip("clip")
	tr := NewAnimationTrack("root.translation")
	tr.AddKeyframe(&Keyframe{Time: 0, Value: []float32{0, 0, 0}, Easing: EasingLinear})
	tr.AddKeyframe(&Keyframe{Time: 1, Value: []float32{2, 0, 0}, Easing: EasingLinear})
	c.AddTrack(tr)

	missing := NewAnimationTrack("gone.translation")
	missing.AddKeyframe(&Keyframe{Time: 0, Value: []float32{9, 9, 9}})
	c.AddTrack(missing)

	c.Apply(0.5, func(target string) PropertyTarget {
		if target == "root" {
			return bone
		}
		return nil
	})
	assert.InDelta(t, 1.0, float64(bone.Transform.Position.X), 1e-6)
}
