package scene

import (
	"sort"
	"strings"
)

// Keyframe is one timestamped value. Value length depends on the target
// property: 3 for translation/rotation/scale, variable for morph
// weights, 1 for scalars.
type Keyframe struct {
	Time   float32
	Value  []float32
	Easing string // "linear", "step" or "cubicspline"
}

const (
	EasingLinear      = "linear"
	EasingStep        = "step"
	EasingCubicSpline = "cubicspline"
)

// AnimationTrack is an ordered keyframe sequence for one property path
// of the form "{targetName}.{propertyName}".
type AnimationTrack struct {
	Path      string
	Keyframes []*Keyframe
}

func NewAnimationTrack(path string) *AnimationTrack {
	return &AnimationTrack{Path: path}
}

// TargetAndProperty splits the path at its last dot, so target names may
// themselves contain dots.
func (t *AnimationTrack) TargetAndProperty() (string, string) {
	i := strings.LastIndex(t.Path, ".")
	if i < 0 {
		return t.Path, ""
	}
	return t.Path[:i], t.Path[i+1:]
}

// AddKeyframe inserts a keyframe keeping times non-decreasing. Equal
// times keep insertion order.
func (t *AnimationTrack) AddKeyframe(k *Keyframe) {
	if k.Time < 0 {
		k.Time = 0
	}
	i := sort.Search(len(t.Keyframes), func(i int) bool { return t.Keyframes[i].Time > k.Time })
	t.Keyframes = append(t.Keyframes, nil)
	copy(t.Keyframes[i+1:], t.Keyframes[i:])
	t.Keyframes[i] = k
}

// Sample returns the track value at time tm using the keyframes' easing.
// Before the first key it returns the first value, after the last the
// last value. Cubic-spline tracks sample linearly between stored values.
func (t *AnimationTrack) Sample(tm float32) []float32 {
	if len(t.Keyframes) == 0 {
		return nil
	}
	keys := t.Keyframes
	if tm <= keys[0].Time {
		return append([]float32(nil), keys[0].Value...)
	}
	last := keys[len(keys)-1]
	if tm >= last.Time {
		return append([]float32(nil), last.Value...)
	}
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time > tm }) - 1
	k0, k1 := keys[i], keys[i+1]
	if k0.Easing == EasingStep || k1.Time == k0.Time {
		return append([]float32(nil), k0.Value...)
	}
	f := (tm - k0.Time) / (k1.Time - k0.Time)
	out := make([]float32, len(k0.Value))
	for c := range out {
		v1 := k0.Value[c]
		if c < len(k1.Value) {
			out[c] = v1 + (k1.Value[c]-v1)*f
		} else {
			out[c] = v1
		}
	}
	return out
}

// AnimationClip is a named set of tracks, unique by property path.
type AnimationClip struct {
	Name string
	Loop bool

	tracks   []*AnimationTrack
	byPath   map[string]int
	duration float32
	explicit bool
}

func NewAnimationClip(name string) *AnimationClip {
	return &AnimationClip{Name: name, byPath: map[string]int{}}
}

// AddTrack inserts a track; a track with the same path is replaced in
// place. Returns true when an existing track was replaced.
func (c *AnimationClip) AddTrack(t *AnimationTrack) bool {
	if i, ok := c.byPath[t.Path]; ok {
		c.tracks[i] = t
		return true
	}
	c.byPath[t.Path] = len(c.tracks)
	c.tracks = append(c.tracks, t)
	return false
}

func (c *AnimationClip) Track(path string) *AnimationTrack {
	if i, ok := c.byPath[path]; ok {
		return c.tracks[i]
	}
	return nil
}

// GetAllTracks returns tracks in insertion order.
func (c *AnimationClip) GetAllTracks() []*AnimationTrack {
	return append([]*AnimationTrack(nil), c.tracks...)
}

func (c *AnimationClip) TrackCount() int { return len(c.tracks) }

// SetDuration pins an explicit duration; Duration stops deriving it.
func (c *AnimationClip) SetDuration(d float32) {
	c.duration = d
	c.explicit = true
}

// Duration is the explicit duration if set, otherwise the maximum
// keyframe time across all tracks.
func (c *AnimationClip) Duration() float32 {
	if c.explicit {
		return c.duration
	}
	var max float32
	for _, t := range c.tracks {
		if n := len(t.Keyframes); n > 0 {
			if tm := t.Keyframes[n-1].Time; tm > max {
				max = tm
			}
		}
	}
	return max
}

// Apply samples every track at time tm and writes the values through the
// PropertyTarget resolved for each track's target name. Unresolvable
// targets are skipped.
func (c *AnimationClip) Apply(tm float32, resolve func(target string) PropertyTarget) {
	for _, tr := range c.tracks {
		target, prop := tr.TargetAndProperty()
		if prop == "" {
			continue
		}
		obj := resolve(target)
		if obj == nil {
			continue
		}
		if v := tr.Sample(tm); v != nil {
			obj.SetProperty(prop, v)
		}
	}
}
