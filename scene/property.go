package scene

// PropertyTarget is implemented by anything an animation track can drive.
// Property names are the last segment of a track path ("translation",
// "baseColor", ...). Values are flat float32 slices whose length depends
// on the property.
type PropertyTarget interface {
	GetProperty(name string) ([]float32, bool)
	SetProperty(name string, value []float32) bool
}

var (
	_ PropertyTarget = (*Bone)(nil)
	_ PropertyTarget = (*Material)(nil)
)
