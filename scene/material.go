package scene

import "github.com/CharmingBlaze/meshkit/geom"

// Material carries the pbrMetallicRoughness subset used by the GLTF codec.
type Material struct {
	ID   int
	Name string

	BaseColor   geom.Vector4
	Metallic    float32
	Roughness   float32
	Emissive    geom.Vector3
	DoubleSided bool
}

type MaterialOptions struct {
	BaseColor   *geom.Vector4
	Metallic    float32
	Roughness   float32
	Emissive    *geom.Vector3
	DoubleSided bool
}

func newMaterial(id int, name string, opt MaterialOptions) *Material {
	mat := &Material{
		ID:        id,
		Name:      name,
		BaseColor: geom.Vector4{X: 1, Y: 1, Z: 1, W: 1},
		Metallic:  opt.Metallic,
		Roughness: opt.Roughness,

		DoubleSided: opt.DoubleSided,
	}
	if opt.BaseColor != nil {
		mat.BaseColor = *opt.BaseColor
	}
	if opt.Emissive != nil {
		mat.Emissive = *opt.Emissive
	}
	return mat
}

// GetProperty implements PropertyTarget.
func (m *Material) GetProperty(name string) ([]float32, bool) {
	switch name {
	case "baseColor":
		return []float32{m.BaseColor.X, m.BaseColor.Y, m.BaseColor.Z, m.BaseColor.W}, true
	case "metallic":
		return []float32{m.Metallic}, true
	case "roughness":
		return []float32{m.Roughness}, true
	case "emissive":
		return []float32{m.Emissive.X, m.Emissive.Y, m.Emissive.Z}, true
	}
	return nil, false
}

// SetProperty implements PropertyTarget.
func (m *Material) SetProperty(name string, value []float32) bool {
	switch name {
	case "baseColor":
		if len(value) < 4 {
			return false
		}
		m.BaseColor = geom.Vector4{X: value[0], Y: value[1], Z: value[2], W: value[3]}
	case "metallic":
		if len(value) < 1 {
			return false
		}
		m.Metallic = value[0]
	case "roughness":
		if len(value) < 1 {
			return false
		}
		m.Roughness = value[0]
	case "emissive":
		if len(value) < 3 {
			return false
		}
		m.Emissive = geom.Vector3{X: value[0], Y: value[1], Z: value[2]}
	default:
		return false
	}
	return true
}
