package gltfconv

import (
	"strconv"
	"strings"

	"github.com/CharmingBlaze/meshkit/geom"
	"github.com/CharmingBlaze/meshkit/scene"
	gltfbinary "github.com/qmuntal/gltf/binary"
	"go.uber.org/zap"
)

// VertexLayout describes one interleaved vertex record. Attribute order
// is fixed: position, normal, uv, joints, weights; absent attributes
// collapse out of the stride.
type VertexLayout struct {
	HasNormal bool
	HasUV     bool
	HasJoints bool
	JointSize uint32 // bytes per joint index: 1 or 2

	Stride        uint32
	NormalOffset  uint32
	UVOffset      uint32
	JointsOffset  uint32
	WeightsOffset uint32
}

func newVertexLayout(hasNormal, hasUV, hasJoints bool, jointSize uint32) VertexLayout {
	l := VertexLayout{HasNormal: hasNormal, HasUV: hasUV, HasJoints: hasJoints, JointSize: jointSize}
	offset := uint32(12) // position vec3
	if hasNormal {
		l.NormalOffset = offset
		offset += 12
	}
	if hasUV {
		l.UVOffset = offset
		offset += 8
	}
	if hasJoints {
		l.JointsOffset = offset
		offset += 4 * jointSize
		l.WeightsOffset = offset
		offset += 16
	}
	l.Stride = offset
	return l
}

// VertexSkin is the packed influence set for one mesh vertex, joint
// slots already resolved and weights normalized.
type VertexSkin struct {
	Joints  [4]uint16
	Weights [4]float32
}

// PrimitiveBuffer is one GLTF primitive's worth of deduplicated,
// interleaved vertex data plus its triangle index list.
type PrimitiveBuffer struct {
	Layout      VertexLayout
	Blob        []byte
	VertexCount int
	Indices     []uint32

	// SlotVertexIDs maps each emitted vertex slot back to the mesh
	// vertex id it came from.
	SlotVertexIDs []int

	PosMin, PosMax [3]float32
}

// BuildPrimitiveBuffer flattens faces into triangles and packs their
// corners into an interleaved buffer, deduplicating corners whose whole
// attribute set matches at 6-decimal precision. Quads split along a
// fixed (0,1,2)(0,2,3) fan; larger polygons are ear-clipped. Degenerate
// faces are skipped with a warning.
func BuildPrimitiveBuffer(mesh *scene.Mesh, faces []*scene.Face, skin map[int]*VertexSkin, jointSize uint32, log *zap.Logger) *PrimitiveBuffer {
	if log == nil {
		log = zap.NewNop()
	}
	hasNormal, hasUV := false, false
	for _, f := range faces {
		for _, vid := range f.VertexIDs {
			if v := mesh.Vertex(vid); v != nil {
				if v.Normal != nil {
					hasNormal = true
				}
				if v.UV != nil {
					hasUV = true
				}
			}
		}
	}
	layout := newVertexLayout(hasNormal, hasUV, len(skin) > 0, jointSize)

	p := &PrimitiveBuffer{Layout: layout}
	slots := map[string]uint32{}
	var positions [][3]float32
	var normals [][3]float32
	var uvs [][2]float32
	var joints [][4]uint16
	var weights [][4]float32

	emit := func(vid int) (uint32, bool) {
		v := mesh.Vertex(vid)
		if v == nil {
			return 0, false
		}
		vs := skin[vid]
		key := vertexKey(v, vs)
		if slot, ok := slots[key]; ok {
			return slot, true
		}
		slot := uint32(p.VertexCount)
		slots[key] = slot
		p.VertexCount++
		p.SlotVertexIDs = append(p.SlotVertexIDs, vid)
		positions = append(positions, [3]float32{v.Position.X, v.Position.Y, v.Position.Z})
		if layout.HasNormal {
			var n [3]float32
			if v.Normal != nil {
				n = [3]float32{v.Normal.X, v.Normal.Y, v.Normal.Z}
			}
			normals = append(normals, n)
		}
		if layout.HasUV {
			var t [2]float32
			if v.UV != nil {
				t = [2]float32{v.UV.X, v.UV.Y}
			}
			uvs = append(uvs, t)
		}
		if layout.HasJoints {
			var j [4]uint16
			var w [4]float32
			if vs != nil {
				j, w = vs.Joints, vs.Weights
			}
			joints = append(joints, j)
			weights = append(weights, w)
		}
		updateBounds(p, v.Position, slot == 0)
		return slot, true
	}

	addTriangle := func(a, b, c int) {
		ia, ok1 := emit(a)
		ib, ok2 := emit(b)
		ic, ok3 := emit(c)
		if ok1 && ok2 && ok3 {
			p.Indices = append(p.Indices, ia, ib, ic)
		}
	}

	for _, f := range faces {
		ids := f.VertexIDs
		switch {
		case len(ids) < 3:
			log.Warn("skipping degenerate face", zap.Int("face", f.ID), zap.Int("corners", len(ids)))
		case len(ids) == 3:
			addTriangle(ids[0], ids[1], ids[2])
		case len(ids) == 4:
			addTriangle(ids[0], ids[1], ids[2])
			addTriangle(ids[0], ids[2], ids[3])
		default:
			poly := make([]*geom.Vector3, len(ids))
			valid := true
			for i, vid := range ids {
				v := mesh.Vertex(vid)
				if v == nil {
					valid = false
					break
				}
				poly[i] = &v.Position
			}
			if !valid {
				log.Warn("skipping face with unknown vertex", zap.Int("face", f.ID))
				continue
			}
			for _, tri := range geom.Triangulate(poly) {
				addTriangle(ids[tri[0]], ids[tri[1]], ids[tri[2]])
			}
		}
	}

	p.Blob = packInterleaved(layout, positions, normals, uvs, joints, weights)
	return p
}

// packInterleaved lays the collected attribute columns into one strided
// blob, one gltf binary write per attribute.
func packInterleaved(l VertexLayout, positions, normals [][3]float32, uvs [][2]float32, joints [][4]uint16, weights [][4]float32) []byte {
	blob := make([]byte, uint32(len(positions))*l.Stride)
	if len(positions) == 0 {
		return blob
	}
	gltfbinary.Write(blob, l.Stride, positions)
	if l.HasNormal {
		gltfbinary.Write(blob[l.NormalOffset:], l.Stride, normals)
	}
	if l.HasUV {
		gltfbinary.Write(blob[l.UVOffset:], l.Stride, uvs)
	}
	if l.HasJoints {
		if l.JointSize == 2 {
			gltfbinary.Write(blob[l.JointsOffset:], l.Stride, joints)
		} else {
			narrow := make([][4]uint8, len(joints))
			for i, j := range joints {
				narrow[i] = [4]uint8{uint8(j[0]), uint8(j[1]), uint8(j[2]), uint8(j[3])}
			}
			gltfbinary.Write(blob[l.JointsOffset:], l.Stride, narrow)
		}
		gltfbinary.Write(blob[l.WeightsOffset:], l.Stride, weights)
	}
	return blob
}

func updateBounds(p *PrimitiveBuffer, pos geom.Vector3, first bool) {
	v := [3]float32{pos.X, pos.Y, pos.Z}
	if first {
		p.PosMin, p.PosMax = v, v
		return
	}
	for c := 0; c < 3; c++ {
		if v[c] < p.PosMin[c] {
			p.PosMin[c] = v[c]
		}
		if v[c] > p.PosMax[c] {
			p.PosMax[c] = v[c]
		}
	}
}

// vertexKey builds the dedup key from every attribute rounded to six
// decimals, so corners that differ only by float noise share a slot.
func vertexKey(v *scene.Vertex, skin *VertexSkin) string {
	var sb strings.Builder
	appendRounded(&sb, v.Position.X, v.Position.Y, v.Position.Z)
	if v.Normal != nil {
		sb.WriteByte('n')
		appendRounded(&sb, v.Normal.X, v.Normal.Y, v.Normal.Z)
	}
	if v.UV != nil {
		sb.WriteByte('t')
		appendRounded(&sb, v.UV.X, v.UV.Y)
	}
	if skin != nil {
		sb.WriteByte('s')
		for i := 0; i < 4; i++ {
			sb.WriteString(strconv.FormatUint(uint64(skin.Joints[i]), 10))
			sb.WriteByte(':')
		}
		appendRounded(&sb, skin.Weights[0], skin.Weights[1], skin.Weights[2], skin.Weights[3])
	}
	return sb.String()
}

func appendRounded(sb *strings.Builder, values ...float32) {
	for _, v := range values {
		sb.WriteString(strconv.FormatFloat(float64(v), 'f', 6, 32))
		sb.WriteByte(',')
	}
}
