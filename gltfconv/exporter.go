package gltfconv

import (
	"fmt"

	"github.com/CharmingBlaze/meshkit/scene"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

// Exporter builds a GLTF document from scene data. Faces group into one
// primitive per material (first-appearance order), each primitive
// sharing a single interleaved vertex bufferView.
type Exporter struct {
	Options ExportOptions

	log       *zap.Logger
	skeleton  *SkeletonCodec
	skin      *SkinWeightCodec
	animation *AnimationCodec
}

func NewExporter(log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{
		Options:   ExportOptions{Scale: 1},
		log:       log,
		skeleton:  NewSkeletonCodec(log),
		skin:      NewSkinWeightCodec(log),
		animation: NewAnimationCodec(log),
	}
}

// Export converts a result bundle into a fresh document. A non-unit
// scale option rewrites src in place before building.
func (e *Exporter) Export(src *Result) (*gltf.Document, error) {
	if src == nil || src.Mesh == nil {
		return nil, fmt.Errorf("gltfconv: nothing to export")
	}
	if s := e.Options.Scale; s != 0 && s != 1 {
		ScaleResult(src, s)
	}
	doc := gltf.NewDocument()

	materialIndex := e.exportMaterials(doc, src.Mesh)

	var skinIndex *uint32
	var jm *JointMap
	if src.Skeleton != nil && src.Skeleton.BoneCount() > 0 {
		idx, m := e.skeleton.ExportSkeleton(doc, src.Skeleton)
		skinIndex = gltf.Index(idx)
		jm = m
	}

	var skin map[int]*VertexSkin
	jointSize := uint32(1)
	if src.SkinWeights != nil && jm != nil {
		skin, jointSize = e.skin.ExportArrays(src.SkinWeights, jm)
	}

	gm := &gltf.Mesh{Name: src.Mesh.Name}
	for _, group := range groupFacesByMaterial(src.Mesh) {
		prim, err := e.exportPrimitive(doc, src.Mesh, group.faces, skin, jointSize)
		if err != nil {
			return nil, err
		}
		if prim == nil {
			continue
		}
		if idx, ok := materialIndex[group.materialID]; ok {
			prim.Material = gltf.Index(idx)
		}
		gm.Primitives = append(gm.Primitives, prim)
	}
	doc.Meshes = append(doc.Meshes, gm)

	node := &gltf.Node{Name: src.Mesh.Name, Mesh: gltf.Index(uint32(len(doc.Meshes) - 1))}
	node.Skin = skinIndex
	doc.Nodes = append(doc.Nodes, node)
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))

	if len(src.Animations) > 0 {
		e.animation.ExportAnimations(doc, src.Animations, jm, src.Skeleton)
	}
	return doc, nil
}

func (e *Exporter) exportMaterials(doc *gltf.Document, mesh *scene.Mesh) map[int]uint32 {
	index := map[int]uint32{}
	for _, mat := range mesh.Materials() {
		metallic, roughness := mat.Metallic, mat.Roughness
		if e.Options.ForceUnlit {
			metallic, roughness = 0, 1
		}
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name: mat.Name,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float32{mat.BaseColor.X, mat.BaseColor.Y, mat.BaseColor.Z, mat.BaseColor.W},
				MetallicFactor:  gltf.Float(metallic),
				RoughnessFactor: gltf.Float(roughness),
			},
			EmissiveFactor: [3]float32{mat.Emissive.X, mat.Emissive.Y, mat.Emissive.Z},
			DoubleSided:    mat.DoubleSided,
		})
		index[mat.ID] = uint32(len(doc.Materials) - 1)
	}
	return index
}

type faceGroup struct {
	materialID int
	faces      []*scene.Face
}

// groupFacesByMaterial buckets faces by material, keeping materials in
// the order their first face appears and faces in mesh order.
func groupFacesByMaterial(mesh *scene.Mesh) []faceGroup {
	var groups []faceGroup
	at := map[int]int{}
	for _, f := range mesh.Faces() {
		i, ok := at[f.MaterialID]
		if !ok {
			i = len(groups)
			at[f.MaterialID] = i
			groups = append(groups, faceGroup{materialID: f.MaterialID})
		}
		groups[i].faces = append(groups[i].faces, f)
	}
	return groups
}

// exportPrimitive writes one face group as an indexed primitive over a
// shared interleaved bufferView. Returns nil when the group produced no
// triangles.
func (e *Exporter) exportPrimitive(doc *gltf.Document, mesh *scene.Mesh, faces []*scene.Face, skin map[int]*VertexSkin, jointSize uint32) (*gltf.Primitive, error) {
	pb := BuildPrimitiveBuffer(mesh, faces, skin, jointSize, e.log)
	if pb.VertexCount == 0 || len(pb.Indices) == 0 {
		return nil, nil
	}
	layout := pb.Layout
	bv := appendBufferView(doc, pb.Blob, layout.Stride, gltf.TargetArrayBuffer)
	count := uint32(pb.VertexCount)

	attrs := map[string]uint32{}
	pos := interleavedAccessor(doc, bv, 0, gltf.ComponentFloat, count, gltf.AccessorVec3, false)
	doc.Accessors[pos].Min = []float32{pb.PosMin[0], pb.PosMin[1], pb.PosMin[2]}
	doc.Accessors[pos].Max = []float32{pb.PosMax[0], pb.PosMax[1], pb.PosMax[2]}
	attrs["POSITION"] = pos
	if layout.HasNormal {
		attrs["NORMAL"] = interleavedAccessor(doc, bv, layout.NormalOffset, gltf.ComponentFloat, count, gltf.AccessorVec3, false)
	}
	if layout.HasUV {
		attrs["TEXCOORD_0"] = interleavedAccessor(doc, bv, layout.UVOffset, gltf.ComponentFloat, count, gltf.AccessorVec2, false)
	}
	if layout.HasJoints {
		jtype := gltf.ComponentUbyte
		if layout.JointSize == 2 {
			jtype = gltf.ComponentUshort
		}
		attrs["JOINTS_0"] = interleavedAccessor(doc, bv, layout.JointsOffset, jtype, count, gltf.AccessorVec4, false)
		attrs["WEIGHTS_0"] = interleavedAccessor(doc, bv, layout.WeightsOffset, gltf.ComponentFloat, count, gltf.AccessorVec4, false)
	}

	return &gltf.Primitive{
		Attributes: attrs,
		Indices:    gltf.Index(WriteIndices(doc, pb.Indices, pb.VertexCount)),
	}, nil
}
