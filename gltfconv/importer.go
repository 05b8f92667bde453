package gltfconv

import (
	"fmt"

	"github.com/CharmingBlaze/meshkit/geom"
	"github.com/CharmingBlaze/meshkit/scene"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

// Result is everything an import recovers from a document. Skeleton,
// SkinWeights and Animations stay nil/empty when the document carries
// none, or when their stage failed and was degraded to a warning.
type Result struct {
	Mesh        *scene.Mesh
	Skeleton    *scene.Skeleton
	SkinWeights *scene.SkinWeights
	Animations  []*scene.AnimationClip
}

// Importer drives a whole-document import. Mesh geometry errors fail
// the import; skeleton, skin-weight and animation failures degrade to a
// reduced result with a warning.
type Importer struct {
	Options ImportOptions

	log       *zap.Logger
	skeleton  *SkeletonCodec
	skin      *SkinWeightCodec
	animation *AnimationCodec
}

func NewImporter(log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{
		Options:   ImportOptions{Scale: 1},
		log:       log,
		skeleton:  NewSkeletonCodec(log),
		skin:      NewSkinWeightCodec(log),
		animation: NewAnimationCodec(log),
	}
}

// ImportFile opens a .gltf or .glb file and imports it.
func (imp *Importer) ImportFile(path string) (*Result, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltfconv: open %s: %w", path, err)
	}
	return imp.Import(doc)
}

// Import converts a document into one merged mesh plus optional
// skeleton, skin weights and animation clips.
func (imp *Importer) Import(doc *gltf.Document) (*Result, error) {
	name := "scene"
	if len(doc.Scenes) > 0 && doc.Scenes[0].Name != "" {
		name = doc.Scenes[0].Name
	}
	result := &Result{Mesh: scene.NewMesh(name)}

	skel, jm, err := imp.skeleton.ImportSkeleton(doc)
	if err != nil {
		imp.log.Warn("skeleton import failed, continuing without a skeleton", zap.Error(err))
	} else {
		result.Skeleton = skel
	}

	materialIDs := imp.importMaterials(doc, result.Mesh)

	for mi, m := range doc.Meshes {
		for pi, prim := range m.Primitives {
			if err := imp.importPrimitive(doc, prim, result, jm, materialIDs); err != nil {
				return nil, fmt.Errorf("gltfconv: mesh %d primitive %d: %w", mi, pi, err)
			}
		}
	}

	if result.Skeleton != nil || len(doc.Animations) > 0 {
		clips, err := imp.animation.ImportAnimations(doc, jm, result.Skeleton)
		if err != nil {
			imp.log.Warn("animation import failed, continuing without clips", zap.Error(err))
		} else {
			result.Animations = clips
		}
	}

	if s := imp.Options.Scale; s != 0 && s != 1 {
		ScaleResult(result, s)
	}
	if imp.Options.NormalizeWeights && result.SkinWeights != nil {
		result.SkinWeights.Normalize()
	}
	return result, nil
}

// ScaleResult multiplies every length-dimensioned value in place: mesh
// positions, bone translations across all three reference poses, and
// translation animation tracks. Rotations and scales are untouched.
func ScaleResult(res *Result, s float32) {
	if res.Mesh != nil {
		for _, v := range res.Mesh.Vertices() {
			v.Position = *v.Position.Scale(s)
		}
	}
	if res.Skeleton != nil {
		for _, b := range res.Skeleton.GetAllBones() {
			b.Transform.Position = *b.Transform.Position.Scale(s)
			b.Rest.Position = *b.Rest.Position.Scale(s)
			b.Bind.Position = *b.Bind.Position.Scale(s)
		}
	}
	for _, clip := range res.Animations {
		for _, track := range clip.GetAllTracks() {
			if _, prop := track.TargetAndProperty(); prop != "translation" {
				continue
			}
			for _, k := range track.Keyframes {
				for i := range k.Value {
					k.Value[i] *= s
				}
			}
		}
	}
}

func (imp *Importer) importMaterials(doc *gltf.Document, mesh *scene.Mesh) map[uint32]int {
	ids := map[uint32]int{}
	for i, mat := range doc.Materials {
		opt := scene.MaterialOptions{DoubleSided: mat.DoubleSided}
		if pbr := mat.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				c := *pbr.BaseColorFactor
				opt.BaseColor = &geom.Vector4{X: c[0], Y: c[1], Z: c[2], W: c[3]}
			}
			opt.Metallic = pbr.MetallicFactorOrDefault()
			opt.Roughness = pbr.RoughnessFactorOrDefault()
		}
		opt.Emissive = &geom.Vector3{X: mat.EmissiveFactor[0], Y: mat.EmissiveFactor[1], Z: mat.EmissiveFactor[2]}
		name := mat.Name
		if name == "" {
			name = fmt.Sprintf("material_%d", i)
		}
		ids[uint32(i)] = mesh.AddMaterial(name, opt).ID
	}
	return ids
}

// importPrimitive appends one primitive's triangles to the result mesh.
// Primitives without indices or with a non-triangle mode are skipped
// with a warning; malformed accessors are errors.
func (imp *Importer) importPrimitive(doc *gltf.Document, prim *gltf.Primitive, result *Result, jm *JointMap, materialIDs map[uint32]int) error {
	if prim.Mode != gltf.PrimitiveTriangles {
		imp.log.Warn("skipping non-triangle primitive", zap.Int("mode", int(prim.Mode)))
		return nil
	}
	if prim.Indices == nil {
		imp.log.Warn("skipping primitive without indices")
		return nil
	}

	var posIdx *uint32
	if pi, ok := prim.Attributes["POSITION"]; ok {
		posIdx = gltf.Index(pi)
	}
	positions, err := ReadAccessor(doc, posIdx)
	if err != nil {
		return fmt.Errorf("POSITION: %w", err)
	}
	if positions == nil {
		imp.log.Warn("skipping primitive without POSITION")
		return nil
	}
	var normIdx, uvIdx *uint32
	if ni, ok := prim.Attributes["NORMAL"]; ok {
		normIdx = gltf.Index(ni)
	}
	if ti, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvIdx = gltf.Index(ti)
	}
	normals, err := ReadAccessor(doc, normIdx)
	if err != nil {
		return fmt.Errorf("NORMAL: %w", err)
	}
	uvs, err := ReadAccessor(doc, uvIdx)
	if err != nil {
		return fmt.Errorf("TEXCOORD_0: %w", err)
	}

	count := len(positions) / 3
	if normals != nil && len(normals) != count*3 {
		return fmt.Errorf("NORMAL holds %d vertices, POSITION %d", len(normals)/3, count)
	}
	if uvs != nil && len(uvs) != count*2 {
		return fmt.Errorf("TEXCOORD_0 holds %d vertices, POSITION %d", len(uvs)/2, count)
	}

	materialID := scene.NoMaterial
	if prim.Material != nil {
		if id, ok := materialIDs[*prim.Material]; ok {
			materialID = id
		}
	}
	if materialID == scene.NoMaterial {
		materialID = imp.defaultMaterial(result.Mesh)
	}

	vertexIDs := make([]int, count)
	for i := 0; i < count; i++ {
		pos := geom.Vector3{X: positions[i*3], Y: positions[i*3+1], Z: positions[i*3+2]}
		var normal *geom.Vector3
		if normals != nil {
			normal = &geom.Vector3{X: normals[i*3], Y: normals[i*3+1], Z: normals[i*3+2]}
		}
		var uv *geom.Vector2
		if uvs != nil {
			uv = &geom.Vector2{X: uvs[i*2], Y: uvs[i*2+1]}
		}
		vertexIDs[i] = result.Mesh.AddVertex(pos, normal, uv)
	}

	indices, err := ReadAccessorUint(doc, prim.Indices)
	if err != nil {
		return fmt.Errorf("indices: %w", err)
	}
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if int(a) >= count || int(b) >= count || int(c) >= count {
			return fmt.Errorf("index %d out of range for %d vertices", max3(a, b, c), count)
		}
		result.Mesh.AddFace([]int{vertexIDs[a], vertexIDs[b], vertexIDs[c]}, materialID)
	}

	sw, err := imp.skin.ImportSkinWeights(doc, prim, jm, vertexIDs)
	if err != nil {
		imp.log.Warn("skin weight import failed, continuing unskinned", zap.Error(err))
	} else if sw != nil {
		if result.SkinWeights == nil {
			result.SkinWeights = sw
		} else {
			for _, vid := range sw.VertexIDs() {
				result.SkinWeights.Set(vid, sw.Get(vid))
			}
		}
	}
	return nil
}

func (imp *Importer) defaultMaterial(mesh *scene.Mesh) int {
	for _, m := range mesh.Materials() {
		if m.Name == "default" {
			return m.ID
		}
	}
	return mesh.AddMaterial("default", scene.MaterialOptions{}).ID
}

func max3(a, b, c uint32) uint32 {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}
