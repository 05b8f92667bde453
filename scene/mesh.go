// Package scene holds the engine-side representation of a model:
// mesh geometry, materials, a bone forest, skin weights and keyframe
// animation clips. All containers are arenas addressed by stable integer
// ids with deterministic insertion order, so codecs that walk them emit
// byte-identical output for identical input.
package scene

import (
	"github.com/CharmingBlaze/meshkit/geom"
)

// NoMaterial marks a face that has no material assigned.
const NoMaterial = -1

// BoneInfluence binds a vertex to a bone by id. Weights are raw
// (pre-normalization) until SkinWeights.Normalize runs.
type BoneInfluence struct {
	BoneID int
	Weight float32
}

type Vertex struct {
	ID       int
	Position geom.Vector3
	Normal   *geom.Vector3
	UV       *geom.Vector2

	// Influences carries up to MaxInfluences raw bone weights attached
	// directly to the vertex. The authoritative skinning data for
	// import/export lives in SkinWeights.
	Influences []BoneInfluence
}

type Face struct {
	ID         int
	VertexIDs  []int
	MaterialID int // NoMaterial when unassigned
	Normal     *geom.Vector3
}

// Mesh owns its vertices, faces and materials.
type Mesh struct {
	Name string

	vertices  map[int]*Vertex
	faces     map[int]*Face
	materials map[int]*Material

	vertexOrder   []int
	faceOrder     []int
	materialOrder []int

	nextVertexID   int
	nextFaceID     int
	nextMaterialID int
}

func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:      name,
		vertices:  map[int]*Vertex{},
		faces:     map[int]*Face{},
		materials: map[int]*Material{},
	}
}

// AddVertex inserts a vertex and returns its id. Normal and uv may be nil.
func (m *Mesh) AddVertex(pos geom.Vector3, normal *geom.Vector3, uv *geom.Vector2) int {
	id := m.nextVertexID
	m.nextVertexID++
	m.vertices[id] = &Vertex{ID: id, Position: pos, Normal: normal, UV: uv}
	m.vertexOrder = append(m.vertexOrder, id)
	return id
}

// AddFace inserts a face over existing vertex ids. Faces with fewer than
// three unique resolvable vertices are degenerate and rejected (nil).
func (m *Mesh) AddFace(vertexIDs []int, materialID int) *Face {
	unique := map[int]bool{}
	for _, id := range vertexIDs {
		if _, ok := m.vertices[id]; !ok {
			return nil
		}
		unique[id] = true
	}
	if len(unique) < 3 {
		return nil
	}
	if materialID != NoMaterial {
		if _, ok := m.materials[materialID]; !ok {
			return nil
		}
	}
	id := m.nextFaceID
	m.nextFaceID++
	f := &Face{ID: id, VertexIDs: append([]int(nil), vertexIDs...), MaterialID: materialID}
	m.faces[id] = f
	m.faceOrder = append(m.faceOrder, id)
	return f
}

func (m *Mesh) AddMaterial(name string, opt MaterialOptions) *Material {
	id := m.nextMaterialID
	m.nextMaterialID++
	mat := newMaterial(id, name, opt)
	m.materials[id] = mat
	m.materialOrder = append(m.materialOrder, id)
	return mat
}

func (m *Mesh) Vertex(id int) *Vertex { return m.vertices[id] }

func (m *Mesh) Face(id int) *Face { return m.faces[id] }

func (m *Mesh) Material(id int) *Material { return m.materials[id] }

// Vertices returns all vertices in insertion order.
func (m *Mesh) Vertices() []*Vertex {
	out := make([]*Vertex, 0, len(m.vertexOrder))
	for _, id := range m.vertexOrder {
		out = append(out, m.vertices[id])
	}
	return out
}

func (m *Mesh) Faces() []*Face {
	out := make([]*Face, 0, len(m.faceOrder))
	for _, id := range m.faceOrder {
		out = append(out, m.faces[id])
	}
	return out
}

func (m *Mesh) Materials() []*Material {
	out := make([]*Material, 0, len(m.materialOrder))
	for _, id := range m.materialOrder {
		out = append(out, m.materials[id])
	}
	return out
}

func (m *Mesh) VertexCount() int { return len(m.vertices) }

func (m *Mesh) FaceCount() int { return len(m.faces) }

// FaceNormal returns the cached face normal, computing and caching it
// from the first three vertices when absent.
func (m *Mesh) FaceNormal(f *Face) *geom.Vector3 {
	if f.Normal != nil {
		return f.Normal
	}
	if len(f.VertexIDs) < 3 {
		return nil
	}
	a := m.vertices[f.VertexIDs[0]].Position
	b := m.vertices[f.VertexIDs[1]].Position
	c := m.vertices[f.VertexIDs[2]].Position
	f.Normal = b.Sub(&a).Cross(c.Sub(&a)).Normalize()
	return f.Normal
}

// BoundingBox returns the axis-aligned bounds over all vertices.
// ok is false for an empty mesh.
func (m *Mesh) BoundingBox() (min, max geom.Vector3, ok bool) {
	for i, id := range m.vertexOrder {
		p := m.vertices[id].Position
		if i == 0 {
			min, max = p, p
			continue
		}
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}
	return min, max, len(m.vertexOrder) > 0
}
