package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// LoadResult is the primitive list read from a glTF document.
type LoadResult struct {
	Primitives []Primitive
	// Skipped counts primitives that are not triangle lists.
	Skipped int
}

// LoadGLTF reads every triangle-list primitive of every mesh in document
// order. Node transforms are not applied.
func LoadGLTF(path string) (*LoadResult, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open scene %s", path)
	}
	return FromDocument(doc)
}

func FromDocument(doc *gltf.Document) (*LoadResult, error) {
	res := &LoadResult{}
	for mi, m := range doc.Meshes {
		for pi, p := range m.Primitives {
			if p.Mode != gltf.PrimitiveTriangles {
				res.Skipped++
				continue
			}
			prim, err := readPrimitive(doc, p)
			if err != nil {
				return nil, errors.Wrapf(err, "mesh %d (%s) primitive %d", mi, m.Name, pi)
			}
			res.Primitives = append(res.Primitives, prim)
		}
	}
	return res, nil
}

func readPrimitive(doc *gltf.Document, p *gltf.Primitive) (Primitive, error) {
	posIdx, ok := p.Attributes["POSITION"]
	if !ok {
		return Primitive{}, errors.New("missing POSITION attribute")
	}
	acc, err := accessor(doc, "POSITION", posIdx)
	if err != nil {
		return Primitive{}, err
	}
	raw, err := modeler.ReadPosition(doc, acc, nil)
	if err != nil {
		return Primitive{}, errors.Wrap(err, "read positions")
	}
	prim := Primitive{Positions: toVec3(raw)}

	if p.Indices != nil {
		acc, err := accessor(doc, "indices", *p.Indices)
		if err != nil {
			return Primitive{}, err
		}
		prim.Indices, err = modeler.ReadIndices(doc, acc, nil)
		if err != nil {
			return Primitive{}, errors.Wrap(err, "read indices")
		}
	} else {
		prim.Indices = make([]uint32, len(prim.Positions))
		for i := range prim.Indices {
			prim.Indices[i] = uint32(i)
		}
	}

	if nIdx, ok := p.Attributes["NORMAL"]; ok {
		acc, err := accessor(doc, "NORMAL", nIdx)
		if err != nil {
			return Primitive{}, err
		}
		rawN, err := modeler.ReadNormal(doc, acc, nil)
		if err != nil {
			return Primitive{}, errors.Wrap(err, "read normals")
		}
		prim.Normals = toVec3(rawN)
	} else {
		prim.Normals = VertexNormals(prim.Positions, prim.Indices)
	}
	return prim, nil
}

func accessor(doc *gltf.Document, name string, idx uint32) (*gltf.Accessor, error) {
	if int(idx) >= len(doc.Accessors) || doc.Accessors[idx] == nil {
		return nil, errors.Errorf("%s accessor %d out of range (%d accessors)", name, idx, len(doc.Accessors))
	}
	return doc.Accessors[idx], nil
}

// VertexNormals computes area-weighted per-vertex normals for a triangle
// list. Vertices not referenced by any triangle get +Y.
func VertexNormals(positions []mgl32.Vec3, indices []uint32) []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(positions))
	n := uint32(len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if a >= n || b >= n || c >= n {
			continue
		}
		// Unnormalized cross product weights by triangle area.
		face := positions[b].Sub(positions[a]).Cross(positions[c].Sub(positions[a]))
		normals[a] = normals[a].Add(face)
		normals[b] = normals[b].Add(face)
		normals[c] = normals[c].Add(face)
	}
	for i, v := range normals {
		if v.Len() == 0 {
			normals[i] = mgl32.Vec3{0, 1, 0}
			continue
		}
		normals[i] = v.Normalize()
	}
	return normals
}

func toVec3(raw [][3]float32) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(raw))
	for i, v := range raw {
		out[i] = mgl32.Vec3(v)
	}
	return out
}
