package mesh

import (
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument() *gltf.Document {
	doc := gltf.NewDocument()

	tri := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	triNormals := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	triIndices := modeler.WriteIndices(doc, []uint32{0, 1, 2})

	quadPos := modeler.WritePosition(doc, [][3]float32{{0, 0, -1}, {2, 0, -1}, {2, 2, -1}, {0, 2, -1}})
	quadIndices := modeler.WriteIndices(doc, []uint32{0, 1, 2, 0, 2, 3})

	linePos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {5, 5, 5}})

	doc.Meshes = []*gltf.Mesh{
		{
			Name: "tri",
			Primitives: []*gltf.Primitive{{
				Indices:    gltf.Index(triIndices),
				Attributes: gltf.Attribute{"POSITION": tri, "NORMAL": triNormals},
			}},
		},
		{
			Name: "quad",
			Primitives: []*gltf.Primitive{
				{
					Indices:    gltf.Index(quadIndices),
					Attributes: gltf.Attribute{"POSITION": quadPos},
				},
				{
					Mode:       gltf.PrimitiveLines,
					Attributes: gltf.Attribute{"POSITION": linePos},
				},
			},
		},
	}
	return doc
}

func TestFromDocument(t *testing.T) {
	res, err := FromDocument(testDocument())
	require.NoError(t, err)
	require.Len(t, res.Primitives, 2)
	assert.Equal(t, 1, res.Skipped)

	tri := res.Primitives[0]
	assert.Equal(t, []uint32{0, 1, 2}, tri.Indices)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, tri.Positions[1])
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, tri.Normals[2])

	quad := res.Primitives[1]
	assert.Len(t, quad.Positions, 4)
	require.Len(t, quad.Normals, 4)
	for _, n := range quad.Normals {
		assert.InDelta(t, 1, n.Z(), 1e-6, "computed normals face +Z")
	}

	g, err := Ingest(res.Primitives)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, g.Bounds.Min)
	assert.Equal(t, mgl32.Vec3{2, 2, 0}, g.Bounds.Max)
	assert.Equal(t, MeshPrimitive{VertexOffset: 3, IndexOffset: 3, IndexCount: 6}, g.Primitives[1])
}

func TestFromDocument_MissingPosition(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{{Attributes: gltf.Attribute{}}}}}

	_, err := FromDocument(doc)
	assert.ErrorContains(t, err, "POSITION")
}

func TestLoadGLTF_MissingFile(t *testing.T) {
	_, err := LoadGLTF(filepath.Join(t.TempDir(), "missing.gltf"))
	assert.Error(t, err)
}

func TestVertexNormals(t *testing.T) {
	positions := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0, -1}, {9, 9, 9}}
	normals := VertexNormals(positions, []uint32{0, 1, 2})

	for i := 0; i < 3; i++ {
		assert.InDelta(t, 1, normals[i].Y(), 1e-6)
	}
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, normals[3], "unreferenced vertex")
}

func TestFromDocument_AccessorOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		prim  func(doc *gltf.Document) *gltf.Primitive
		field string
	}{
		{
			name: "position",
			prim: func(doc *gltf.Document) *gltf.Primitive {
				return &gltf.Primitive{Attributes: gltf.Attribute{"POSITION": 7}}
			},
			field: "POSITION",
		},
		{
			name: "indices",
			prim: func(doc *gltf.Document) *gltf.Primitive {
				pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
				return &gltf.Primitive{Indices: gltf.Index(9), Attributes: gltf.Attribute{"POSITION": pos}}
			},
			field: "indices",
		},
		{
			name: "normal",
			prim: func(doc *gltf.Document) *gltf.Primitive {
				pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
				return &gltf.Primitive{Attributes: gltf.Attribute{"POSITION": pos, "NORMAL": 42}}
			},
			field: "NORMAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := gltf.NewDocument()
			doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{tt.prim(doc)}}}

			require.NotPanics(t, func() {
				_, err := FromDocument(doc)
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.field+" accessor")
			})
		})
	}
}
