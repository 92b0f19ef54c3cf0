package mesh

import (
	"fmt"

	"github.com/gekko3d/meshloop/meshrt/rt/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNoTriangles reports a geometry without a single index to draw.
var ErrNoTriangles = errors.New("scene has no triangles to draw")

// Primitive is one externally parsed primitive. Normals are index-aligned
// with Positions and Indices are local to this primitive.
type Primitive struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint32
}

// MeshPrimitive locates one primitive inside the packed buffers.
// VertexOffset and IndexOffset count elements, not bytes.
type MeshPrimitive struct {
	VertexOffset uint32
	IndexOffset  uint32
	IndexCount   uint32
}

// Geometry is the packed result of an ingestion, ready for upload.
type Geometry struct {
	ID         string
	Positions  []mgl32.Vec3
	Normals    []mgl32.Vec3
	Indices    []uint32
	Primitives []MeshPrimitive
	Bounds     core.AABB
}

type PrimitiveError struct {
	Index  int
	Reason string
}

func (e *PrimitiveError) Error() string {
	return fmt.Sprintf("primitive %d: %s", e.Index, e.Reason)
}

// Ingestor packs primitives into shared buffers. Progress, if set, is called
// after each primitive with the number done and the total.
type Ingestor struct {
	Progress func(done, total int)
}

func Ingest(prims []Primitive) (*Geometry, error) {
	return Ingestor{}.Ingest(prims)
}

func (in Ingestor) Ingest(prims []Primitive) (*Geometry, error) {
	g := &Geometry{
		ID:         uuid.NewString(),
		Primitives: make([]MeshPrimitive, 0, len(prims)),
		Bounds:     core.EmptyAABB(),
	}

	var vertexCount, indexCount int
	for i, p := range prims {
		if err := validate(i, p); err != nil {
			return nil, err
		}
		vertexCount += len(p.Positions)
		indexCount += len(p.Indices)
	}
	g.Positions = make([]mgl32.Vec3, 0, vertexCount)
	g.Normals = make([]mgl32.Vec3, 0, vertexCount)
	g.Indices = make([]uint32, 0, indexCount)

	for i, p := range prims {
		g.Primitives = append(g.Primitives, MeshPrimitive{
			VertexOffset: uint32(len(g.Positions)),
			IndexOffset:  uint32(len(g.Indices)),
			IndexCount:   uint32(len(p.Indices)),
		})

		g.Indices = append(g.Indices, p.Indices...)
		g.Positions = append(g.Positions, p.Positions...)
		g.Normals = append(g.Normals, p.Normals...)
		for _, pos := range p.Positions {
			g.Bounds = g.Bounds.Union(pos)
		}

		if in.Progress != nil {
			in.Progress(i+1, len(prims))
		}
	}
	return g, nil
}

func validate(i int, p Primitive) error {
	if len(p.Normals) != len(p.Positions) {
		return &PrimitiveError{Index: i, Reason: fmt.Sprintf("%d normals for %d positions", len(p.Normals), len(p.Positions))}
	}
	n := uint32(len(p.Positions))
	for _, idx := range p.Indices {
		if idx >= n {
			return &PrimitiveError{Index: i, Reason: fmt.Sprintf("index %d out of range for %d vertices", idx, n)}
		}
	}
	return nil
}

func (g *Geometry) VertexCount() int { return len(g.Positions) }

func (g *Geometry) IndexCount() int { return len(g.Indices) }

// CheckDrawable returns ErrNoTriangles when nothing in g can be drawn.
// GPU buffers cannot be created from empty data.
func (g *Geometry) CheckDrawable() error {
	if len(g.Indices) == 0 || len(g.Positions) == 0 {
		return ErrNoTriangles
	}
	return nil
}
