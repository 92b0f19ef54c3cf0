package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Triangle returns the built-in single-triangle scene. The second vertex
// stream carries red, green and blue vertex colors instead of normals; it
// is drawn with the triangle shader library.
func Triangle() []Primitive {
	return []Primitive{{
		Positions: []mgl32.Vec3{
			{0, 0.5, -2},
			{0.5, -0.5, -2},
			{-0.5, -0.5, -2},
		},
		Normals: []mgl32.Vec3{
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
		},
		Indices: []uint32{0, 1, 2},
	}}
}
