package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAABB_Empty(t *testing.T) {
	b := EmptyAABB()
	assert.True(t, b.IsEmpty())
	assert.Equal(t, mgl32.Vec3{}, b.Center())

	b = b.Union(mgl32.Vec3{1, 2, 3})
	require.False(t, b.IsEmpty())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, b.Min)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, b.Max)
}

func TestAABB_UnionIsTight(t *testing.T) {
	points := []mgl32.Vec3{
		{0, 0.5, -2},
		{0.5, -0.5, -2},
		{-0.5, -0.5, -2},
		{3, 7, -11},
		{-4, 1, 6},
	}

	b := EmptyAABB()
	for _, p := range points {
		b = b.Union(p)
	}

	for axis := 0; axis < 3; axis++ {
		assert.LessOrEqual(t, b.Min[axis], b.Max[axis])
	}
	for _, p := range points {
		assert.True(t, b.Contains(p), "box should contain %v", p)
	}

	// Pulling any face inward by a small amount must exclude some point.
	const eps = 1e-3
	for axis := 0; axis < 3; axis++ {
		shrunk := b
		shrunk.Min[axis] += eps
		assert.False(t, containsAll(shrunk, points), "min face %d is not tight", axis)

		shrunk = b
		shrunk.Max[axis] -= eps
		assert.False(t, containsAll(shrunk, points), "max face %d is not tight", axis)
	}

	assert.Equal(t, mgl32.Vec3{-4, -0.5, -11}, b.Min)
	assert.Equal(t, mgl32.Vec3{3, 7, 6}, b.Max)
	assert.Equal(t, mgl32.Vec3{-0.5, 3.25, -2.5}, b.Center())
	assert.Equal(t, mgl32.Vec3{7, 7.5, 17}, b.Extent())
}

func TestAABB_Merge(t *testing.T) {
	a := EmptyAABB().Union(mgl32.Vec3{0, 0, 0}).Union(mgl32.Vec3{1, 1, 1})
	b := EmptyAABB().Union(mgl32.Vec3{-1, 2, 0.5})

	m := a.Merge(b)
	assert.Equal(t, mgl32.Vec3{-1, 0, 0}, m.Min)
	assert.Equal(t, mgl32.Vec3{1, 2, 1}, m.Max)

	assert.Equal(t, a, a.Merge(EmptyAABB()))
}

func containsAll(b AABB, points []mgl32.Vec3) bool {
	for _, p := range points {
		if !b.Contains(p) {
			return false
		}
	}
	return true
}
