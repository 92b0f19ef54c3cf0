package gpu

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassTransforms(t *testing.T) {
	transforms := make(passTransforms)
	u := &Uniform{Label: "Transform", Size: TransformSize}
	other := &Uniform{Label: "Other", Size: TransformSize}
	a := mgl32.Ident4()
	b := mgl32.Translate3D(1, 2, 3)

	write, err := transforms.set(u, a)
	require.NoError(t, err)
	assert.True(t, write, "first matrix is written")

	write, err = transforms.set(u, a)
	require.NoError(t, err)
	assert.False(t, write, "same matrix is only rebound")

	write, err = transforms.set(other, b)
	require.NoError(t, err)
	assert.True(t, write, "each uniform carries its own matrix")

	write, err = transforms.set(u, b)
	assert.ErrorContains(t, err, "Transform")
	assert.False(t, write)
	assert.Equal(t, a, transforms[u], "the first matrix is kept")
}
