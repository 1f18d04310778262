package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatVector(t *testing.T) {
	assert.Equal(t, "[]", formatVector(nil))
	assert.Equal(t, "[1]", formatVector([]float32{1}))
	assert.Equal(t, "[0.5,-0.25,3]", formatVector([]float32{0.5, -0.25, 3}))
}

func TestParseVector(t *testing.T) {
	vec, err := parseVector("[0.5,-0.25,3]")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -0.25, 3}, vec)

	vec, err = parseVector(" [1, 2] ")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vec)

	vec, err = parseVector("[]")
	require.NoError(t, err)
	assert.Empty(t, vec)

	for _, bad := range []string{"", "1,2,3", "[1,x]", "[1,2"} {
		_, err := parseVector(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	in := []float32{0.123456, -0.987654, 0, 1}
	out, err := parseVector(formatVector(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 0}), "mismatched dimensions")
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, clampScore(-0.1))
	assert.Equal(t, 0.42, clampScore(0.42))
	assert.Equal(t, 1.0, clampScore(1.0001))
}
