package plot

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmooth(t *testing.T) {
	values := []float64{0, 2, 4, 6}
	assert.Equal(t, []float64{0, 1, 3, 5}, Smooth(values, 2))
	assert.Equal(t, []float64{0, 1, 2, 4}, Smooth(values, 3))
	assert.Equal(t, values, Smooth(values, 1))
	assert.Empty(t, Smooth(nil, 4))
}

func TestLines(t *testing.T) {
	var out bytes.Buffer
	err := Lines(&out, "Episodic return", 5,
		Series{Name: "task 0", Values: []float64{0, 1, 1, 1}},
		Series{Name: "task 1", Values: []float64{0, 0, 1}},
	)
	require.NoError(t, err)

	html := out.String()
	assert.Contains(t, html, "Episodic return")
	assert.Contains(t, html, "task 0")
	assert.Contains(t, html, "task 1")

	assert.Error(t, Lines(&out, "empty", 1))
}
