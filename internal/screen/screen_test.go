package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanvasSize(t *testing.T) {
	w, h := CanvasSize(1920, 1080, 1.5)
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)

	w, h = CanvasSize(2560, 1440, 2)
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)

	w, h = CanvasSize(800, 600, 0)
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)

	w, h = CanvasSize(0, 0, 1.5)
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}
