package export

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LocalPaint/internal/paint"
)

func TestPDFWritesDocument(t *testing.T) {
	s := paint.NewSurface(300, 200)
	require.NoError(t, s.Dab(paint.Brush{Color: color.NRGBA{R: 255, A: 255}, Size: 40}, 150, 100))

	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, s.Snapshot(), "sketch"))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "/Subtype /Image")
	assert.True(t, bytes.HasSuffix(bytes.TrimSpace(out), []byte("%%EOF")))
}

func TestPDFRejectsEmptyImage(t *testing.T) {
	var buf bytes.Buffer
	err := PDF(&buf, image.NewNRGBA(image.Rectangle{}), "empty")
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestFitKeepsAspectRatioInsideMargins(t *testing.T) {
	p := gofpdf.New("L", "mm", "A4", "")
	left, top, right, bottom := p.GetMargins()
	pageW, pageH := p.GetPageSize()

	x, y, w, h := fit(p, 1600, 400)
	assert.InDelta(t, 4.0, w/h, 1e-9)
	assert.InDelta(t, pageW-left-right, w, 1e-9)
	assert.GreaterOrEqual(t, y, top)
	assert.LessOrEqual(t, y+h, pageH-bottom+1e-9)
	assert.InDelta(t, left, x, 1e-9)

	x, _, w, h = fit(p, 100, 400)
	assert.InDelta(t, 0.25, w/h, 1e-9)
	assert.InDelta(t, pageH-top-bottom, h, 1e-9)
	assert.Greater(t, x, left)
}
