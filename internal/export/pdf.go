// Package export renders the canvas into document formats.
package export

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/jung-kurt/gofpdf"

	"LocalPaint/internal/paint"
)

const imageName = "canvas"

// PDF writes img onto a single A4 page, scaled to fit inside the margins
// with its aspect ratio kept. Wide canvases get a landscape page.
func PDF(w io.Writer, img image.Image, title string) error {
	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("export pdf: empty image")
	}
	orientation := "P"
	if b.Dx() > b.Dy() {
		orientation = "L"
	}

	data, err := paint.PNGBytes(img)
	if err != nil {
		return fmt.Errorf("export pdf: %w", err)
	}

	p := gofpdf.New(orientation, "mm", "A4", "")
	p.SetTitle(title, true)
	p.SetCreator("LocalPaint", true)
	p.AddPage()

	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(data))

	x, y, width, height := fit(p, float64(b.Dx()), float64(b.Dy()))
	p.ImageOptions(imageName, x, y, width, height, false, opt, 0, "")

	if err := p.Output(w); err != nil {
		return fmt.Errorf("export pdf: %w", err)
	}
	return nil
}

// fit centres a w x h pixel image inside the printable area of the page.
func fit(p *gofpdf.Fpdf, w, h float64) (x, y, width, height float64) {
	pageW, pageH := p.GetPageSize()
	left, top, right, bottom := p.GetMargins()
	areaW := pageW - left - right
	areaH := pageH - top - bottom

	scale := areaW / w
	if s := areaH / h; s < scale {
		scale = s
	}
	width, height = w*scale, h*scale
	x = left + (areaW-width)/2
	y = top + (areaH-height)/2
	return x, y, width, height
}
