// Package paint holds the raster surface the canvas draws on and the pure
// drawing operations applied to it.
package paint

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
)

// ErrInvalidPoint is returned for coordinates that are NaN or infinite.
var ErrInvalidPoint = errors.New("invalid point")

// Point is a position in surface pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Surface is the pixel buffer behind the canvas. Cleared pixels are fully
// transparent.
type Surface struct {
	img *image.NRGBA

	// Interpolate fills the space between consecutive stroke samples.
	Interpolate bool
}

func NewSurface(width, height int) *Surface {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Surface{
		img:         image.NewNRGBA(image.Rect(0, 0, width, height)),
		Interpolate: true,
	}
}

// Image returns the live buffer. Callers must not keep it across draws if
// they need a stable copy; use Snapshot for that.
func (s *Surface) Image() *image.NRGBA { return s.img }

func (s *Surface) Bounds() image.Rectangle { return s.img.Bounds() }

// Footprint is the pixel rectangle a brush of the given size covers when
// centred on (x, y). A pixel is inside when its centre is.
func Footprint(size, x, y float64) image.Rectangle {
	ox, oy := x-size/2, y-size/2
	return image.Rect(
		int(math.Ceil(ox-0.5)), int(math.Ceil(oy-0.5)),
		int(math.Ceil(ox+size-0.5)), int(math.Ceil(oy+size-0.5)),
	)
}

// Dab stamps the brush once, centred on (x, y).
func (s *Surface) Dab(b Brush, x, y float64) error {
	if err := b.Validate(); err != nil {
		return err
	}
	p := Point{X: x, Y: y}
	if err := p.check(); err != nil {
		return err
	}
	s.dab(b, x, y)
	return nil
}

func (s *Surface) dab(b Brush, x, y float64) {
	if !s.reach(b.Size).contains(x, y) {
		return
	}
	r := Footprint(b.Size, x, y).Intersect(s.img.Bounds())
	if r.Empty() {
		return
	}
	switch {
	case b.Eraser:
		draw.Draw(s.img, r, image.Transparent, image.Point{}, draw.Src)
	case b.Shape == ShapeRect:
		draw.Draw(s.img, r, image.NewUniform(b.Color), image.Point{}, draw.Over)
	default:
		m := &ellipse{cx: x, cy: y, r: b.Size / 2}
		draw.DrawMask(s.img, r, image.NewUniform(b.Color), image.Point{}, m, r.Min, draw.Over)
	}
}

// Stroke continues a drag from one sample to the next. The starting sample
// is assumed to be painted already. Only the part of the segment that can
// touch the surface is stepped.
func (s *Surface) Stroke(b Brush, from, to Point) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := from.check(); err != nil {
		return err
	}
	if err := to.check(); err != nil {
		return err
	}
	if !s.Interpolate {
		s.dab(b, to.X, to.Y)
		return nil
	}
	t0, t1, ok := clipSegment(from, to, s.reach(b.Size))
	if !ok {
		return nil
	}
	dx, dy := to.X-from.X, to.Y-from.Y
	spacing := math.Max(1, b.Size/4)
	n := int(math.Ceil(math.Hypot(dx, dy) * (t1 - t0) / spacing))
	if n < 1 {
		n = 1
	}
	first := 0
	if t0 == 0 {
		first = 1
	}
	for i := first; i <= n; i++ {
		t := t0 + (t1-t0)*float64(i)/float64(n)
		s.dab(b, from.X+dx*t, from.Y+dy*t)
	}
	return nil
}

func (p Point) check() error {
	if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
		return fmt.Errorf("%w: (%v, %v)", ErrInvalidPoint, p.X, p.Y)
	}
	return nil
}

// box is an axis-aligned rectangle in surface coordinates.
type box struct {
	minX, minY, maxX, maxY float64
}

// reach is the area in which a dab centre can still touch a pixel.
func (s *Surface) reach(size float64) box {
	b := s.img.Bounds()
	return box{
		minX: float64(b.Min.X) - size, minY: float64(b.Min.Y) - size,
		maxX: float64(b.Max.X) + size, maxY: float64(b.Max.Y) + size,
	}
}

func (r box) contains(x, y float64) bool {
	return x >= r.minX && x <= r.maxX && y >= r.minY && y <= r.maxY
}

// clipSegment returns the parameter range of from->to that lies inside r
// (Liang-Barsky).
func clipSegment(from, to Point, r box) (t0, t1 float64, ok bool) {
	t0, t1 = 0, 1
	dx, dy := to.X-from.X, to.Y-from.Y
	edges := [4][2]float64{
		{-dx, from.X - r.minX},
		{dx, r.maxX - from.X},
		{-dy, from.Y - r.minY},
		{dy, r.maxY - from.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return 0, 0, false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return 0, 0, false
			}
			if t < t1 {
				t1 = t
			}
		}
	}
	return t0, t1, true
}

// Blit composites src onto the surface with its top-left corner at the
// origin. Nothing is scaled; whatever does not fit is clipped.
func (s *Surface) Blit(src image.Image) {
	sb := src.Bounds()
	draw.Draw(s.img, sb.Sub(sb.Min), src, sb.Min, draw.Over)
}

// Clear makes every pixel transparent.
func (s *Surface) Clear() {
	draw.Draw(s.img, s.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// Snapshot returns an independent copy of the current pixels.
func (s *Surface) Snapshot() *image.NRGBA {
	cp := image.NewNRGBA(s.img.Bounds())
	copy(cp.Pix, s.img.Pix)
	return cp
}

// ellipse is a circular alpha mask in surface coordinates.
type ellipse struct {
	cx, cy, r float64
}

func (e *ellipse) ColorModel() color.Model { return color.AlphaModel }

func (e *ellipse) Bounds() image.Rectangle {
	return Footprint(2*e.r, e.cx, e.cy)
}

func (e *ellipse) At(x, y int) color.Color {
	dx := (float64(x) + 0.5 - e.cx) / e.r
	dy := (float64(y) + 0.5 - e.cy) / e.r
	if dx*dx+dy*dy <= 1 {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}
