package paint

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidSize is returned when a brush size is not a positive finite number.
var ErrInvalidSize = errors.New("brush size must be a positive number")

// Shape is the footprint a brush leaves on the surface.
type Shape int

const (
	ShapeOval Shape = iota // "Brush"
	ShapeRect              // "Pencil"
)

// Label is the text shown on the shape selector.
func (s Shape) Label() string {
	if s == ShapeRect {
		return "Pencil"
	}
	return "Brush"
}

func (s Shape) String() string {
	if s == ShapeRect {
		return "pencil"
	}
	return "brush"
}

// ParseShape accepts "brush"/"oval" and "pencil"/"rect".
func ParseShape(text string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "brush", "oval":
		return ShapeOval, nil
	case "pencil", "rect":
		return ShapeRect, nil
	}
	return ShapeOval, fmt.Errorf("unknown brush shape %q", text)
}

// Brush is everything a dab needs to know.
type Brush struct {
	Color  color.NRGBA
	Size   float64
	Shape  Shape
	Eraser bool
}

func DefaultBrush() Brush {
	return Brush{
		Color: color.NRGBA{A: 255},
		Size:  10,
		Shape: ShapeOval,
	}
}

// Validate reports whether the brush can be used for drawing.
func (b Brush) Validate() error {
	return checkSize(b.Size)
}

// ParseSize parses the text of the size field.
func ParseSize(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, text)
	}
	if err := checkSize(v); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, text)
	}
	return v, nil
}

// MaxSize is the largest brush accepted, in pixels.
const MaxSize = 4096

func checkSize(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 || v > MaxSize {
		return ErrInvalidSize
	}
	return nil
}

// ToNRGBA converts any colour to a non-premultiplied RGBA value.
func ToNRGBA(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

// FormatHex renders a colour as #rrggbbaa.
func FormatHex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseHex accepts #rgb, #rrggbb and #rrggbbaa.
func ParseHex(text string) (color.NRGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(text), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]}) + "ff"
	case 6:
		s += "ff"
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", text)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", text)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
