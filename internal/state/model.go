package state

import (
	"bytes"
	"errors"
	"fmt"

	"LocalPaint/internal/paint"
)

var ErrUnknownOp = errors.New("unknown operation")

type OpType string

const (
	OpDab    OpType = "dab"
	OpStroke OpType = "stroke"
	OpClear  OpType = "clear"
	OpImage  OpType = "image" // composited at the origin
	OpSync   OpType = "sync"  // replaces the whole canvas
)

// BrushSpec is the wire form of paint.Brush.
type BrushSpec struct {
	Color  string  `json:"color"`
	Size   float64 `json:"size"`
	Shape  string  `json:"shape"`
	Eraser bool    `json:"eraser,omitempty"`
}

func SpecOf(b paint.Brush) *BrushSpec {
	return &BrushSpec{
		Color:  paint.FormatHex(b.Color),
		Size:   b.Size,
		Shape:  b.Shape.String(),
		Eraser: b.Eraser,
	}
}

func (s *BrushSpec) Brush() (paint.Brush, error) {
	if s == nil {
		return paint.Brush{}, errors.New("missing brush")
	}
	col, err := paint.ParseHex(s.Color)
	if err != nil {
		return paint.Brush{}, err
	}
	shape, err := paint.ParseShape(s.Shape)
	if err != nil {
		return paint.Brush{}, err
	}
	b := paint.Brush{Color: col, Size: s.Size, Shape: shape, Eraser: s.Eraser}
	return b, b.Validate()
}

// Op is one change to the canvas, as exchanged with peers.
type Op struct {
	ID      string        `json:"id"`
	Type    OpType        `json:"type"`
	Brush   *BrushSpec    `json:"brush,omitempty"`
	Points  []paint.Point `json:"points,omitempty"`
	Image   []byte        `json:"image,omitempty"` // PNG
	Lamport uint64        `json:"lamport"`
	Site    string        `json:"site"`
}

func NewDabOp(b paint.Brush, p paint.Point) Op {
	return Op{Type: OpDab, Brush: SpecOf(b), Points: []paint.Point{p}}
}

func NewStrokeOp(b paint.Brush, from, to paint.Point) Op {
	return Op{Type: OpStroke, Brush: SpecOf(b), Points: []paint.Point{from, to}}
}

func NewClearOp() Op {
	return Op{Type: OpClear}
}

func NewImageOp(pngData []byte) Op {
	return Op{Type: OpImage, Image: pngData}
}

func NewSyncOp(pngData []byte) Op {
	return Op{Type: OpSync, Image: pngData}
}

// Apply replays the op on s.
func (op Op) Apply(s *paint.Surface) error {
	switch op.Type {
	case OpDab:
		b, err := op.Brush.Brush()
		if err != nil {
			return fmt.Errorf("op %s: %w", op.ID, err)
		}
		if len(op.Points) != 1 {
			return fmt.Errorf("op %s: dab needs 1 point, got %d", op.ID, len(op.Points))
		}
		return s.Dab(b, op.Points[0].X, op.Points[0].Y)
	case OpStroke:
		b, err := op.Brush.Brush()
		if err != nil {
			return fmt.Errorf("op %s: %w", op.ID, err)
		}
		if len(op.Points) != 2 {
			return fmt.Errorf("op %s: stroke needs 2 points, got %d", op.ID, len(op.Points))
		}
		return s.Stroke(b, op.Points[0], op.Points[1])
	case OpClear:
		s.Clear()
		return nil
	case OpImage, OpSync:
		img, _, err := paint.Decode(bytes.NewReader(op.Image))
		if err != nil {
			return fmt.Errorf("op %s: %w", op.ID, err)
		}
		if op.Type == OpSync {
			s.Clear()
		}
		s.Blit(img)
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownOp, op.Type)
}
