package ui

import (
	"image/color"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"LocalPaint/internal/paint"
)

var palette = []color.Color{
	color.Black,
	color.White,
	color.NRGBA{R: 255, A: 255},
	color.NRGBA{G: 255, A: 255},
	color.NRGBA{B: 255, A: 255},
	color.NRGBA{R: 255, G: 255, A: 255},
}

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	rect     *canvas.Rectangle
	OnTapped func(color.Color)
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	rect := canvas.NewRectangle(c)
	rect.SetMinSize(fyne.NewSize(28, 28))
	s := &colorSwatch{rect: rect, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) Color() color.Color { return s.rect.FillColor }

func (s *colorSwatch) SetColor(c color.Color) {
	s.rect.FillColor = c
	s.rect.Refresh()
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(s.rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color())
	}
}

// Tools holds the brush controls so the app can keep them in sync with
// the controller.
type Tools struct {
	current *colorSwatch
	size    *widget.Entry
	eraser  *widget.Check
	shape   *widget.Button
}

// NewToolbar builds the brush controls: colour, size, eraser and shape.
func NewToolbar(ctrl *Controller, win fyne.Window) (*Tools, fyne.CanvasObject) {
	t := &Tools{}
	brush := ctrl.Brush()

	// --- Colour ---
	t.current = newColorSwatch(brush.Color, nil)
	t.current.OnTapped = func(c color.Color) {
		picker := dialog.NewColorPicker("Brush colour", "Pick a colour for the brush", func(c color.Color) {
			ctrl.SetColor(c)
			t.current.SetColor(c)
		}, win)
		picker.Advanced = true
		picker.SetColor(c)
		picker.Show()
	}
	onColorTapped := func(c color.Color) {
		ctrl.SetColor(c)
		t.current.SetColor(c)
	}
	colorBox := container.NewHBox()
	for _, c := range palette {
		colorBox.Add(newColorSwatch(c, onColorTapped))
	}

	// --- Size ---
	t.size = widget.NewEntry()
	t.size.SetText(strconv.FormatFloat(brush.Size, 'f', -1, 64))
	t.size.Validator = func(text string) error {
		_, err := paint.ParseSize(text)
		return err
	}
	t.size.OnChanged = func(text string) {
		_ = ctrl.SetSizeText(text)
	}
	sizeContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(90, 36)), t.size)

	// --- Eraser ---
	t.eraser = widget.NewCheck("Eraser", ctrl.SetEraser)
	t.eraser.SetChecked(brush.Eraser)

	// --- Shape ---
	shapeMenu := fyne.NewMenu("",
		fyne.NewMenuItem(paint.ShapeOval.Label(), ctrl.SetBrushBrush),
		fyne.NewMenuItem(paint.ShapeRect.Label(), ctrl.SetBrushPencil),
	)
	t.shape = widget.NewButton(brush.Shape.Label(), nil)
	t.shape.OnTapped = func() {
		pos := fyne.CurrentApp().Driver().AbsolutePositionForObject(t.shape)
		widget.ShowPopUpMenuAtPosition(shapeMenu, win.Canvas(), pos.Add(fyne.NewPos(0, t.shape.Size().Height)))
	}

	return t, container.NewHBox(
		widget.NewLabel("Color:"),
		t.current,
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sizeContainer,
		t.eraser,
		widget.NewSeparator(),
		t.shape,
		layout.NewSpacer(),
	)
}

// SetShape updates the label of the shape selector.
func (t *Tools) SetShape(s paint.Shape) {
	t.shape.SetText(s.Label())
}
