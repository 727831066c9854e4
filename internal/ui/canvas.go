package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"LocalPaint/internal/paint"
)

// PaintWidget shows the surface and feeds pointer input to the controller.
// One surface pixel is one device independent pixel.
type PaintWidget struct {
	widget.BaseWidget
	ctrl  *Controller
	image *canvas.Image
}

var _ fyne.Widget = (*PaintWidget)(nil)
var _ fyne.Draggable = (*PaintWidget)(nil)
var _ desktop.Mouseable = (*PaintWidget)(nil)

func NewPaintWidget(ctrl *Controller) *PaintWidget {
	img := canvas.NewImageFromImage(ctrl.Surface().Image())
	img.FillMode = canvas.ImageFillStretch
	img.ScaleMode = canvas.ImageScalePixels

	w := &PaintWidget{ctrl: ctrl, image: img}
	w.ExtendBaseWidget(w)
	return w
}

func (w *PaintWidget) surfaceSize() fyne.Size {
	b := w.ctrl.Surface().Bounds()
	return fyne.NewSize(float32(b.Dx()), float32(b.Dy()))
}

func toPoint(pos fyne.Position) paint.Point {
	return paint.Point{X: float64(pos.X), Y: float64(pos.Y)}
}

// Repaint uploads the surface again after the controller changed it.
func (w *PaintWidget) Repaint() {
	w.image.Refresh()
}

func (w *PaintWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		w.ctrl.Press(toPoint(e.Position))
	}
}

func (w *PaintWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		w.ctrl.Release()
	}
}

func (w *PaintWidget) Dragged(e *fyne.DragEvent) {
	w.ctrl.DragTo(toPoint(e.Position))
}

func (w *PaintWidget) DragEnd() {
	w.ctrl.Release()
}

func (w *PaintWidget) CreateRenderer() fyne.WidgetRenderer {
	return &paintWidgetRenderer{
		widget:     w,
		background: canvas.NewRectangle(color.White),
	}
}

type paintWidgetRenderer struct {
	widget     *PaintWidget
	background *canvas.Rectangle
}

func (r *paintWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.background, r.widget.image}
}

// Layout pins the surface to the top-left corner at its natural size.
func (r *paintWidgetRenderer) Layout(fyne.Size) {
	size := r.widget.surfaceSize()
	r.background.Move(fyne.NewPos(0, 0))
	r.background.Resize(size)
	r.widget.image.Move(fyne.NewPos(0, 0))
	r.widget.image.Resize(size)
}

func (r *paintWidgetRenderer) MinSize() fyne.Size {
	return r.widget.surfaceSize()
}

func (r *paintWidgetRenderer) Refresh() {
	r.background.Refresh()
	r.widget.image.Refresh()
}

func (w *PaintWidget) MouseIn(*desktop.MouseEvent)    {}
func (w *PaintWidget) MouseOut()                      {}
func (w *PaintWidget) MouseMoved(*desktop.MouseEvent) {}
func (r *paintWidgetRenderer) Destroy()               {}
