package ui

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"

	"LocalPaint/internal/export"
	"LocalPaint/internal/logger"
	"LocalPaint/internal/paint"
	"LocalPaint/internal/state"
)

const (
	AppName    = "LocalPaint"
	AppVersion = "1.1.0"

	component = "canvas"
)

var (
	pngFilter  = []string{".png"}
	openFilter = []string{".png", ".jpg", ".jpeg"}
	pdfFilter  = []string{".pdf"}
)

// Publisher forwards local ops to the rest of a shared session.
type Publisher interface {
	Publish(op state.Op) error
}

type Options struct {
	QuickSaveName string
	SaveDir       string
}

// Controller owns the surface and the brush. Widgets translate their events
// into calls on it; it never reads widget state itself. All methods must run
// on the UI goroutine.
type Controller struct {
	surface *paint.Surface
	brush   paint.Brush
	sizeErr error

	drawing bool
	last    paint.Point

	dialogs Dialogs
	quit    func()
	log     logger.Logger
	opts    Options

	journal   *state.Journal
	publisher Publisher

	OnChange      func()
	OnShapeChange func(paint.Shape)
	OnStatus      func(string)
}

func NewController(surface *paint.Surface, brush paint.Brush, dialogs Dialogs, quit func(), log logger.Logger, opts Options) *Controller {
	if opts.QuickSaveName == "" {
		opts.QuickSaveName = "paint.png"
	}
	if opts.SaveDir == "" {
		opts.SaveDir = "."
	}
	return &Controller{
		surface: surface,
		brush:   brush,
		dialogs: dialogs,
		quit:    quit,
		log:     log,
		opts:    opts,
		journal: state.NewJournal(state.NewClock()),
	}
}

func (c *Controller) Surface() *paint.Surface { return c.surface }

func (c *Controller) Brush() paint.Brush { return c.brush }

func (c *Controller) SetColor(col color.Color) {
	c.brush.Color = paint.ToNRGBA(col)
}

// SetSizeText takes the raw content of the size field. An invalid size is
// remembered and blocks drawing until a valid one arrives.
func (c *Controller) SetSizeText(text string) error {
	size, err := paint.ParseSize(text)
	if err != nil {
		c.sizeErr = err
		c.status(err.Error())
		return err
	}
	c.sizeErr = nil
	c.brush.Size = size
	return nil
}

func (c *Controller) SetEraser(on bool) {
	c.brush.Eraser = on
}

// SetBrushBrush switches to oval dabs.
func (c *Controller) SetBrushBrush() { c.setShape(paint.ShapeOval) }

// SetBrushPencil switches to square dabs.
func (c *Controller) SetBrushPencil() { c.setShape(paint.ShapeRect) }

func (c *Controller) setShape(s paint.Shape) {
	c.brush.Shape = s
	if c.OnShapeChange != nil {
		c.OnShapeChange(s)
	}
}

// Press paints a single dab where the pointer went down.
func (c *Controller) Press(p paint.Point) {
	if !c.canDraw() {
		return
	}
	if err := c.surface.Dab(c.brush, p.X, p.Y); err != nil {
		c.status(err.Error())
		return
	}
	c.drawing = true
	c.last = p
	c.publish(state.NewDabOp(c.brush, p))
	c.changed()
}

// DragTo continues the current stroke to p.
func (c *Controller) DragTo(p paint.Point) {
	if !c.drawing {
		c.Press(p)
		return
	}
	if !c.canDraw() {
		return
	}
	if err := c.surface.Stroke(c.brush, c.last, p); err != nil {
		c.status(err.Error())
		return
	}
	c.publish(state.NewStrokeOp(c.brush, c.last, p))
	c.last = p
	c.changed()
}

func (c *Controller) Release() {
	c.drawing = false
}

func (c *Controller) canDraw() bool {
	if c.sizeErr != nil {
		c.status(c.sizeErr.Error())
		return false
	}
	return true
}

// Clear wipes the canvas.
func (c *Controller) Clear() {
	c.surface.Clear()
	c.publish(state.NewClearOp())
	c.changed()
}

// QuickSavePath is the absolute path Save writes to.
func (c *Controller) QuickSavePath() (string, error) {
	return filepath.Abs(filepath.Join(c.opts.SaveDir, c.opts.QuickSaveName))
}

// Save writes the canvas to the quick save file.
func (c *Controller) Save() {
	path, err := c.QuickSavePath()
	if err == nil {
		err = c.writeSnapshot(path)
	}
	if err != nil {
		c.log.Error(component, err, map[string]interface{}{"op": "save"})
		c.dialogs.Error("Error saving", fmt.Errorf("unable to save: %w", err))
		return
	}
	c.log.Info(component, "canvas saved", map[string]interface{}{"path": path})
	c.dialogs.Info("Save successful.", "Image saved to "+path)
	c.status("Saved " + path)
}

func (c *Controller) writeSnapshot(path string) error {
	data, err := paint.PNGBytes(c.surface.Snapshot())
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// SaveAs asks where to write the canvas. The snapshot is taken before the
// dialog opens.
func (c *Controller) SaveAs() {
	data, err := paint.PNGBytes(c.surface.Snapshot())
	if err != nil {
		c.log.Error(component, err, map[string]interface{}{"op": "save as"})
		c.dialogs.Error("Error saving", fmt.Errorf("unable to save: %w", err))
		return
	}
	c.dialogs.SaveFile(pngFilter, "untitled.png", func(w io.WriteCloser, err error) {
		if err != nil {
			closeQuietly(w)
			c.dialogs.Error("Error saving", fmt.Errorf("unable to save: %w", err))
			return
		}
		if w == nil {
			c.dialogs.Info("Save As", "Please choose a filename.")
			return
		}
		name := nameOf(w)
		if err := writeAndClose(w, data); err != nil {
			c.log.Error(component, err, map[string]interface{}{"op": "save as", "path": name})
			c.dialogs.Error("Error saving", fmt.Errorf("unable to save: %w", err))
			return
		}
		c.log.Info(component, "canvas saved", map[string]interface{}{"path": name})
		c.status("Saved " + name)
	})
}

// Open composites a PNG or JPEG onto the canvas at the origin.
func (c *Controller) Open() {
	c.dialogs.OpenFile(openFilter, func(r io.ReadCloser, err error) {
		if err != nil {
			closeQuietly(r)
			c.dialogs.Error("Error opening", fmt.Errorf("unable to open file: %w", err))
			return
		}
		if r == nil {
			c.dialogs.Info("Open", "Please choose a file.")
			return
		}
		name := nameOf(r)
		img, _, err := paint.Decode(r)
		r.Close()
		if err != nil {
			c.log.Error(component, err, map[string]interface{}{"op": "open", "path": name})
			c.dialogs.Error("Error opening", fmt.Errorf("unable to open file: %w", err))
			return
		}
		c.surface.Blit(img)
		if c.publisher != nil {
			if data, err := paint.PNGBytes(img); err == nil {
				c.publish(state.NewImageOp(data))
			}
		}
		c.changed()
		c.log.Info(component, "image opened", map[string]interface{}{"path": name, "bounds": img.Bounds().String()})
		c.status("Opened " + name)
	})
}

// ExportPDF writes the canvas into a one page PDF.
func (c *Controller) ExportPDF() {
	snap := c.surface.Snapshot()
	c.dialogs.SaveFile(pdfFilter, "untitled.pdf", func(w io.WriteCloser, err error) {
		if err != nil {
			closeQuietly(w)
			c.dialogs.Error("Error exporting", err)
			return
		}
		if w == nil {
			c.dialogs.Info("Export PDF", "Please choose a filename.")
			return
		}
		name := nameOf(w)
		var buf bytes.Buffer
		if err := export.PDF(&buf, snap, AppName); err != nil {
			w.Close()
			c.dialogs.Error("Error exporting", err)
			return
		}
		if err := writeAndClose(w, buf.Bytes()); err != nil {
			c.log.Error(component, err, map[string]interface{}{"op": "export", "path": name})
			c.dialogs.Error("Error exporting", err)
			return
		}
		c.status("Exported " + name)
	})
}

// Exit quits after a positive confirmation.
func (c *Controller) Exit() {
	c.dialogs.Confirm("Exit", "Are you sure you want to exit?", func(ok bool) {
		if ok && c.quit != nil {
			c.quit()
		}
	})
}

func (c *Controller) About() {
	c.dialogs.Info("About "+AppName, fmt.Sprintf(
		"%s version: %s\n%s is a small paint program written in Go with Fyne.\n",
		AppName, AppVersion, AppName))
}

// SetPublisher attaches (or with nil detaches) a sharing session.
func (c *Controller) SetPublisher(p Publisher) {
	c.publisher = p
}

// ApplyRemote replays an op received from a peer.
func (c *Controller) ApplyRemote(op state.Op) {
	if !c.journal.Remote(op) {
		return
	}
	if err := op.Apply(c.surface); err != nil {
		c.log.Warning(component, "dropping remote op", map[string]interface{}{"id": op.ID, "error": err.Error()})
		return
	}
	if op.Type == state.OpSync {
		c.journal.Reset(op.ID)
	}
	c.changed()
}

// SnapshotOp is the op a newly joined peer needs to catch up.
func (c *Controller) SnapshotOp() (state.Op, bool) {
	data, err := paint.PNGBytes(c.surface.Snapshot())
	if err != nil {
		c.log.Error(component, err, map[string]interface{}{"op": "snapshot"})
		return state.Op{}, false
	}
	return c.journal.Local(state.NewSyncOp(data)), true
}

func (c *Controller) publish(op state.Op) {
	if c.publisher == nil {
		return
	}
	op = c.journal.Local(op)
	if err := c.publisher.Publish(op); err != nil {
		c.log.Warning("share", "publish failed", map[string]interface{}{"type": string(op.Type), "error": err.Error()})
	}
}

func (c *Controller) changed() {
	if c.OnChange != nil {
		c.OnChange()
	}
}

func (c *Controller) status(text string) {
	if c.OnStatus != nil {
		c.OnStatus(text)
	}
}

func nameOf(v interface{}) string {
	if u, ok := v.(interface{ URI() fyne.URI }); ok && u.URI() != nil {
		return u.URI().Path()
	}
	if f, ok := v.(interface{ Name() string }); ok {
		return f.Name()
	}
	return "file"
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

func writeAndClose(w io.WriteCloser, data []byte) error {
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// writeFileAtomic replaces path only once data is fully on disk.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
