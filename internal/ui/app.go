package ui

import (
	"context"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"LocalPaint/internal/config"
	"LocalPaint/internal/logger"
	"LocalPaint/internal/paint"
)

// App is the main window with its canvas, controls and menus.
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	ctrl    *Controller
	board   *PaintWidget
	tools   *Tools
	share   *Share
	status  *widget.Label
	log     logger.Logger

	// OnQuit runs right before the application quits.
	OnQuit func(brush paint.Brush)
}

// NewApp builds the window. The canvas is canvasW x canvasH pixels and the
// window starts at the same size.
func NewApp(a fyne.App, cfg config.Config, brush paint.Brush, canvasW, canvasH int, log logger.Logger) *App {
	w := a.NewWindow(AppName)
	w.Resize(fyne.NewSize(float32(canvasW), float32(canvasH)))

	surface := paint.NewSurface(canvasW, canvasH)
	surface.Interpolate = cfg.Canvas.Interpolate

	app := &App{
		fyneApp: a,
		window:  w,
		status:  widget.NewLabel("Ready"),
		log:     log,
	}
	app.ctrl = NewController(surface, brush, NewWindowDialogs(w), app.quit, log, Options{
		QuickSaveName: cfg.Files.QuickSaveName,
		SaveDir:       cfg.Files.SaveDir,
	})
	app.board = NewPaintWidget(app.ctrl)
	app.share = NewShare(app.ctrl, cfg.Share, log)

	app.ctrl.OnChange = app.board.Repaint
	app.ctrl.OnStatus = app.SetStatus
	app.share.OnStatus = app.SetStatus

	tools, toolbar := NewToolbar(app.ctrl, w)
	app.tools = tools
	app.ctrl.OnShapeChange = tools.SetShape
	content := container.NewBorder(toolbar, app.status, nil, nil, container.NewScroll(app.board))
	w.SetContent(content)
	w.SetMainMenu(app.mainMenu())
	w.SetCloseIntercept(app.ctrl.Exit)
	return app
}

func (a *App) SetStatus(text string) {
	a.status.SetText(text)
}

func (a *App) mainMenu() *fyne.MainMenu {
	exit := fyne.NewMenuItem("Exit", a.ctrl.Exit)
	exit.IsQuit = true

	file := fyne.NewMenu("File",
		fyne.NewMenuItem("Open…", a.ctrl.Open),
		fyne.NewMenuItem("Save", a.ctrl.Save),
		fyne.NewMenuItem("Save As…", a.ctrl.SaveAs),
		fyne.NewMenuItem("Export PDF…", a.ctrl.ExportPDF),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Share Canvas", a.hostShare),
		fyne.NewMenuItem("Join Canvas…", a.joinShare),
		fyne.NewMenuItem("Leave Session", a.leaveShare),
		fyne.NewMenuItemSeparator(),
		exit,
	)
	edit := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Clear Canvas", func() {
			dialog.ShowConfirm("Clear", "Clear the whole canvas?", func(ok bool) {
				if ok {
					a.ctrl.Clear()
				}
			}, a.window)
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Brush", a.ctrl.SetBrushBrush),
		fyne.NewMenuItem("Pencil", a.ctrl.SetBrushPencil),
	)
	help := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", a.ctrl.About),
	)
	return fyne.NewMainMenu(file, edit, help)
}

func (a *App) hostShare() {
	link, err := a.share.Host()
	if err != nil {
		a.log.Error("share", err, nil)
		dialog.ShowError(err, a.window)
		return
	}
	a.window.Clipboard().SetContent(link)
	a.SetStatus("Sharing at " + link)
	dialog.ShowInformation("Canvas shared", "Others can join with:\n"+link+"\n\n(The link is on your clipboard.)", a.window)
}

func (a *App) joinShare() {
	a.SetStatus("Looking for shared canvases…")
	go func() {
		hosts, err := a.share.Discover()
		if err != nil {
			a.log.Warning("share", "discovery failed", map[string]interface{}{"error": err.Error()})
		}
		options := make([]string, 0, len(hosts))
		for _, h := range hosts {
			options = append(options, h.Addr)
		}
		fyne.Do(func() {
			a.SetStatus("Ready")
			a.showJoinForm(options)
		})
	}()
}

func (a *App) showJoinForm(options []string) {
	entry := widget.NewSelectEntry(options)
	entry.SetPlaceHolder("localpaint://host:port")
	if len(options) > 0 {
		entry.SetText(options[0])
	}
	items := []*widget.FormItem{widget.NewFormItem("Host", entry)}
	dialog.ShowForm("Join shared canvas", "Join", "Cancel", items, func(ok bool) {
		if ok {
			a.Join(entry.Text)
		}
	}, a.window)
}

// Join connects to a shared canvas, e.g. from a link given on the command line.
func (a *App) Join(link string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.share.Join(ctx, link); err != nil {
		a.log.Error("share", err, map[string]interface{}{"link": link})
		dialog.ShowError(err, a.window)
		return
	}
	a.SetStatus("Connected to " + link)
}

func (a *App) leaveShare() {
	if !a.share.Active() {
		a.SetStatus("Not in a shared session")
		return
	}
	a.share.Stop()
	a.SetStatus("Left the shared session")
}

func (a *App) quit() {
	a.share.Stop()
	if a.OnQuit != nil {
		a.OnQuit(a.ctrl.Brush())
	}
	a.fyneApp.Quit()
}

// ShowAndRun shows the window and blocks until the app quits.
func (a *App) ShowAndRun() {
	a.window.ShowAndRun()
}
