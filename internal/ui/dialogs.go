package ui

import (
	"io"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// Dialogs is everything the controller asks the user. A nil writer or
// reader with a nil error means the user cancelled.
type Dialogs interface {
	Info(title, message string)
	Error(title string, err error)
	Confirm(title, message string, onResult func(bool))
	SaveFile(extensions []string, fileName string, onChosen func(io.WriteCloser, error))
	OpenFile(extensions []string, onChosen func(io.ReadCloser, error))
}

type windowDialogs struct {
	window fyne.Window
}

func NewWindowDialogs(w fyne.Window) Dialogs {
	return &windowDialogs{window: w}
}

func (d *windowDialogs) Info(title, message string) {
	dialog.ShowInformation(title, message, d.window)
}

func (d *windowDialogs) Error(_ string, err error) {
	dialog.ShowError(err, d.window)
}

func (d *windowDialogs) Confirm(title, message string, onResult func(bool)) {
	dialog.ShowConfirm(title, message, onResult, d.window)
}

func (d *windowDialogs) SaveFile(extensions []string, fileName string, onChosen func(io.WriteCloser, error)) {
	fd := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if w == nil {
			onChosen(nil, err)
			return
		}
		onChosen(w, err)
	}, d.window)
	fd.SetFilter(storage.NewExtensionFileFilter(extensions))
	fd.SetFileName(fileName)
	fd.Show()
}

func (d *windowDialogs) OpenFile(extensions []string, onChosen func(io.ReadCloser, error)) {
	fd := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if r == nil {
			onChosen(nil, err)
			return
		}
		onChosen(r, err)
	}, d.window)
	fd.SetFilter(storage.NewExtensionFileFilter(extensions))
	fd.Show()
}
