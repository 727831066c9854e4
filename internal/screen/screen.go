// Package screen sizes the window and canvas from the primary monitor.
package screen

import (
	"errors"
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Primary returns the pixel size of the primary monitor's current mode. It
// must be called from the main goroutine before the Fyne app starts running.
func Primary() (width, height int, err error) {
	if err := glfw.Init(); err != nil {
		return 0, 0, fmt.Errorf("init glfw: %w", err)
	}
	m := glfw.GetPrimaryMonitor()
	if m == nil {
		return 0, 0, errors.New("no primary monitor")
	}
	mode := m.GetVideoMode()
	if mode == nil || mode.Width <= 0 || mode.Height <= 0 {
		return 0, 0, errors.New("primary monitor reports no video mode")
	}
	return mode.Width, mode.Height, nil
}

// CanvasSize divides the screen size, never going below 1x1.
func CanvasSize(screenW, screenH int, divisor float64) (int, int) {
	if divisor <= 0 {
		divisor = 1
	}
	w := int(float64(screenW) / divisor)
	h := int(float64(screenH) / divisor)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
