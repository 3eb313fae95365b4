// Package overlay renders engine snapshots into the scoreboard window. It is
// a pure consumer of the snapshot contract: it never reaches back into the
// engine except through the edit callbacks it is given.
package overlay

import (
	"image/color"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"courtside/internal/core/engine"
	"courtside/internal/core/model"
)

// Config defines overlay window behavior.
type Config struct {
	Fullscreen bool
}

// Callbacks route label edits back into the engine. OnEditBegin pauses
// hotkeys for the duration of the dialog; OnEditEnd always follows it.
type Callbacks struct {
	OnEditBegin  func(id string) error
	OnEditSubmit func(id, text string) error
	OnEditEnd    func(id string)
}

// Window manages the scoreboard overlay UI.
type Window struct {
	window     fyne.Window
	config     Config
	callbacks  Callbacks
	background *canvas.Rectangle
}

// New creates the overlay window sized to the scoreboard canvas.
func New(app fyne.App, config Config, callbacks Callbacks) *Window {
	window := app.NewWindow("Courtside")
	window.SetPadded(false)
	window.SetFixedSize(true)
	window.Resize(fyne.NewSize(model.CanvasWidth, model.CanvasHeight))
	if config.Fullscreen {
		window.SetFullScreen(true)
	}

	background := canvas.NewRectangle(color.Black)
	window.SetContent(container.NewWithoutLayout(background))

	return &Window{
		window:     window,
		config:     config,
		callbacks:  callbacks,
		background: background,
	}
}

// Show presents the overlay.
func (w *Window) Show() {
	w.window.Show()
}

// Window exposes the underlying fyne window for dialog parenting.
func (w *Window) Window() fyne.Window {
	return w.window
}

// Apply repaints the overlay from a snapshot. Safe to call from any
// goroutine.
func (w *Window) Apply(snapshot engine.Snapshot) {
	fyne.Do(func() {
		w.render(snapshot)
	})
}

func (w *Window) render(snapshot engine.Snapshot) {
	w.background.FillColor = parseColor(snapshot.Background)
	w.background.Resize(fyne.NewSize(model.CanvasWidth, model.CanvasHeight))
	w.background.Move(fyne.NewPos(0, 0))

	objects := []fyne.CanvasObject{w.background}
	for _, item := range snapshot.Items {
		if object := renderItem(item); object != nil {
			objects = append(objects, object)
		}
	}

	w.window.SetContent(container.NewWithoutLayout(objects...))
}

func renderItem(item engine.Item) fyne.CanvasObject {
	if item.Kind == model.KindImage || item.Kind == model.KindImageToggle {
		image := canvas.NewImageFromFile(item.Source)
		image.FillMode = canvas.ImageFillContain
		image.Translucency = 1 - item.Opacity
		image.Resize(fyne.NewSize(float32(item.Width), float32(item.Height)))
		image.Move(fyne.NewPos(float32(item.X), float32(item.Y)))
		return image
	}

	text := canvas.NewText(item.Text, parseColor(item.FontColor))
	text.TextSize = float32(item.FontSize)
	text.TextStyle = fyne.TextStyle{Bold: true}

	x := float32(item.X)
	if item.Align == model.AlignCenter {
		x -= text.MinSize().Width / 2
	}
	text.Move(fyne.NewPos(x, float32(item.Y)))
	text.Resize(text.MinSize())
	return text
}

// EditLabel opens the edit dialog for an editable label item.
func (w *Window) EditLabel(item engine.Item) {
	if w.callbacks.OnEditBegin != nil {
		if err := w.callbacks.OnEditBegin(item.ID); err != nil {
			return
		}
	}

	entry := widget.NewEntry()
	entry.SetText(item.Text)
	form := dialog.NewForm("Edit "+item.ID, "Save", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Text", entry)},
		func(confirmed bool) {
			defer func() {
				if w.callbacks.OnEditEnd != nil {
					w.callbacks.OnEditEnd(item.ID)
				}
			}()
			if confirmed && w.callbacks.OnEditSubmit != nil {
				_ = w.callbacks.OnEditSubmit(item.ID, entry.Text)
			}
		}, w.window)
	form.Resize(fyne.NewSize(360, form.MinSize().Height))
	form.Show()
}

// parseColor converts a validated #RRGGBB string; parse errors cannot occur
// for document colors but fall back to white anyway.
func parseColor(value string) color.Color {
	if len(value) != 7 || value[0] != '#' {
		return color.White
	}
	packed, err := strconv.ParseUint(value[1:], 16, 32)
	if err != nil {
		return color.White
	}
	return color.NRGBA{
		R: uint8(packed >> 16),
		G: uint8(packed >> 8),
		B: uint8(packed),
		A: 0xFF,
	}
}
