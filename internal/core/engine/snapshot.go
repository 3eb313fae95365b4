package engine

import (
	"strconv"

	"courtside/internal/core/model"
)

// Snapshot is the immutable render description published to the overlay.
// It is the only value that crosses the engine/rendering boundary.
type Snapshot struct {
	Version    uint64
	Background string
	Items      []Item
}

// Item is one fully resolved component ready to draw.
type Item struct {
	ID         string
	Kind       model.Kind
	X          int
	Y          int
	Align      model.Alignment
	FontFamily string
	FontSize   int
	FontColor  string

	// Text is the resolved display value for number, timer and label items.
	Text string

	// Image fields, populated only for image items.
	Source  string
	Width   int
	Height  int
	Opacity float64

	Editable bool
}

func (e *Engine) snapshotLocked() Snapshot {
	snapshot := Snapshot{
		Version:    e.version,
		Background: e.doc.Background,
		Items:      make([]Item, 0, len(e.doc.Components)),
	}

	now := e.options.Now()
	for _, component := range e.doc.Components {
		item := Item{
			ID:         component.ID,
			Kind:       component.Kind,
			X:          component.X,
			Y:          component.Y,
			Align:      component.Align,
			FontFamily: component.Font.Family,
			FontSize:   component.Font.Size,
			FontColor:  component.Font.Color,
		}

		switch component.Kind {
		case model.KindNumber:
			item.Text = strconv.Itoa(e.numbers[component.ID])
		case model.KindTimer:
			var elapsed int64
			if timer, ok := e.timers[component.ID]; ok {
				elapsed = timer.liveElapsed(now).Milliseconds()
			}
			item.Text = FormatElapsed(elapsed, component.Timer.Rounding)
		case model.KindLabel:
			item.Text = e.labels[component.ID]
			item.Editable = component.Label.Editable
		case model.KindImage:
			item.Source = component.Image.Source
			if source, ok := e.images[component.ID]; ok {
				item.Source = source
			}
			item.Width = component.Image.Width
			item.Height = component.Image.Height
			item.Opacity = component.Image.Opacity
		case model.KindImageToggle:
			index := e.toggles[component.ID] % len(component.Toggle.Sources)
			item.Source = component.Toggle.Sources[index]
			item.Width = component.Toggle.Width
			item.Height = component.Toggle.Height
			item.Opacity = component.Toggle.Opacity
		}

		snapshot.Items = append(snapshot.Items, item)
	}

	return snapshot
}
