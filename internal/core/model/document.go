package model

import "time"

// Overlay canvas dimensions; component positions are validated against them.
const (
	CanvasWidth  = 640
	CanvasHeight = 480
)

// Kind identifies the component variant.
type Kind string

const (
	KindNumber      Kind = "number"
	KindTimer       Kind = "timer"
	KindLabel       Kind = "label"
	KindImage       Kind = "image"
	KindImageToggle Kind = "image-toggle"
)

// Rounding selects the timer display mode.
type Rounding string

const (
	RoundingStandard   Rounding = "standard"
	RoundingBasketball Rounding = "basketball"
)

// Alignment positions component text relative to its anchor point.
type Alignment string

const (
	AlignDefault Alignment = ""
	AlignCenter  Alignment = "center"
)

// Font describes resolved text styling for a component.
type Font struct {
	Family string
	Size   int
	Color  string
}

// Document is a fully validated scoreboard configuration. It is immutable
// once parsed; hot reload swaps the whole value.
type Document struct {
	Background string
	Font       Font
	Components []Component
}

// Component is one overlay element definition. Kind selects which of the
// spec pointers is populated; exactly one is non-nil.
type Component struct {
	ID    string
	Kind  Kind
	X     int
	Y     int
	Align Alignment
	Font  Font

	Number *NumberSpec
	Timer  *TimerSpec
	Label  *LabelSpec
	Image  *ImageSpec
	Toggle *ImageToggleSpec
}

// NumberSpec configures an integer counter. Keys may be nil, in which case
// the counter is read-only.
type NumberSpec struct {
	Default int
	Keys    *NumberKeys
}

// NumberKeys holds the optional counter keybinds.
type NumberKeys struct {
	Increase *Chord
	Decrease *Chord
	Reset    *Chord
}

// TimerSpec configures an elapsed-time timer. Keys may be nil, in which case
// the timer is read-only.
type TimerSpec struct {
	Default  time.Duration
	Rounding Rounding
	Keys     *TimerKeys
}

// TimerKeys holds the timer keybinds. Start and Stop are required whenever a
// keybind table is present; the rest are optional.
type TimerKeys struct {
	Start    Chord
	Stop     Chord
	Increase *Chord
	Decrease *Chord
	Reset    *Chord
}

// LabelSpec configures a text label.
type LabelSpec struct {
	Default  string
	Editable bool
}

// ImageSpec configures a static image. Source is resolved to an absolute
// path at parse time.
type ImageSpec struct {
	Source  string
	Width   int
	Height  int
	Opacity float64
}

// ImageToggleSpec configures an image that cycles through a source list.
// Sources is never empty; each entry is resolved to an absolute path at
// parse time. Keys may be nil, in which case the toggle is fixed on its
// first source.
type ImageToggleSpec struct {
	Sources []string
	Width   int
	Height  int
	Opacity float64
	Keys    *ImageToggleKeys
}

// ImageToggleKeys holds the optional cycling keybinds.
type ImageToggleKeys struct {
	Forward  *Chord
	Backward *Chord
}

// Empty returns a Document with no components and default styling, used when
// no configuration file is available yet.
func Empty() Document {
	return Document{
		Background: defaultBackground,
		Font:       defaultFont(),
	}
}

// Lookup returns the component with the given id.
func (d Document) Lookup(id string) (Component, bool) {
	for _, component := range d.Components {
		if component.ID == id {
			return component, true
		}
	}
	return Component{}, false
}
