package model

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const defaultBackground = "#000000"

func defaultFont() Font {
	return Font{Family: "Segoe UI", Size: 28, Color: "#FFFFFF"}
}

// Raw TOML shapes. Every top-level key except "global" is a component id
// mapped to a component table.

type rawGlobal struct {
	BackgroundColor *string  `toml:"background_color"`
	Font            *rawFont `toml:"font"`
}

type rawFont struct {
	Family *string `toml:"family"`
	Size   *int    `toml:"size"`
	Color  *string `toml:"color"`
}

type rawPosition struct {
	X int `toml:"x"`
	Y int `toml:"y"`
}

type rawSize struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

type rawChord struct {
	Key   string `toml:"key"`
	Ctrl  bool   `toml:"ctrl"`
	Alt   bool   `toml:"alt"`
	Shift bool   `toml:"shift"`
	Win   bool   `toml:"win"`
}

type rawComponent struct {
	Type     interface{}         `toml:"type"`
	Default  interface{}         `toml:"default"`
	Position rawPosition         `toml:"position"`
	Align    string              `toml:"align"`
	Font     *rawFont            `toml:"font"`
	Keybind  map[string]rawChord `toml:"keybind"`
	Source   string              `toml:"source"`
	Sources  []string            `toml:"sources"`
	Size     *rawSize            `toml:"size"`
	Opacity  *float64            `toml:"opacity"`
	Rounding string              `toml:"rounding"`
	Edit     *bool               `toml:"edit"`
}

// componentType resolves the type field, which is either a plain string or a
// table carrying "name" (alias "kind") plus an optional "rounding" that wins
// over the component-level one.
func componentType(id string, raw interface{}) (name, rounding string, err error) {
	switch value := raw.(type) {
	case string:
		return value, "", nil
	case map[string]interface{}:
		name, ok := value["name"].(string)
		if !ok {
			name, ok = value["kind"].(string)
		}
		if !ok {
			return "", "", fmt.Errorf("%q: type table requires name or kind as a string", id)
		}
		rounding, _ := value["rounding"].(string)
		return name, rounding, nil
	default:
		return "", "", fmt.Errorf("%q: type must be a string or table", id)
	}
}

// Parse validates raw TOML bytes into a Document. Relative image sources are
// resolved against baseDir. Parsing is pure: on any error no Document is
// returned and nothing else is touched.
func Parse(raw []byte, baseDir string) (Document, error) {
	var tables map[string]toml.Primitive
	meta, err := toml.Decode(string(raw), &tables)
	if err != nil {
		return Document{}, fmt.Errorf("parse config: %w", err)
	}

	doc := Empty()
	if global, ok := tables["global"]; ok {
		var rawG rawGlobal
		if err := meta.PrimitiveDecode(global, &rawG); err != nil {
			return Document{}, fmt.Errorf("invalid [global] section: %w", err)
		}
		if rawG.BackgroundColor != nil {
			doc.Background = *rawG.BackgroundColor
		}
		doc.Font = resolveFont(doc.Font, rawG.Font)
		if err := validateColor("global.background_color", doc.Background); err != nil {
			return Document{}, err
		}
		if err := validateFont("global.font", doc.Font); err != nil {
			return Document{}, err
		}
	}

	for id, table := range tables {
		if id == "global" {
			continue
		}
		if strings.TrimSpace(id) == "" {
			return Document{}, fmt.Errorf("component id cannot be empty")
		}

		var rawC rawComponent
		if err := meta.PrimitiveDecode(table, &rawC); err != nil {
			return Document{}, fmt.Errorf("invalid component %q: %w", id, err)
		}

		component, err := buildComponent(id, rawC, doc.Font, baseDir)
		if err != nil {
			return Document{}, err
		}
		doc.Components = append(doc.Components, component)
	}

	// Deterministic ordering so snapshots render stably across reloads.
	sort.Slice(doc.Components, func(i, j int) bool {
		return doc.Components[i].ID < doc.Components[j].ID
	})

	return doc, nil
}

func buildComponent(id string, raw rawComponent, base Font, baseDir string) (Component, error) {
	component := Component{
		ID:   id,
		X:    raw.Position.X,
		Y:    raw.Position.Y,
		Font: resolveFont(base, raw.Font),
	}

	switch Alignment(raw.Align) {
	case AlignDefault, AlignCenter:
		component.Align = Alignment(raw.Align)
	default:
		return Component{}, fmt.Errorf("%q: unsupported align %q", id, raw.Align)
	}

	if component.X < 0 || component.X >= CanvasWidth || component.Y < 0 || component.Y >= CanvasHeight {
		return Component{}, fmt.Errorf("%q: position (%d, %d) is outside %dx%d",
			id, component.X, component.Y, CanvasWidth, CanvasHeight)
	}
	if err := validateFont(id+".font", component.Font); err != nil {
		return Component{}, err
	}

	typeName, typeRounding, err := componentType(id, raw.Type)
	if err != nil {
		return Component{}, err
	}
	if typeRounding != "" {
		raw.Rounding = typeRounding
	}
	if raw.Edit != nil && typeName != string(KindLabel) {
		return Component{}, fmt.Errorf("%q: edit is only supported for label components", id)
	}

	switch Kind(typeName) {
	case KindNumber:
		spec, err := buildNumber(id, raw)
		if err != nil {
			return Component{}, err
		}
		component.Kind = KindNumber
		component.Number = spec
	case KindTimer:
		spec, err := buildTimer(id, raw)
		if err != nil {
			return Component{}, err
		}
		component.Kind = KindTimer
		component.Timer = spec
	case KindLabel:
		spec, err := buildLabel(id, raw)
		if err != nil {
			return Component{}, err
		}
		component.Kind = KindLabel
		component.Label = spec
	case KindImage:
		spec, err := buildImage(id, raw, baseDir)
		if err != nil {
			return Component{}, err
		}
		component.Kind = KindImage
		component.Image = spec
	case KindImageToggle:
		spec, err := buildImageToggle(id, raw, baseDir)
		if err != nil {
			return Component{}, err
		}
		component.Kind = KindImageToggle
		component.Toggle = spec
	default:
		return Component{}, fmt.Errorf("%q: unsupported type %q", id, typeName)
	}

	return component, nil
}

func buildNumber(id string, raw rawComponent) (*NumberSpec, error) {
	spec := &NumberSpec{}
	if raw.Default != nil {
		value, ok := raw.Default.(int64)
		if !ok {
			return nil, fmt.Errorf("%q: default must be an integer", id)
		}
		spec.Default = int(value)
	}

	if len(raw.Keybind) > 0 {
		keys := &NumberKeys{}
		for name, rawKey := range raw.Keybind {
			chord, err := newChord(id+".keybind."+name, rawKey)
			if err != nil {
				return nil, err
			}
			switch name {
			case "increase":
				keys.Increase = &chord
			case "decrease":
				keys.Decrease = &chord
			case "reset":
				keys.Reset = &chord
			default:
				return nil, fmt.Errorf("%q: unsupported number keybind %q", id, name)
			}
		}
		spec.Keys = keys
	}

	return spec, nil
}

func buildTimer(id string, raw rawComponent) (*TimerSpec, error) {
	spec := &TimerSpec{Rounding: RoundingStandard}
	if raw.Default != nil {
		value, ok := raw.Default.(string)
		if !ok {
			return nil, fmt.Errorf("%q: default must be a timer string HH:MM:SS", id)
		}
		parsed, err := parseTimerDefault(value)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", id, err)
		}
		spec.Default = parsed
	}

	if raw.Rounding != "" {
		switch Rounding(strings.ToLower(raw.Rounding)) {
		case RoundingStandard:
			spec.Rounding = RoundingStandard
		case RoundingBasketball:
			spec.Rounding = RoundingBasketball
		default:
			return nil, fmt.Errorf("%q: unsupported timer rounding %q (expected %q or %q)",
				id, raw.Rounding, RoundingStandard, RoundingBasketball)
		}
	}

	if len(raw.Keybind) > 0 {
		keys := &TimerKeys{}
		var haveStart, haveStop bool
		for name, rawKey := range raw.Keybind {
			chord, err := newChord(id+".keybind."+name, rawKey)
			if err != nil {
				return nil, err
			}
			switch name {
			case "start":
				keys.Start = chord
				haveStart = true
			case "stop":
				keys.Stop = chord
				haveStop = true
			case "increase":
				keys.Increase = &chord
			case "decrease":
				keys.Decrease = &chord
			case "reset":
				keys.Reset = &chord
			default:
				return nil, fmt.Errorf("%q: unsupported timer keybind %q", id, name)
			}
		}
		if !haveStart || !haveStop {
			return nil, fmt.Errorf("%q: timer keybinds require both start and stop", id)
		}
		spec.Keys = keys
	}

	return spec, nil
}

func buildLabel(id string, raw rawComponent) (*LabelSpec, error) {
	spec := &LabelSpec{}
	if raw.Default != nil {
		value, ok := raw.Default.(string)
		if !ok {
			return nil, fmt.Errorf("%q: default must be a string", id)
		}
		spec.Default = value
	}
	if raw.Edit != nil {
		spec.Editable = *raw.Edit
	}
	if len(raw.Keybind) > 0 {
		return nil, fmt.Errorf("%q: labels do not support keybinds", id)
	}
	return spec, nil
}

func buildImage(id string, raw rawComponent, baseDir string) (*ImageSpec, error) {
	if raw.Source == "" {
		return nil, fmt.Errorf("%q: image requires source", id)
	}
	width, height, opacity, err := imageFrame(id, raw)
	if err != nil {
		return nil, err
	}

	return &ImageSpec{
		Source:  resolveSource(baseDir, raw.Source),
		Width:   width,
		Height:  height,
		Opacity: opacity,
	}, nil
}

func buildImageToggle(id string, raw rawComponent, baseDir string) (*ImageToggleSpec, error) {
	if len(raw.Sources) == 0 {
		return nil, fmt.Errorf("%q: image-toggle requires a non-empty sources list", id)
	}
	width, height, opacity, err := imageFrame(id, raw)
	if err != nil {
		return nil, err
	}

	sources := make([]string, len(raw.Sources))
	for i, source := range raw.Sources {
		if source == "" {
			return nil, fmt.Errorf("%q: image-toggle sources cannot be empty", id)
		}
		sources[i] = resolveSource(baseDir, source)
	}

	spec := &ImageToggleSpec{
		Sources: sources,
		Width:   width,
		Height:  height,
		Opacity: opacity,
	}

	if len(raw.Keybind) > 0 {
		keys := &ImageToggleKeys{}
		for name, rawKey := range raw.Keybind {
			chord, err := newChord(id+".keybind."+name, rawKey)
			if err != nil {
				return nil, err
			}
			switch name {
			case "forward":
				keys.Forward = &chord
			case "backward":
				keys.Backward = &chord
			default:
				return nil, fmt.Errorf("%q: unsupported image-toggle keybind %q", id, name)
			}
		}
		spec.Keys = keys
	}

	return spec, nil
}

// imageFrame validates the size and opacity shared by image and image-toggle
// components.
func imageFrame(id string, raw rawComponent) (width, height int, opacity float64, err error) {
	if raw.Size == nil {
		return 0, 0, 0, fmt.Errorf("%q: image requires size.width and size.height", id)
	}
	if raw.Size.Width <= 0 || raw.Size.Height <= 0 {
		return 0, 0, 0, fmt.Errorf("%q: image size must be > 0", id)
	}

	opacity = 1.0
	if raw.Opacity != nil {
		opacity = *raw.Opacity
	}
	if opacity < 0 || opacity > 1 {
		return 0, 0, 0, fmt.Errorf("%q: opacity must be between 0.0 and 1.0", id)
	}

	return raw.Size.Width, raw.Size.Height, opacity, nil
}

func resolveSource(baseDir, source string) string {
	if filepath.IsAbs(source) {
		return source
	}
	return filepath.Join(baseDir, source)
}

func resolveFont(base Font, override *rawFont) Font {
	font := base
	if override == nil {
		return font
	}
	if override.Family != nil {
		font.Family = *override.Family
	}
	if override.Size != nil {
		font.Size = *override.Size
	}
	if override.Color != nil {
		font.Color = *override.Color
	}
	return font
}

func validateFont(name string, font Font) error {
	if strings.TrimSpace(font.Family) == "" {
		return fmt.Errorf("%s: family cannot be empty", name)
	}
	if font.Size <= 0 {
		return fmt.Errorf("%s: size must be > 0", name)
	}
	return validateColor(name+".color", font.Color)
}

func validateColor(name, value string) error {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) != 7 || trimmed[0] != '#' {
		return fmt.Errorf("%s must be #RRGGBB", name)
	}
	if _, err := strconv.ParseUint(trimmed[1:], 16, 32); err != nil {
		return fmt.Errorf("%s must be #RRGGBB", name)
	}
	return nil
}

func parseTimerDefault(value string) (time.Duration, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("timer default %q must be HH:MM:SS", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("timer default %q has invalid hours", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("timer default %q has invalid minutes", value)
	}
	seconds, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, fmt.Errorf("timer default %q has invalid seconds", value)
	}
	if hours < 0 || minutes < 0 || minutes > 59 || seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("timer default %q must be HH:MM:SS", value)
	}
	total := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
	return total, nil
}
