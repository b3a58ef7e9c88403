package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Pause       key.Binding
	Geometry    key.Binding
	Projection  key.Binding
	Effect      key.Binding
	Intensity   key.Binding
	IntensityDn key.Binding
	Volume      key.Binding
	VolumeDn    key.Binding
	Suspend     key.Binding
	Quit        key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Geometry, k.Projection, k.Effect, k.Intensity, k.Volume, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Geometry, k.Projection, k.Effect},
		{k.Intensity, k.IntensityDn, k.Volume, k.VolumeDn},
		{k.Suspend, k.Quit},
	}
}

var keys = keyMap{
	Pause: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "pause"),
	),
	Geometry: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "geometry"),
	),
	Projection: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "projection"),
	),
	Effect: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "effect"),
	),
	Intensity: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+/-", "intensity"),
	),
	IntensityDn: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "intensity down"),
	),
	Volume: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/↓", "volume"),
	),
	VolumeDn: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓", "volume down"),
	),
	Suspend: key.NewBinding(
		key.WithKeys("ctrl+z"),
		key.WithHelp("ctrl+z", "suspend"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
