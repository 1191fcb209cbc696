package canvas

// Preset is a named canvas size with a fixed aspect ratio.
type Preset struct {
	Name   string `json:"name"`
	Ratio  string `json:"ratio"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

var presets = []Preset{
	{Name: "Square (1:1)", Ratio: "1:1", Width: 600, Height: 600},
	{Name: "Portrait (3:4)", Ratio: "3:4", Width: 600, Height: 800},
	{Name: "Landscape (4:3)", Ratio: "4:3", Width: 800, Height: 600},
	{Name: "Widescreen (16:9)", Ratio: "16:9", Width: 800, Height: 450},
	{Name: "Story (9:16)", Ratio: "9:16", Width: 450, Height: 800},
}

// Presets returns the canvas size presets offered by the editor.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// PresetByRatio looks up a preset by its ratio label, e.g. "9:16".
func PresetByRatio(ratio string) (Preset, bool) {
	for _, p := range presets {
		if p.Ratio == ratio {
			return p, true
		}
	}
	return Preset{}, false
}

// DefaultPreset is the canvas size a new design starts with.
func DefaultPreset() Preset {
	return presets[0]
}
