package filters

import "strings"

// Preset is a named filter combination.
type Preset struct {
	Name    string
	Filters Filters
}

// Presets lists the built-in presets in cycling order.
var Presets = []Preset{
	{Name: "Default", Filters: Default()},
	{Name: "High contrast", Filters: Filters{Contrast: 40, Gamma: 1}},
	{Name: "Bone", Filters: Filters{Brightness: -10, Contrast: 30, Gamma: 0.8, Sharpen: true}},
	{Name: "Soft tissue", Filters: Filters{Brightness: 15, Contrast: -20, Gamma: 1.4}},
	{Name: "Inverted", Filters: Filters{Gamma: 1, Invert: true}},
}

// PresetByName finds a preset case-insensitively, ignoring spaces,
// underscores and dashes.
func PresetByName(name string) (Preset, bool) {
	i, ok := PresetIndex(name)
	if !ok {
		return Preset{}, false
	}
	return Presets[i], true
}

// PresetIndex is like PresetByName but returns the position in Presets.
func PresetIndex(name string) (int, bool) {
	key := presetKey(name)
	for i, p := range Presets {
		if presetKey(p.Name) == key {
			return i, true
		}
	}
	return -1, false
}

// NextPreset returns the index after i, wrapping around.
func NextPreset(i int) int {
	if i < 0 {
		return 0
	}
	return (i + 1) % len(Presets)
}

func presetKey(s string) string {
	r := strings.NewReplacer(" ", "", "_", "", "-", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}
