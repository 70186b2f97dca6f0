package spec

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/ChicagoDave/todplanner/pkg/geo"
	"github.com/ChicagoDave/todplanner/pkg/transit"
)

//go:embed presets.yaml
var presetYAML []byte

// Preset is a built-in city: its study-area bounds and fallback stations.
type Preset struct {
	Name     string        `yaml:"name" json:"name"`
	Info     string        `yaml:"info" json:"info"`
	Bounds   geo.Bounds    `yaml:"bounds" json:"bounds"`
	Stations []StationDecl `yaml:"stations" json:"stations"`
}

// StationList converts the preset's station declarations.
func (p Preset) StationList() ([]transit.Station, error) {
	out := make([]transit.Station, 0, len(p.Stations))
	for i, d := range p.Stations {
		st, err := d.Station()
		if err != nil {
			return nil, eris.Wrapf(err, "preset %s station %d", p.Name, i)
		}
		out = append(out, st)
	}
	return out, nil
}

var loadPresets = sync.OnceValue(func() []Preset {
	var presets []Preset
	if err := yaml.Unmarshal(presetYAML, &presets); err != nil {
		panic(eris.Wrap(err, "spec: embedded presets"))
	}
	return presets
})

// Presets returns the built-in city presets in file order.
func Presets() []Preset {
	src := loadPresets()
	out := make([]Preset, len(src))
	copy(out, src)
	return out
}

// LookupPreset finds a preset by name, ignoring case.
func LookupPreset(name string) (Preset, bool) {
	name = strings.TrimSpace(name)
	for _, p := range loadPresets() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}
