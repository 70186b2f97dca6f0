package transit

// Filter selects which stations take part in an analysis.
type Filter struct {
	// Types limits stations to these types. Empty means all types.
	Types []Type `json:"types,omitempty" yaml:"types"`
	// OperationalOnly drops stations under construction or planned.
	OperationalOnly bool `json:"operational_only" yaml:"operational_only"`
	// MaxWaitMinutes drops stations whose known frequency exceeds the limit.
	// Zero disables the check; stations with unknown frequency always pass.
	MaxWaitMinutes int `json:"max_wait_minutes" yaml:"max_wait_minutes"`
}

// Allows reports whether s passes the filter.
func (f Filter) Allows(s Station) bool {
	if len(f.Types) > 0 && !containsType(f.Types, s.Type) {
		return false
	}
	if f.OperationalOnly && !s.IsOperational() {
		return false
	}
	if f.MaxWaitMinutes > 0 && s.FrequencyMinutes > f.MaxWaitMinutes {
		return false
	}
	return true
}

// Apply returns the stations that pass the filter, preserving order.
func (f Filter) Apply(stations []Station) []Station {
	out := make([]Station, 0, len(stations))
	for _, s := range stations {
		if f.Allows(s) {
			out = append(out, s)
		}
	}
	return out
}

func containsType(types []Type, t Type) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// CountByType tallies stations per transit type.
func CountByType(stations []Station) map[Type]int {
	counts := make(map[Type]int, len(Types()))
	for _, s := range stations {
		counts[s.Type]++
	}
	return counts
}
