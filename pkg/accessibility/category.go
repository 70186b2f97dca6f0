package accessibility

// Category buckets a TOD score for presentation.
type Category string

const (
	High   Category = "high"
	Medium Category = "medium"
	Low    Category = "low"
)

// Category thresholds on the 0-100 score.
const (
	HighThreshold   = 75.0
	MediumThreshold = 45.0
)

// Categorize returns High for scores >= 75, Medium for >= 45, otherwise Low.
func Categorize(score float64) Category {
	switch {
	case score >= HighThreshold:
		return High
	case score >= MediumThreshold:
		return Medium
	}
	return Low
}

// Color returns the map color for the category.
func (c Category) Color() string {
	switch c {
	case High:
		return "#2ECC71"
	case Medium:
		return "#F1C40F"
	}
	return "#E74C3C"
}

// Walkability blend bands, in meters from the nearest station.
const (
	FullBlendDistance = 500.0
	HalfBlendDistance = 800.0
)

// BlendWalkability combines distance to the nearest station with a 0-100
// walkability score into a TOD potential in [0, 1].
func BlendWalkability(distance, walkability float64) float64 {
	w := clamp(walkability, 0, MaxScore) / MaxScore
	switch {
	case distance <= FullBlendDistance:
		return w
	case distance <= HalfBlendDistance:
		return 0.5 * w
	}
	return 0.2 * w
}
