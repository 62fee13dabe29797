package search

type SortKey string

const (
	SortSoonest  SortKey = "soonest"
	SortDistance SortKey = "distance"
	SortRating   SortKey = "rating"
)

// Filters is the serializable search filter state. It round-trips through
// storage exactly and DefaultFilters restores every field in one step.
type Filters struct {
	RadiusKm   float64 `json:"radius_km"`
	MinRating  float64 `json:"min_rating"` // 0..5, half-star steps
	VideoOnly  bool    `json:"video_only"`
	PublicOnly bool    `json:"public_only"`
	Language   string  `json:"language,omitempty"`
	Sort       SortKey `json:"sort"`
}

func DefaultFilters() Filters {
	return Filters{
		RadiusKm: 10,
		Sort:     SortSoonest,
	}
}
