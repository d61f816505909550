package defect

// Event is one detection reported by the upstream vision system.
// Location fields are optional; the vision system omits them when GPS or
// chainage data is unavailable for a frame.
type Event struct {
	DefectType     string   `json:"defect_type"`
	Confidence     float64  `json:"confidence"`
	ImageURL       string   `json:"image_url"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	Chainage       string   `json:"chainage,omitempty"`
	NearestStation string   `json:"nearest_station,omitempty"`
}
