package question

// Kind constants.
const (
	KindChoice   = "choice"
	KindLocation = "location"
)

// CategoryAny matches every category in matchmaking and question selection.
const CategoryAny = "any"

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Question is the server-side representation of one quiz question. Answer and
// Target never leave the server.
type Question struct {
	ID       string       `json:"id"`
	Category string       `json:"category"`
	Kind     string       `json:"kind"`
	Prompt   string       `json:"prompt"`
	Options  []string     `json:"options,omitempty"`
	ImageURL string       `json:"image_url,omitempty"`
	Answer   string       `json:"answer"`
	Target   *Coordinates `json:"target,omitempty"` // location questions only
}

// Outcome is the validator's verdict on a submitted answer.
type Outcome struct {
	IsCorrect  bool
	Points     int
	DistanceKm *float64 // location questions only
}
