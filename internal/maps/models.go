package maps

import "strconv"

// Provider identifies a routing backend
type Provider string

const (
	ProviderGoogleRoutes Provider = "google_routes"
)

// Distance is the outcome of a distance lookup. A zero-value Distance is
// Unavailable; callers must check Available before using Meters.
type Distance struct {
	Meters    int64 `json:"meters"`
	Available bool  `json:"available"`
}

// Unavailable is the outcome of any failed lookup
var Unavailable = Distance{}

// Meters builds an available distance
func Meters(m int64) Distance {
	return Distance{Meters: m, Available: true}
}

// Kilometers converts an available distance to kilometers
func (d Distance) Kilometers() float64 {
	return float64(d.Meters) / 1000
}

// Positive reports whether the distance is available and non-zero, i.e. safe to divide by
func (d Distance) Positive() bool {
	return d.Available && d.Meters > 0
}

func (d Distance) String() string {
	if !d.Available {
		return "unavailable"
	}
	return strconv.FormatInt(d.Meters, 10) + "m"
}

// Waypoint is an address-based route endpoint
type Waypoint struct {
	Address string `json:"address"`
}

// RouteRequest is the computeRoutes request body
type RouteRequest struct {
	Origin      Waypoint `json:"origin"`
	Destination Waypoint `json:"destination"`
	TravelMode  string   `json:"travelMode"`
}

// RouteResponse is the computeRoutes response restricted by the field mask
type RouteResponse struct {
	Routes []Route `json:"routes"`
}

// Route holds the only field requested through the field mask.
// DistanceMeters is a pointer so a missing field can be told apart from zero.
type Route struct {
	DistanceMeters *int64 `json:"distanceMeters"`
}

// DistanceResult is the API view of a lookup
type DistanceResult struct {
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	Available      bool   `json:"available"`
	DistanceMeters *int64 `json:"distance_meters,omitempty"`
}
