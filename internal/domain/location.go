package domain

// LocationInfo is a normalized geocoding result for a post location.
type LocationInfo struct {
	Name             string  `json:"name"`
	City             string  `json:"city"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Country          string  `json:"country"`
	CountryShortName string  `json:"country_short_name"`
}
