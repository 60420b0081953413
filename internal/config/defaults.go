package config

// Default returns a fresh Config; callers may mutate it freely.
func Default() Config {
	var cfg Config
	cfg.App.DataDir = "."
	cfg.App.Env = "production"

	cfg.Greenhouse.BaseURL = "https://app.greenhouse.io"
	cfg.Greenhouse.SourceBoard = "Internal"
	cfg.Greenhouse.TargetBoard = "Public Careers"
	cfg.Greenhouse.ProtectedBoards = []string{"Internal", "Template"}
	cfg.Greenhouse.RecruiterTag = "Recruiter"
	cfg.Greenhouse.FilteredAttributes = []string{
		"id",
		"created_at",
		"updated_at",
		"job_id",
		"live",
		"first_published_at",
		"status",
		"application_count",
		"job_board",
	}

	cfg.Regions = DefaultRegions()

	cfg.Geocoding.BaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

	cfg.Browser.Headless = true
	cfg.Browser.TimeoutSeconds = 60

	cfg.Auth.Method = "greenhouse"
	cfg.Auth.CookieName = "_session_id"

	cfg.RateLimit.RequestsPerSecond = 2
	cfg.RateLimit.Burst = 2
	cfg.RateLimit.GeocodePerSecond = 5

	cfg.Cache.TTLHours = 24 * 30
	return cfg
}

func DefaultRegions() map[string][]string {
	us := []string{
		"Atlanta, Georgia, United States",
		"Austin, Texas, United States",
		"Boston, Massachusetts, United States",
		"Chicago, Illinois, United States",
		"Dallas, Texas, United States",
		"Denver, Colorado, United States",
		"Los Angeles, California, United States",
		"Miami, Florida, United States",
		"New York, New York, United States",
		"Philadelphia, Pennsylvania, United States",
		"Phoenix, Arizona, United States",
		"Portland, Oregon, United States",
		"Raleigh, North Carolina, United States",
		"Salt Lake City, Utah, United States",
		"San Diego, California, United States",
		"San Francisco, California, United States",
		"Seattle, Washington, United States",
		"Washington, District of Columbia, United States",
	}
	canada := []string{
		"Montreal, Quebec, Canada",
		"Ottawa, Ontario, Canada",
		"Toronto, Ontario, Canada",
		"Vancouver, British Columbia, Canada",
	}
	latam := []string{
		"Bogotá, Colombia",
		"Buenos Aires, Argentina",
		"Lima, Peru",
		"Mexico City, Mexico",
		"Santiago, Chile",
		"São Paulo, Brazil",
	}
	apac := []string{
		"Auckland, New Zealand",
		"Bangalore, India",
		"Hong Kong",
		"Jakarta, Indonesia",
		"Kuala Lumpur, Malaysia",
		"Manila, Philippines",
		"Melbourne, Victoria, Australia",
		"Seoul, South Korea",
		"Singapore",
		"Sydney, New South Wales, Australia",
		"Taipei, Taiwan",
		"Tokyo, Japan",
	}
	emea := []string{
		"Amsterdam, Netherlands",
		"Barcelona, Spain",
		"Berlin, Germany",
		"Cape Town, South Africa",
		"Copenhagen, Denmark",
		"Dubai, United Arab Emirates",
		"Dublin, Ireland",
		"Lisbon, Portugal",
		"London, England, United Kingdom",
		"Madrid, Spain",
		"Milan, Italy",
		"Munich, Germany",
		"Paris, France",
		"Stockholm, Sweden",
		"Tel Aviv, Israel",
		"Warsaw, Poland",
		"Zurich, Switzerland",
	}

	americas := make([]string, 0, len(us)+len(canada)+len(latam))
	americas = append(americas, us...)
	americas = append(americas, canada...)
	americas = append(americas, latam...)

	return map[string][]string{
		"americas": americas,
		"us":       us,
		"canada":   canada,
		"latam":    latam,
		"apac":     apac,
		"emea":     emea,
	}
}
