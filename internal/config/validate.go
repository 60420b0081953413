package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus the validation result.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" || seen[x] {
				continue
			}
			seen[x] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Greenhouse.BaseURL = strings.TrimRight(strings.TrimSpace(out.Greenhouse.BaseURL), "/")
	out.Geocoding.BaseURL = strings.TrimRight(strings.TrimSpace(out.Geocoding.BaseURL), "/")
	out.Greenhouse.SourceBoard = strings.TrimSpace(out.Greenhouse.SourceBoard)
	out.Greenhouse.TargetBoard = strings.TrimSpace(out.Greenhouse.TargetBoard)
	out.Greenhouse.ProtectedBoards = trimList(out.Greenhouse.ProtectedBoards)
	out.Greenhouse.FilteredAttributes = trimList(out.Greenhouse.FilteredAttributes)

	regions := make(map[string][]string, len(out.Regions))
	for name, cities := range out.Regions {
		regions[name] = trimList(cities)
	}
	out.Regions = regions

	// ---- Validation rules ----

	if u, err := url.Parse(out.Greenhouse.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		res.addErr("greenhouse.base_url must be an absolute URL (got %q)", out.Greenhouse.BaseURL)
	}
	if out.Greenhouse.SourceBoard == "" {
		res.addErr("greenhouse.source_board is required")
	}
	if out.Greenhouse.TargetBoard == "" {
		res.addErr("greenhouse.target_board is required")
	}
	for i, p := range out.Greenhouse.ProtectedBoards {
		if _, err := regexp.Compile(p); err != nil {
			res.addErr("greenhouse.protected_boards[%d] is not a valid pattern: %v", i, err)
		}
	}
	if len(out.Greenhouse.ProtectedBoards) == 0 {
		res.addWarn("greenhouse.protected_boards is empty; reset may delete template posts.")
	}

	if len(out.Regions) == 0 {
		res.addErr("regions must define at least one region")
	}
	for name, cities := range out.Regions {
		if strings.TrimSpace(name) == "" {
			res.addErr("regions has an empty region name")
		}
		if len(cities) == 0 {
			res.addErr("regions.%s must have at least 1 city", name)
		}
	}

	if out.Geocoding.AccessToken == "" {
		res.addWarn("geocoding.access_token is empty; replicate will fail until MAPBOX_ACCESS_TOKEN is set.")
	}

	switch out.Auth.Method {
	case "greenhouse", "sso":
	default:
		res.addErr("auth.method must be greenhouse or sso (got %q)", out.Auth.Method)
	}
	if out.Auth.Method == "greenhouse" && strings.TrimSpace(out.Auth.Email) == "" {
		res.addWarn("auth.email is empty; login will prompt for it.")
	}
	if strings.TrimSpace(out.Auth.CookieName) == "" {
		res.addErr("auth.cookie_name is required")
	}

	if out.Browser.TimeoutSeconds <= 0 {
		res.addErr("browser.timeout_seconds must be > 0")
	}
	if out.RateLimit.RequestsPerSecond <= 0 {
		res.addErr("rate_limit.requests_per_second must be > 0")
	} else if out.RateLimit.RequestsPerSecond > 10 {
		res.addWarn("rate_limit.requests_per_second is very high (%.1f); Greenhouse may throttle the session.", out.RateLimit.RequestsPerSecond)
	}
	if out.RateLimit.Burst <= 0 {
		res.addErr("rate_limit.burst must be > 0")
	}
	if out.RateLimit.GeocodePerSecond < 0 {
		res.addErr("rate_limit.geocode_per_second must be >= 0")
	}
	if out.Cache.RedisURL != "" && out.Cache.TTLHours <= 0 {
		res.addErr("cache.ttl_hours must be > 0 when cache.redis_url is set")
	}

	switch out.App.Env {
	case "production", "development":
	default:
		res.addErr("app.env must be production or development (got %q)", out.App.Env)
	}

	return out, res
}
