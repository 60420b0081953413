package greenhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"

	"jobposts-engine/internal/browser"
	"jobposts-engine/internal/domain"
	"jobposts-engine/internal/report"
	"jobposts-engine/internal/scrape/util"
)

type geoContext struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	ShortCode string `json:"short_code"`
}

type geoFeature struct {
	ID         string       `json:"id"`
	Text       string       `json:"text"`
	PlaceName  string       `json:"place_name"`
	Center     []float64    `json:"center"`
	Context    []geoContext `json:"context"`
	Properties struct {
		ShortCode string `json:"short_code"`
	} `json:"properties"`
}

type geoResponse struct {
	Features []geoFeature `json:"features"`
}

// GetLocationInfo geocodes location without its first comma token. Every
// failure wraps report.ErrGeocode.
func (c *Client) GetLocationInfo(ctx context.Context, location string) (domain.LocationInfo, error) {
	query := util.FirstCommaTokenDropped(location)
	if query == "" {
		return domain.LocationInfo{}, fmt.Errorf("%w: empty query for %q", report.ErrGeocode, location)
	}
	if c.geo != nil {
		if info, ok := c.geo.Get(ctx, query); ok {
			return info, nil
		}
	}

	res, err := c.call(ctx, "geocode "+query, browser.FetchRequest{
		Method:      "GET",
		URL:         c.geocodeURL(query),
		Headers:     map[string]string{"accept": "application/json"},
		Credentials: "same-origin",
	})
	if err != nil {
		return domain.LocationInfo{}, fmt.Errorf("%w: %w", report.ErrGeocode, err)
	}
	info, err := ParseGeocode(res.Body)
	if err != nil {
		return domain.LocationInfo{}, fmt.Errorf("%w: %q: %w", report.ErrGeocode, query, err)
	}

	if c.geo != nil {
		if err := c.geo.Set(ctx, query, info); err != nil {
			log.Printf("[greenhouse] geocode cache set failed query=%q err=%v", query, err)
		}
	}
	return info, nil
}

func (c *Client) geocodeURL(query string) string {
	q := url.Values{}
	q.Set("access_token", c.cfg.Geocoding.AccessToken)
	q.Set("language", "en")
	q.Set("autocomplete", "true")
	q.Set("types", "place,locality")
	q.Set("limit", "10")
	return c.cfg.Geocoding.BaseURL + "/" + url.PathEscape(query) + ".json?" + q.Encode()
}

// ParseGeocode normalizes the first feature. Country comes from the country
// context entry, or from the feature itself when it has none.
func ParseGeocode(body string) (domain.LocationInfo, error) {
	var gr geoResponse
	if err := json.Unmarshal([]byte(body), &gr); err != nil {
		return domain.LocationInfo{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(gr.Features) == 0 {
		return domain.LocationInfo{}, fmt.Errorf("no geocode results")
	}
	f := gr.Features[0]
	if len(f.Center) < 2 {
		return domain.LocationInfo{}, fmt.Errorf("geocode result %q has no center", f.PlaceName)
	}

	info := domain.LocationInfo{
		Name:      f.PlaceName,
		City:      f.Text,
		Longitude: f.Center[0],
		Latitude:  f.Center[1],
	}
	country, short := f.Text, f.Properties.ShortCode
	for _, cx := range f.Context {
		if strings.HasPrefix(cx.ID, "country.") {
			country, short = cx.Text, cx.ShortCode
			break
		}
	}
	info.Country = country
	info.CountryShortName = strings.ToUpper(short)
	return info, nil
}
