// Package transform turns a job application form captured from a Greenhouse
// edit page into the payload accepted by the job-post creation endpoint.
//
// The creation endpoint is strict about shape: nested config blocks must be
// sent as *_attributes keys and new records must carry null ids.
package transform

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"jobposts-engine/internal/domain"
	"jobposts-engine/internal/report"
)

const (
	keyApplication   = "job_application"
	keyFeedSettings  = "job_board_feed_settings"
	keyFeedLocation  = "job_board_feed_location"
	keyEducation     = "education_config"
	keyQuestions     = "questions"
	keyLocations     = "job_post_locations"
	keyLocationType  = "job_post_location_type"
	keyAnswerType    = "answer_type"
	keyOptions       = "question_options"
	keyLinkedField   = "linked_candidate_field"
	attributesSuffix = "_attributes"

	FreeTextKey = "FREE_TEXT"
	IndeedKey   = "INDEED"
)

// EEOCLocations are the US locations that get the EEOC questionnaire.
var EEOCLocations = []string{
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

type Input struct {
	TargetLocation     string
	TargetBoardID      int
	SourcePostID       int
	SourcePostName     string
	Geo                domain.LocationInfo
	FilteredAttributes []string
}

func IsEEOCLocation(loc string) bool {
	return slices.Contains(EEOCLocations, loc)
}

// BuildCreationPayload never modifies raw. Missing feed settings, locations
// or education config fail the whole payload.
func BuildCreationPayload(raw map[string]any, in Input) (map[string]any, error) {
	src, ok := raw[keyApplication].(map[string]any)
	if !ok {
		return nil, missing(keyApplication)
	}
	app := deepCopy(src).(map[string]any)

	feedSettings, ok := app[keyFeedSettings].([]any)
	if !ok {
		return nil, missing(keyApplication + "." + keyFeedSettings)
	}
	education, ok := app[keyEducation].(map[string]any)
	if !ok {
		return nil, missing(keyApplication + "." + keyEducation)
	}
	locations, ok := app[keyLocations].([]any)
	if !ok || len(locations) == 0 {
		return nil, missing(keyApplication + "." + keyLocations + "[0]")
	}
	firstLocation, ok := locations[0].(map[string]any)
	if !ok {
		return nil, missing(keyApplication + "." + keyLocations + "[0]")
	}
	feedLocation, _ := app[keyFeedLocation].(map[string]any)
	questions, _ := app[keyQuestions].([]any)

	out := make(map[string]any, len(app))
	for k, v := range app {
		switch k {
		case keyFeedSettings, keyFeedLocation, keyEducation, keyQuestions:
		default:
			out[k] = v
		}
	}

	qs := make([]any, 0, len(questions))
	for i, q := range questions {
		qm, ok := q.(map[string]any)
		if !ok {
			return nil, missing(fmt.Sprintf("%s.%s[%d]", keyApplication, keyQuestions, i))
		}
		qs = append(qs, question(qm))
	}
	out[keyQuestions+attributesSuffix] = qs

	out[keyLocations] = append([]any{location(firstLocation, in.TargetLocation)}, locations[1:]...)
	out["title"] = in.SourcePostName
	out["enable_eeoc"] = IsEEOCLocation(in.TargetLocation)

	settings := []any{}
	for _, fs := range feedSettings {
		m, ok := fs.(map[string]any)
		if !ok || m["source_key"] != IndeedKey {
			continue
		}
		settings = append(settings, map[string]any{
			"id":              nil,
			"source_id":       m["source_id"],
			"include_in_feed": m["include_in_feed"],
		})
	}
	out[keyFeedSettings+attributesSuffix] = settings

	out[keyFeedLocation+attributesSuffix] = withGeo(feedLocation, in.Geo)

	edu := maps.Clone(education)
	edu["id"] = nil
	out[keyEducation+attributesSuffix] = edu

	filtered := make(map[string]bool, len(in.FilteredAttributes))
	for _, k := range in.FilteredAttributes {
		filtered[k] = true
	}
	application := make(map[string]any, len(out))
	for k, v := range out {
		if !filtered[k] {
			application[k] = v
		}
	}

	return map[string]any{
		"external_or_internal_greenhouse_job_board_id": in.TargetBoardID,
		"greenhouse_job_application":                   application,
		"template_application_id":                      in.SourcePostID,
	}, nil
}

func question(q map[string]any) map[string]any {
	out := make(map[string]any, len(q))
	for k, v := range q {
		switch k {
		case keyAnswerType, keyOptions, keyLinkedField:
		default:
			out[k] = v
		}
	}
	out["id"] = nil

	switch at := q[keyAnswerType].(type) {
	case map[string]any:
		out["answer_type_key"] = at["key"]
	case string:
		out["answer_type_key"] = at
	}

	if opts, ok := q[keyOptions].([]any); ok && len(opts) > 0 {
		lines := make([]string, 0, len(opts))
		for _, o := range opts {
			lines = append(lines, optionLabel(o))
		}
		out["question_options_text"] = strings.Join(lines, "\n")
	}

	if lf, ok := q[keyLinkedField].(map[string]any); ok {
		attrs := make(map[string]any, len(lf))
		for k, v := range lf {
			switch k {
			case "id", "created_at", "updated_at":
			default:
				attrs[k] = v
			}
		}
		out[keyLinkedField+attributesSuffix] = attrs
	}
	return out
}

func optionLabel(o any) string {
	switch v := o.(type) {
	case string:
		return v
	case map[string]any:
		for _, k := range []string{"label", "name", "value"} {
			if s, ok := v[k].(string); ok {
				return s
			}
		}
	}
	return fmt.Sprint(o)
}

func location(loc map[string]any, target string) map[string]any {
	out := maps.Clone(loc)
	out["text_value"] = target
	if lt, _ := loc[keyLocationType].(map[string]any); lt == nil || lt["key"] != FreeTextKey {
		out[keyLocationType] = map[string]any{"key": FreeTextKey, "name": "Free Text"}
	}
	out["custom_location_id"] = nil
	return out
}

func withGeo(feedLocation map[string]any, g domain.LocationInfo) map[string]any {
	out := maps.Clone(feedLocation)
	if out == nil {
		out = map[string]any{}
	}
	out["name"] = g.Name
	out["city"] = g.City
	out["latitude"] = g.Latitude
	out["longitude"] = g.Longitude
	out["country"] = g.Country
	out["country_short_name"] = g.CountryShortName
	return out
}

func missing(key string) error {
	return &report.ScrapeError{Selector: key, Context: "job application form"}
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, v := range t {
			m[k] = deepCopy(v)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, v := range t {
			s[i] = deepCopy(v)
		}
		return s
	default:
		return v
	}
}
