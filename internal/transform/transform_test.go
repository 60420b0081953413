package transform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobposts-engine/internal/domain"
	"jobposts-engine/internal/report"
)

const rawForm = `{
  "job_application": {
    "id": 991,
    "title": "Old title",
    "job_id": 12,
    "live": true,
    "job_board_feed_settings": [
      {"id": 1, "source_key": "INDEED", "source_id": 7, "include_in_feed": true, "extra": "x"},
      {"id": 2, "source_key": "LINKEDIN", "source_id": 8, "include_in_feed": false}
    ],
    "job_board_feed_location": {"id": 5, "name": "Old"},
    "education_config": {"id": 9, "degree": "optional"},
    "questions": [
      {
        "id": 100,
        "label": "Pick one",
        "answer_type": {"key": "SINGLE_SELECT", "name": "Single select"},
        "question_options": [{"label": "Yes"}, {"label": "No"}],
        "linked_candidate_field": {"id": 3, "created_at": "x", "updated_at": "y", "field": "phone"}
      },
      {
        "id": 101,
        "label": "Why us?",
        "answer_type": {"key": "LONG_TEXT"},
        "question_options": [],
        "linked_candidate_field": null
      }
    ],
    "job_post_locations": [
      {"id": 44, "text_value": "Old place", "custom_location_id": 3, "job_post_location_type": {"key": "CUSTOM"}}
    ]
  }
}`

func parse(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func input() Input {
	return Input{
		TargetLocation: "Austin, Texas, United States",
		TargetBoardID:  77,
		SourcePostID:   991,
		SourcePostName: "Backend Engineer",
		Geo: domain.LocationInfo{
			Name: "Austin, Texas, United States", City: "Austin",
			Latitude: 30.26, Longitude: -97.74,
			Country: "United States", CountryShortName: "US",
		},
		FilteredAttributes: []string{"id", "job_id", "live"},
	}
}

func app(t *testing.T, payload map[string]any) map[string]any {
	t.Helper()
	a, ok := payload["greenhouse_job_application"].(map[string]any)
	require.True(t, ok)
	return a
}

func TestBuildCreationPayloadEnvelope(t *testing.T) {
	payload, err := BuildCreationPayload(parse(t, rawForm), input())
	require.NoError(t, err)

	assert.Equal(t, 77, payload["external_or_internal_greenhouse_job_board_id"])
	assert.Equal(t, 991, payload["template_application_id"])
	assert.Len(t, payload, 3)
}

func TestNestedBlocksAreRenamed(t *testing.T) {
	payload, err := BuildCreationPayload(parse(t, rawForm), input())
	require.NoError(t, err)
	a := app(t, payload)

	for _, k := range []string{"job_board_feed_settings", "job_board_feed_location", "education_config", "questions"} {
		assert.NotContains(t, a, k)
		assert.Contains(t, a, k+"_attributes")
	}
	for _, k := range []string{"id", "job_id", "live"} {
		assert.NotContains(t, a, k)
	}
	assert.Equal(t, "Backend Engineer", a["title"])
}

func TestLocationRewritten(t *testing.T) {
	payload, err := BuildCreationPayload(parse(t, rawForm), input())
	require.NoError(t, err)
	locs := app(t, payload)["job_post_locations"].([]any)
	loc := locs[0].(map[string]any)

	assert.Equal(t, "Austin, Texas, United States", loc["text_value"])
	assert.Nil(t, loc["custom_location_id"])
	assert.Equal(t, FreeTextKey, loc["job_post_location_type"].(map[string]any)["key"])
}

func TestFreeTextLocationTypeKept(t *testing.T) {
	raw := parse(t, rawForm)
	loc := raw["job_application"].(map[string]any)["job_post_locations"].([]any)[0].(map[string]any)
	loc["job_post_location_type"] = map[string]any{"key": FreeTextKey, "id": 4}

	payload, err := BuildCreationPayload(raw, input())
	require.NoError(t, err)
	got := app(t, payload)["job_post_locations"].([]any)[0].(map[string]any)["job_post_location_type"].(map[string]any)
	assert.Equal(t, float64(4), got["id"])
}

func TestQuestions(t *testing.T) {
	payload, err := BuildCreationPayload(parse(t, rawForm), input())
	require.NoError(t, err)
	qs := app(t, payload)["questions_attributes"].([]any)
	require.Len(t, qs, 2)

	q0 := qs[0].(map[string]any)
	assert.Nil(t, q0["id"])
	assert.Contains(t, q0, "id")
	assert.Equal(t, "SINGLE_SELECT", q0["answer_type_key"])
	assert.NotContains(t, q0, "answer_type")
	assert.Equal(t, "Yes\nNo", q0["question_options_text"])
	assert.NotContains(t, q0, "question_options")
	assert.NotContains(t, q0, "linked_candidate_field")
	assert.Equal(t, map[string]any{"field": "phone"}, q0["linked_candidate_field_attributes"])

	q1 := qs[1].(map[string]any)
	assert.Equal(t, "LONG_TEXT", q1["answer_type_key"])
	assert.NotContains(t, q1, "question_options_text")
	assert.NotContains(t, q1, "linked_candidate_field")
	assert.NotContains(t, q1, "linked_candidate_field_attributes")
}

func TestFeedSettingsOnlyIndeed(t *testing.T) {
	payload, err := BuildCreationPayload(parse(t, rawForm), input())
	require.NoError(t, err)
	fs := app(t, payload)["job_board_feed_settings_attributes"].([]any)

	require.Len(t, fs, 1)
	assert.Equal(t, map[string]any{"id": nil, "source_id": float64(7), "include_in_feed": true}, fs[0])
}

func TestFeedLocationAndEducation(t *testing.T) {
	payload, err := BuildCreationPayload(parse(t, rawForm), input())
	require.NoError(t, err)
	a := app(t, payload)

	fl := a["job_board_feed_location_attributes"].(map[string]any)
	assert.Equal(t, "Austin", fl["city"])
	assert.Equal(t, "US", fl["country_short_name"])
	assert.Equal(t, 30.26, fl["latitude"])

	edu := a["education_config_attributes"].(map[string]any)
	assert.Nil(t, edu["id"])
	assert.Equal(t, "optional", edu["degree"])
}

func TestEEOCFlag(t *testing.T) {
	in := input()
	payload, err := BuildCreationPayload(parse(t, rawForm), in)
	require.NoError(t, err)
	assert.Equal(t, true, app(t, payload)["enable_eeoc"])

	in.TargetLocation = "Berlin, Germany"
	payload, err = BuildCreationPayload(parse(t, rawForm), in)
	require.NoError(t, err)
	assert.Equal(t, false, app(t, payload)["enable_eeoc"])

	// exact match only
	in.TargetLocation = "Downtown, Austin, Texas, United States"
	payload, err = BuildCreationPayload(parse(t, rawForm), in)
	require.NoError(t, err)
	assert.Equal(t, false, app(t, payload)["enable_eeoc"])
}

func TestInputIsNotMutated(t *testing.T) {
	raw := parse(t, rawForm)
	before := parse(t, rawForm)

	_, err := BuildCreationPayload(raw, input())
	require.NoError(t, err)
	assert.Equal(t, before, raw)
}

func TestMinimalForm(t *testing.T) {
	raw := parse(t, `{"job_application": {
		"job_board_feed_settings": [],
		"education_config": {},
		"job_post_locations": [{}]
	}}`)
	payload, err := BuildCreationPayload(raw, input())
	require.NoError(t, err)
	a := app(t, payload)

	assert.Equal(t, []any{}, a["questions_attributes"])
	assert.Equal(t, []any{}, a["job_board_feed_settings_attributes"])
	assert.Equal(t, "Backend Engineer", a["title"])
}

func TestMissingKeysFail(t *testing.T) {
	cases := map[string]string{
		"no application":     `{}`,
		"no feed settings":   `{"job_application": {"education_config": {}, "job_post_locations": [{}]}}`,
		"no education":       `{"job_application": {"job_board_feed_settings": [], "job_post_locations": [{}]}}`,
		"no locations":       `{"job_application": {"job_board_feed_settings": [], "education_config": {}}}`,
		"empty locations":    `{"job_application": {"job_board_feed_settings": [], "education_config": {}, "job_post_locations": []}}`,
		"malformed question": `{"job_application": {"job_board_feed_settings": [], "education_config": {}, "job_post_locations": [{}], "questions": [1]}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := BuildCreationPayload(parse(t, doc), input())
			var se *report.ScrapeError
			require.ErrorAs(t, err, &se)
		})
	}
}
