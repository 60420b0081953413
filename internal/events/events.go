package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types published by the job orchestrator.
const (
	TypeProgress = "progress"
	TypeSummary  = "summary"
	TypeConfirm  = "confirm"
)

type Event struct {
	Type    string          `json:"type"`
	Version int             `json:"v"`
	At      time.Time       `json:"at"`
	RunID   string          `json:"run_id,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Progress counts completed steps of one batch.
type Progress struct {
	Op    string `json:"op"`
	Done  int    `json:"done"`
	Total int    `json:"total"`
	Verb  string `json:"verb"`
}

// Message renders the progress line, e.g. "2 of 5 job posts are created.".
func (p Progress) Message() string {
	return fmt.Sprintf("%d of %d job posts %s.", p.Done, p.Total, p.Verb)
}

func MakeEvent(runID, typ string, v int, data any) Event {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	return Event{
		Type:    typ,
		Version: v,
		At:      time.Now().UTC(),
		RunID:   runID,
		Data:    raw,
	}
}

// DecodeProgress returns the progress payload of a progress or summary event.
func DecodeProgress(e Event) (Progress, bool) {
	if e.Type != TypeProgress && e.Type != TypeSummary {
		return Progress{}, false
	}
	var p Progress
	if err := json.Unmarshal(e.Data, &p); err != nil {
		return Progress{}, false
	}
	return p, true
}

func (e Event) String() string {
	b, _ := json.Marshal(e)
	return string(b)
}
