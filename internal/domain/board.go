package domain

import "fmt"

type PostStatus string

const (
	StatusLive    PostStatus = "live"
	StatusOffline PostStatus = "offline"
)

// JobBoard status ids differ per Greenhouse instance; always fetch them fresh.
type JobBoard struct {
	ID                int    `json:"id"`
	Name              string `json:"company_name"`
	PublishStatusID   int    `json:"publish_status_id"`
	UnpublishStatusID int    `json:"unpublish_status_id"`
}

func (b JobBoard) StatusID(s PostStatus) (int, error) {
	switch s {
	case StatusLive:
		return b.PublishStatusID, nil
	case StatusOffline:
		return b.UnpublishStatusID, nil
	default:
		return 0, fmt.Errorf("unknown post status %q", s)
	}
}
