package greenhouse

import (
	"context"
	"encoding/json"
	"fmt"

	"jobposts-engine/internal/browser"
	"jobposts-engine/internal/domain"
	"jobposts-engine/internal/report"
)

type boardsResponse struct {
	JobBoards []domain.JobBoard `json:"job_boards"`
}

// GetBoards fetches boards with their instance-specific status ids.
func (c *Client) GetBoards(ctx context.Context) ([]domain.JobBoard, error) {
	if err := c.ensureOrigin(ctx); err != nil {
		return nil, err
	}
	res, err := c.call(ctx, "get job boards", browser.FetchRequest{
		Method:  "GET",
		URL:     c.url("jobboard", "get_boards"),
		Headers: map[string]string{"accept": "application/json", "x-requested-with": "XMLHttpRequest"},
	})
	if err != nil {
		return nil, err
	}
	var br boardsResponse
	if err := json.Unmarshal([]byte(res.Body), &br); err != nil {
		return nil, fmt.Errorf("decode job boards: %w", err)
	}
	if br.JobBoards == nil {
		return nil, &report.ScrapeError{Selector: "job_boards", Context: "get_boards response"}
	}
	return br.JobBoards, nil
}

func (c *Client) Board(ctx context.Context, name string) (domain.JobBoard, error) {
	boards, err := c.GetBoards(ctx)
	if err != nil {
		return domain.JobBoard{}, err
	}
	for _, b := range boards {
		if b.Name == name {
			return b, nil
		}
	}
	return domain.JobBoard{}, report.Userf("job board %q not found", name)
}
