package greenhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobposts-engine/internal/browser"
	"jobposts-engine/internal/domain"
	"jobposts-engine/internal/report"
	"jobposts-engine/internal/transform"
)

const (
	csrfSelector  = `meta[name="csrf-token"]`
	reactSelector = "[data-react-class][data-react-props]"
	reactPropsKey = "data-react-props"
)

// Duplicate clones post onto board at location. Nothing is posted unless the
// geocode and the payload both succeed.
func (c *Client) Duplicate(ctx context.Context, post domain.PostInfo, location string, board domain.JobBoard) error {
	what := fmt.Sprintf("duplicate post %d to %q", post.ID, location)

	doc, err := c.load(ctx, c.url("jobapps", strconv.Itoa(post.ID), "edit"))
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	raw, err := FormCapture(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	token, err := CSRFToken(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}

	geo, err := c.GetLocationInfo(ctx, location)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}

	payload, err := transform.BuildCreationPayload(raw, transform.Input{
		TargetLocation:     location,
		TargetBoardID:      board.ID,
		SourcePostID:       post.ID,
		SourcePostName:     post.Name,
		Geo:                geo,
		FilteredAttributes: c.cfg.Greenhouse.FilteredAttributes,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encode payload: %w", what, err)
	}

	res, err := c.call(ctx, what, browser.FetchRequest{
		Method: "POST",
		URL:    c.url("plans", strconv.Itoa(post.JobID), "jobapps"),
		Headers: map[string]string{
			"content-type":     "application/json",
			"accept":           "application/json",
			"x-csrf-token":     token,
			"x-requested-with": "XMLHttpRequest",
		},
		Body: string(body),
	})
	if err != nil {
		return err
	}
	if !succeeded(res.Body) {
		return c.failed(ctx, what, res)
	}
	log.Printf("[greenhouse] duplicated post=%d job=%d board=%d location=%q", post.ID, post.JobID, board.ID, location)
	return nil
}

// SetStatus flips post live or offline on board. The token is read from the
// job page loaded for this call, never reused.
func (c *Client) SetStatus(ctx context.Context, post domain.PostInfo, status domain.PostStatus, board domain.JobBoard) error {
	what := fmt.Sprintf("set post %d %s", post.ID, status)

	statusID, err := board.StatusID(status)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	doc, err := c.load(ctx, c.jobAppURL(post.JobID))
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	token, err := CSRFToken(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}

	form := url.Values{}
	form.Set("authenticity_token", token)
	form.Set("job_application_status_id", strconv.Itoa(statusID))

	res, err := c.call(ctx, what, browser.FetchRequest{
		Method: "POST",
		URL:    c.url("jobapps", strconv.Itoa(post.ID), "status"),
		Headers: map[string]string{
			"content-type":     "application/x-www-form-urlencoded; charset=UTF-8",
			"x-requested-with": "XMLHttpRequest",
		},
		Body:     form.Encode(),
		Referrer: c.jobAppURL(post.JobID),
	})
	if err != nil {
		return err
	}
	if !notRejected(res.Body) {
		return c.failed(ctx, what, res)
	}
	log.Printf("[greenhouse] status post=%d status=%s board=%d", post.ID, status, board.ID)
	return nil
}

// DeletePost removes post. Only an explicit success body counts.
func (c *Client) DeletePost(ctx context.Context, post domain.PostInfo, job domain.JobInfo) error {
	what := fmt.Sprintf("delete post %d", post.ID)
	referrer := c.jobAppURL(job.ID)

	headers := map[string]string{
		"accept":           "application/json",
		"x-requested-with": "XMLHttpRequest",
	}
	if doc, err := c.current(ctx); err == nil {
		if token, err := CSRFToken(doc); err == nil {
			headers["x-csrf-token"] = token
		}
	}

	res, err := c.call(ctx, what, browser.FetchRequest{
		Method:   "DELETE",
		URL:      c.url("jobapps", strconv.Itoa(post.ID)),
		Headers:  headers,
		Referrer: referrer,
	})
	if err != nil {
		return err
	}
	if !succeeded(res.Body) {
		return c.failed(ctx, what, res)
	}
	log.Printf("[greenhouse] deleted post=%d job=%d", post.ID, job.ID)
	return nil
}

func CSRFToken(doc *goquery.Document) (string, error) {
	token, _ := doc.Find(csrfSelector).First().Attr("content")
	token = strings.TrimSpace(token)
	if token == "" {
		return "", &report.ScrapeError{Selector: csrfSelector, Context: "anti-forgery token"}
	}
	return token, nil
}

// FormCapture returns the props of the first embedded component that carries
// a job application form.
func FormCapture(doc *goquery.Document) (map[string]any, error) {
	var (
		out map[string]any
		err error
	)
	doc.Find(reactSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr(reactPropsKey)
		var props map[string]any
		if e := json.Unmarshal([]byte(v), &props); e != nil {
			err = fmt.Errorf("decode %s: %w", reactPropsKey, e)
			return true
		}
		if _, ok := props["job_application"]; ok {
			out, err = props, nil
			return false
		}
		return true
	})
	if out != nil {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, &report.ScrapeError{Selector: reactSelector, Context: "job application form"}
}
