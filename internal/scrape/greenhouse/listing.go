package greenhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobposts-engine/internal/browser"
	"jobposts-engine/internal/domain"
	"jobposts-engine/internal/report"
	"jobposts-engine/internal/scrape"
	"jobposts-engine/internal/scrape/util"
)

// selectors
const (
	jobNameSelector      = "h1.job-name"
	postRowSelector      = "tr.job-application"
	postIDAttr           = "data-job-application-id"
	postNameSelector     = "td.name a"
	postLocationSelector = "td.location"
	postBoardSelector    = "td.board"
	postBoardIDAttr      = "data-board-id"
	postStatusSelector   = "td.status"
	paginationSelector   = ".pagination"

	allJobsRowSelector  = "div.job"
	allJobsLinkSelector = "a.job-name"
	allJobsTagSelector  = ".job-tag"
)

var (
	requisitionPattern = regexp.MustCompile(`(\d+)`)
	jobHrefPattern     = regexp.MustCompile(`/(\d+)(?:/|$|\?)`)
)

// htmlLoader navigates the tab and parses the rendered document.
func (c *Client) htmlLoader(ctx context.Context, u string) (scrape.Page, error) {
	doc, err := c.load(ctx, u)
	if err != nil {
		return scrape.Page{}, err
	}
	return scrape.Page{Doc: doc, Pagination: doc.Find(paginationSelector)}, nil
}

func (c *Client) load(ctx context.Context, u string) (*goquery.Document, error) {
	if err := c.navigate(ctx, u); err != nil {
		return nil, err
	}
	return c.current(ctx)
}

func (c *Client) current(ctx context.Context) (*goquery.Document, error) {
	html, err := c.page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page html: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}
	return doc, nil
}

func (c *Client) jobAppURL(jobID int) string {
	return c.url("plans", strconv.Itoa(jobID), "jobapp")
}

// FetchJob scrapes every post of a job across all listing pages.
func (c *Client) FetchJob(ctx context.Context, jobID int) (domain.JobInfo, error) {
	base := c.jobAppURL(jobID)

	var name string
	posts, err := scrape.Scan(ctx, c.htmlLoader, base, func(doc *goquery.Document) ([]domain.PostInfo, int, error) {
		if name == "" {
			name = ParseJobName(doc)
		}
		ps, err := ParseJobApps(doc, jobID)
		return ps, len(ps), err
	})
	if err != nil {
		return domain.JobInfo{}, fmt.Errorf("fetch job %d: %w", jobID, err)
	}

	return domain.JobInfo{
		BaseInfo: domain.BaseInfo{ID: jobID, Name: name},
		Posts:    posts,
	}, nil
}

func ParseJobName(doc *goquery.Document) string {
	return util.CleanText(doc.Find(jobNameSelector).First().Text())
}

// ParseJobApps extracts the post rows of one job-app listing page.
func ParseJobApps(doc *goquery.Document, jobID int) ([]domain.PostInfo, error) {
	var (
		out []domain.PostInfo
		err error
	)
	doc.Find(postRowSelector).EachWithBreak(func(i int, row *goquery.Selection) bool {
		var p domain.PostInfo
		p, err = parsePostRow(row, jobID)
		if err != nil {
			err = fmt.Errorf("post row %d: %w", i, err)
			return false
		}
		out = append(out, p)
		return true
	})
	return out, err
}

func parsePostRow(row *goquery.Selection, jobID int) (domain.PostInfo, error) {
	id, err := intAttr(row, postIDAttr)
	if err != nil {
		return domain.PostInfo{}, err
	}
	board := row.Find(postBoardSelector).First()
	boardID, err := intAttr(board, postBoardIDAttr)
	if err != nil {
		return domain.PostInfo{}, err
	}
	name := util.CleanText(row.Find(postNameSelector).First().Text())
	if name == "" {
		return domain.PostInfo{}, &report.ScrapeError{Selector: postNameSelector, Context: "job post row"}
	}

	return domain.PostInfo{
		BaseInfo: domain.BaseInfo{ID: id, Name: name},
		Location: util.CleanText(row.Find(postLocationSelector).First().Text()),
		Board:    domain.BaseInfo{ID: boardID, Name: util.CleanText(board.Text())},
		JobID:    jobID,
		IsLive:   strings.EqualFold(util.CleanText(row.Find(postStatusSelector).First().Text()), "live"),
	}, nil
}

func intAttr(s *goquery.Selection, attr string) (int, error) {
	v, ok := s.Attr(attr)
	if !ok {
		return 0, &report.ScrapeError{Selector: "[" + attr + "]", Context: "job post row"}
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, &report.ScrapeError{Selector: "[" + attr + "=" + v + "]", Context: "job post row"}
	}
	return n, nil
}

type allJobsEnvelope struct {
	HTML       *string `json:"html"`
	Pagination string  `json:"pagination"`
}

func (c *Client) allJobsLoader(ctx context.Context, u string) (scrape.Page, error) {
	res, err := c.call(ctx, "list jobs", browser.FetchRequest{
		Method:  "GET",
		URL:     u,
		Headers: map[string]string{"accept": "application/json", "x-requested-with": "XMLHttpRequest"},
	})
	if err != nil {
		return scrape.Page{}, err
	}
	return parseAllJobsEnvelope(res.Body)
}

func parseAllJobsEnvelope(body string) (scrape.Page, error) {
	var env allJobsEnvelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return scrape.Page{}, fmt.Errorf("decode all jobs envelope: %w", err)
	}
	if env.HTML == nil {
		return scrape.Page{}, &report.ScrapeError{Selector: "html", Context: "all jobs envelope"}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(*env.HTML))
	if err != nil {
		return scrape.Page{}, err
	}
	p := scrape.Page{Doc: doc}
	// "\n" is how the endpoint says there are no further pages
	if env.Pagination != "\n" && strings.TrimSpace(env.Pagination) != "" {
		pd, err := goquery.NewDocumentFromReader(strings.NewReader(env.Pagination))
		if err != nil {
			return scrape.Page{}, err
		}
		p.Pagination = pd.Selection
	}
	return p, nil
}

// ListJobs returns the jobs tagged with the configured recruiter marker.
func (c *Client) ListJobs(ctx context.Context) ([]domain.JobRecord, error) {
	if err := c.ensureOrigin(ctx); err != nil {
		return nil, err
	}
	jobs, err := scrape.Scan(ctx, c.allJobsLoader, c.url("alljobs", "list"), ParseAllJobs(c.cfg.Greenhouse.RecruiterTag))
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// ParseAllJobs keeps rows tagged with recruiterTag. A tagged job whose title
// has no requisition number is an error, not a skip.
func ParseAllJobs(recruiterTag string) scrape.Extractor[domain.JobRecord] {
	return func(doc *goquery.Document) ([]domain.JobRecord, int, error) {
		var (
			out []domain.JobRecord
			err error
		)
		rows := doc.Find(allJobsRowSelector)
		rows.EachWithBreak(func(_ int, row *goquery.Selection) bool {
			if !hasTag(row, recruiterTag) {
				return true
			}
			link := row.Find(allJobsLinkSelector).First()
			title := util.CleanText(link.Text())
			href, _ := link.Attr("href")

			m := jobHrefPattern.FindStringSubmatch(href)
			if m == nil {
				err = &report.ScrapeError{Selector: allJobsLinkSelector + "[href]", Context: "all jobs row " + strconv.Quote(title)}
				return false
			}
			req := requisitionPattern.FindStringSubmatch(title)
			if req == nil {
				err = fmt.Errorf("job title %q has no requisition id", title)
				return false
			}
			id, _ := strconv.Atoi(m[1])
			out = append(out, domain.JobRecord{ID: id, Name: title, RequisitionID: req[1]})
			return true
		})
		return out, rows.Length(), err
	}
}

func hasTag(row *goquery.Selection, tag string) bool {
	found := false
	row.Find(allJobsTagSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found = strings.EqualFold(util.CleanText(s.Text()), tag)
		return !found
	})
	return found
}
