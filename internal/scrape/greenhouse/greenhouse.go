package greenhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"jobposts-engine/internal/browser"
	"jobposts-engine/internal/config"
	"jobposts-engine/internal/domain"
	"jobposts-engine/internal/report"
	"jobposts-engine/internal/scrape/util"
)

// GeoCache stores normalized geocoding results by query.
type GeoCache interface {
	Get(ctx context.Context, query string) (domain.LocationInfo, bool)
	Set(ctx context.Context, query string, info domain.LocationInfo) error
}

// Client replays Greenhouse's internal endpoints from inside the logged-in
// browser tab. It owns no state besides the page it drives.
type Client struct {
	page     browser.Page
	cfg      config.Config
	limiter  *util.HostLimiter
	reporter report.Reporter
	geo      GeoCache
}

type Option func(*Client)

func WithLimiter(l *util.HostLimiter) Option { return func(c *Client) { c.limiter = l } }

func WithReporter(r report.Reporter) Option { return func(c *Client) { c.reporter = r } }

func WithGeoCache(g GeoCache) Option { return func(c *Client) { c.geo = g } }

func New(page browser.Page, cfg config.Config, opts ...Option) *Client {
	c := &Client{
		page:     page,
		cfg:      cfg,
		reporter: report.Nop{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) url(parts ...string) string {
	return util.JoinURL(c.cfg.Greenhouse.BaseURL, parts...)
}

func (c *Client) navigate(ctx context.Context, u string) error {
	if err := c.limiter.WaitURL(ctx, u); err != nil {
		return err
	}
	if err := c.page.Navigate(ctx, u); err != nil {
		return fmt.Errorf("navigate %s: %w", u, err)
	}
	return nil
}

func (c *Client) Reload(ctx context.Context) error {
	if err := c.page.Reload(ctx); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return nil
}

// ensureOrigin puts the tab on the Greenhouse origin so in-page requests
// carry the session cookie.
func (c *Client) ensureOrigin(ctx context.Context) error {
	cur, err := c.page.URL(ctx)
	if err == nil && util.Host(cur) == util.Host(c.cfg.Greenhouse.BaseURL) {
		return nil
	}
	return c.navigate(ctx, c.url("dashboard"))
}

// call performs one in-page request. Any HTTP error is reported with its
// detail and returned as an OperationError carrying what.
func (c *Client) call(ctx context.Context, what string, req browser.FetchRequest) (browser.FetchResult, error) {
	if err := c.limiter.WaitURL(ctx, req.URL); err != nil {
		return browser.FetchResult{}, err
	}
	res, err := c.page.Fetch(ctx, req)
	if err != nil {
		return res, fmt.Errorf("%s: %w", what, err)
	}
	if res.IsError || res.Status >= http.StatusBadRequest {
		return res, c.failed(ctx, what, res)
	}
	return res, nil
}

// secretParams never leave the process in logs or reports.
var secretParams = []string{"access_token"}

func (c *Client) failed(ctx context.Context, what string, res browser.FetchResult) error {
	remote := &report.RemoteError{
		IsError:    true,
		Status:     res.Status,
		URL:        util.RedactQuery(res.URL, secretParams...),
		StatusText: res.StatusText,
		Body:       snippet(res.Body),
	}
	log.Printf("[greenhouse] %s failed status=%d url=%s", what, remote.Status, remote.URL)
	c.reporter.Report(ctx, remote, report.Fields{"op": what, "body": remote.Body})
	return &report.OperationError{Context: what, Err: remote, Reported: true}
}

type successBody struct {
	Status  string `json:"status"`
	Success *bool  `json:"success"`
}

// succeeded requires an explicit success marker in the body.
func succeeded(body string) bool {
	var b successBody
	if err := json.Unmarshal([]byte(body), &b); err != nil {
		return false
	}
	return b.Status == "success" || (b.Success != nil && *b.Success)
}

// notRejected accepts any body that does not explicitly report failure.
func notRejected(body string) bool {
	var b successBody
	if err := json.Unmarshal([]byte(body), &b); err != nil {
		return true
	}
	if b.Success != nil && !*b.Success {
		return false
	}
	switch strings.ToLower(b.Status) {
	case "error", "failure", "failed":
		return false
	}
	return true
}

func snippet(s string) string {
	const limit = 512
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
