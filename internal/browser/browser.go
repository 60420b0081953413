package browser

import (
	"context"
	"time"
)

// Page is the single browser tab a command drives. It is not safe for
// concurrent use; every caller runs sequentially on the same navigation
// history.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	URL(ctx context.Context) (string, error)
	// HTML returns the serialized document of the current page.
	HTML(ctx context.Context) (string, error)
	Evaluate(ctx context.Context, expr string, out any) error
	// Fetch runs window.fetch inside the page so the request carries the
	// session cookies and referrer of the current document.
	Fetch(ctx context.Context, req FetchRequest) (FetchResult, error)

	Click(ctx context.Context, selector string) error
	Type(ctx context.Context, selector, text string) error
	PressEnter(ctx context.Context, selector string) error

	SetCookie(ctx context.Context, c Cookie) error
	Cookies(ctx context.Context) ([]Cookie, error)
}

type FetchRequest struct {
	Method   string            `json:"method"`
	URL      string            `json:"url"`
	Headers  map[string]string `json:"headers,omitempty"`
	Body     string            `json:"body,omitempty"`
	Referrer string            `json:"referrer,omitempty"`
	// Credentials is the fetch credentials mode; empty means "include".
	Credentials string `json:"credentials,omitempty"`
}

// FetchResult mirrors what the in-page fetch reports back.
type FetchResult struct {
	IsError    bool   `json:"isError"`
	Status     int    `json:"status"`
	URL        string `json:"url"`
	StatusText string `json:"statusText"`
	Body       string `json:"body"`
}

type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain"`
	Path     string    `json:"path"`
	Expires  time.Time `json:"expires"`
	Secure   bool      `json:"secure"`
	HTTPOnly bool      `json:"httpOnly"`
}

func FindCookie(cs []Cookie, name string) (Cookie, bool) {
	for _, c := range cs {
		if c.Name == name {
			return c, true
		}
	}
	return Cookie{}, false
}
