package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

type Options struct {
	Headless  bool
	ExecPath  string
	UserAgent string
	Timeout   time.Duration // per action
}

// Chrome drives one headless Chrome tab through chromedp.
type Chrome struct {
	ctx     context.Context
	cancel  func()
	timeout time.Duration
}

func NewChrome(parent context.Context, o Options) (*Chrome, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", o.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 900),
	)
	if o.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(o.ExecPath))
	}
	if o.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(o.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Printf))

	// start the browser now so launch errors surface here
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("browser start: %w", err)
	}

	timeout := o.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Chrome{
		ctx:     tabCtx,
		timeout: timeout,
		cancel: func() {
			cancelTab()
			cancelAlloc()
		},
	}, nil
}

func (c *Chrome) Close() error {
	c.cancel()
	return nil
}

// run binds the caller's deadline to the tab context.
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	tctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(tctx, actions...)
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	return c.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (c *Chrome) Reload(ctx context.Context) error {
	return c.run(ctx,
		chromedp.Reload(),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (c *Chrome) URL(ctx context.Context) (string, error) {
	var u string
	err := c.run(ctx, chromedp.Location(&u))
	return u, err
}

func (c *Chrome) HTML(ctx context.Context) (string, error) {
	var html string
	err := c.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (c *Chrome) Evaluate(ctx context.Context, expr string, out any) error {
	return c.run(ctx, chromedp.Evaluate(expr, out, awaitPromise))
}

const fetchJS = `(async (req) => {
  const init = { method: req.method, headers: req.headers || {}, credentials: req.credentials || "include" };
  if (req.body) init.body = req.body;
  if (req.referrer) init.referrer = req.referrer;
  try {
    const res = await fetch(req.url, init);
    const body = await res.text();
    return { isError: !res.ok, status: res.status, url: res.url, statusText: res.statusText, body };
  } catch (e) {
    return { isError: true, status: 0, url: req.url, statusText: String(e), body: "" };
  }
})(%s)`

func (c *Chrome) Fetch(ctx context.Context, req FetchRequest) (FetchResult, error) {
	arg, err := json.Marshal(req)
	if err != nil {
		return FetchResult{}, err
	}
	var res FetchResult
	if err := c.Evaluate(ctx, fmt.Sprintf(fetchJS, arg), &res); err != nil {
		// Query strings may carry credentials.
		path, _, _ := strings.Cut(req.URL, "?")
		return FetchResult{}, fmt.Errorf("in-page fetch %s %s: %w", req.Method, path, err)
	}
	return res, nil
}

func (c *Chrome) Click(ctx context.Context, selector string) error {
	return c.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

func (c *Chrome) Type(ctx context.Context, selector, text string) error {
	return c.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
}

func (c *Chrome) PressEnter(ctx context.Context, selector string) error {
	return c.run(ctx, chromedp.SendKeys(selector, kb.Enter, chromedp.ByQuery))
}

func (c *Chrome) SetCookie(ctx context.Context, ck Cookie) error {
	return c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		p := network.SetCookie(ck.Name, ck.Value).
			WithDomain(ck.Domain).
			WithPath(ck.Path).
			WithSecure(ck.Secure).
			WithHTTPOnly(ck.HTTPOnly)
		if !ck.Expires.IsZero() {
			exp := cdp.TimeSinceEpoch(ck.Expires)
			p = p.WithExpires(&exp)
		}
		return p.Do(ctx)
	}))
}

func (c *Chrome) Cookies(ctx context.Context) ([]Cookie, error) {
	var out []Cookie
	err := c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		cs, err := network.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, ck := range cs {
			var exp time.Time
			if ck.Expires > 0 {
				exp = time.Unix(int64(ck.Expires), 0)
			}
			out = append(out, Cookie{
				Name:     ck.Name,
				Value:    ck.Value,
				Domain:   ck.Domain,
				Path:     ck.Path,
				Expires:  exp,
				Secure:   ck.Secure,
				HTTPOnly: ck.HTTPOnly,
			})
		}
		return nil
	}))
	return out, err
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}
