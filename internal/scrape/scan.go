package scrape

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"

	"jobposts-engine/internal/report"
	"jobposts-engine/internal/scrape/util"
)

var (
	// ErrNotFound means page 1 had no listing rows at all, as opposed to a
	// selector that broke.
	ErrNotFound = errors.New("listing not found")

	ErrConsumed = errors.New("page sequence already consumed")
)

// Page is one loaded listing page. Pagination may be empty.
type Page struct {
	Number     int
	Doc        *goquery.Document
	Pagination *goquery.Selection
}

type Loader func(ctx context.Context, url string) (Page, error)

// Extractor returns the records of one page and how many listing rows it
// saw. A filtering extractor may keep fewer records than rows.
type Extractor[T any] func(doc *goquery.Document) (items []T, seen int, err error)

// PageCount returns the highest numeric pagination marker, or 1 when there
// are none.
func PageCount(pagination *goquery.Selection) int {
	last := 1
	if pagination == nil || pagination.Length() == 0 {
		return last
	}
	pagination.Find("a, span, em, li").Each(func(_ int, s *goquery.Selection) {
		txt := util.CleanText(s.Text())
		if n, err := strconv.Atoi(txt); err == nil && n > last {
			last = n
		}
		if v, ok := s.Attr("data-page"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > last {
				last = n
			}
		}
	})
	return last
}

// Pages walks baseURL?page=1..N lazily. The page count is read from the
// pagination markers of baseURL itself. The sequence stops at the first
// error and can only be ranged over once.
func Pages[T any](ctx context.Context, load Loader, baseURL string, extract Extractor[T]) iter.Seq2[[]T, error] {
	var used atomic.Bool
	return func(yield func([]T, error) bool) {
		if used.Swap(true) {
			yield(nil, ErrConsumed)
			return
		}

		first, err := load(ctx, baseURL)
		if err != nil {
			yield(nil, err)
			return
		}
		count := PageCount(first.Pagination)

		for n := 1; n <= count; n++ {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			pageURL := util.WithPage(baseURL, n)
			p, err := load(ctx, pageURL)
			if err != nil {
				yield(nil, fmt.Errorf("page %d: %w", n, err))
				return
			}
			items, seen, err := extract(p.Doc)
			if err != nil {
				yield(nil, fmt.Errorf("page %d: %w", n, err))
				return
			}
			if n == 1 && seen == 0 {
				yield(nil, report.User(fmt.Errorf("%w: %s", ErrNotFound, pageURL)))
				return
			}
			if !yield(items, nil) {
				return
			}
		}
	}
}

// Scan folds Pages into one slice in page order.
func Scan[T any](ctx context.Context, load Loader, baseURL string, extract Extractor[T]) ([]T, error) {
	var out []T
	for items, err := range Pages(ctx, load, baseURL, extract) {
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}
