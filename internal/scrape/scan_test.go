package scrape

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobposts-engine/internal/report"
)

type fakeSite struct {
	pages   map[string]string // url -> html
	visited []string
}

func (f *fakeSite) load(_ context.Context, url string) (Page, error) {
	f.visited = append(f.visited, url)
	html, ok := f.pages[url]
	if !ok {
		return Page{}, fmt.Errorf("no page %s", url)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Page{}, err
	}
	return Page{Doc: doc, Pagination: doc.Find(".pagination")}, nil
}

func rows(doc *goquery.Document) ([]string, int, error) {
	var out []string
	doc.Find("li.row").Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.Text())
	})
	return out, len(out), nil
}

const base = "https://gh.test/plans/1/jobapp"

func TestScanSinglePageWithoutPagination(t *testing.T) {
	site := &fakeSite{pages: map[string]string{
		base:             `<ul><li class="row">a</li></ul>`,
		base + "?page=1": `<ul><li class="row">a</li><li class="row">b</li></ul>`,
		base + "?page=2": `<ul><li class="row">never</li></ul>`,
	}}

	got, err := Scan(context.Background(), site.load, base, rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, []string{base, base + "?page=1"}, site.visited)
}

func TestScanAllPagesInOrder(t *testing.T) {
	pag := `<div class="pagination"><a>1</a><a>2</a><a>3</a><a>Next ›</a></div>`
	site := &fakeSite{pages: map[string]string{
		base:             pag + `<li class="row">x</li>`,
		base + "?page=1": pag + `<li class="row">p1</li>`,
		base + "?page=2": pag + `<li class="row">p2a</li><li class="row">p2b</li>`,
		base + "?page=3": pag + `<li class="row">p3</li>`,
	}}

	got, err := Scan(context.Background(), site.load, base, rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2a", "p2b", "p3"}, got)
}

func TestScanEmptyFirstPageIsNotFound(t *testing.T) {
	site := &fakeSite{pages: map[string]string{
		base:             `<p>No job posts</p>`,
		base + "?page=1": `<p>No job posts</p>`,
	}}

	_, err := Scan(context.Background(), site.load, base, rows)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, report.IsUserError(err))
}

func TestScanFilteredFirstPageIsNotNotFound(t *testing.T) {
	pag := `<div class="pagination"><a>1</a><a>2</a></div>`
	site := &fakeSite{pages: map[string]string{
		base:             pag + `<li class="row">skip</li>`,
		base + "?page=1": pag + `<li class="row">skip</li>`,
		base + "?page=2": pag + `<li class="row">keep</li>`,
	}}
	keepOnly := func(doc *goquery.Document) ([]string, int, error) {
		all, seen, err := rows(doc)
		var out []string
		for _, r := range all {
			if r == "keep" {
				out = append(out, r)
			}
		}
		return out, seen, err
	}

	got, err := Scan(context.Background(), site.load, base, keepOnly)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, got)
}

func TestScanExtractorErrorStops(t *testing.T) {
	site := &fakeSite{pages: map[string]string{
		base:             `<li class="row">a</li>`,
		base + "?page=1": `<li class="row">a</li>`,
	}}
	boom := errors.New("selector broke")
	_, err := Scan(context.Background(), site.load, base, func(*goquery.Document) ([]string, int, error) {
		return nil, 0, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestPagesIsNotRestartable(t *testing.T) {
	site := &fakeSite{pages: map[string]string{
		base:             `<li class="row">a</li>`,
		base + "?page=1": `<li class="row">a</li>`,
	}}
	seq := Pages(context.Background(), site.load, base, rows)
	for _, err := range seq {
		require.NoError(t, err)
	}
	for _, err := range seq {
		assert.ErrorIs(t, err, ErrConsumed)
	}
}

func TestPageCount(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div class="pagination"><em>1</em><a data-page="12">Last</a><a>4</a></div>`))
	require.NoError(t, err)
	assert.Equal(t, 12, PageCount(doc.Find(".pagination")))
	assert.Equal(t, 1, PageCount(doc.Find(".nope")))
	assert.Equal(t, 1, PageCount(nil))
}
