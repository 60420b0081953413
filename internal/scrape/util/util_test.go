package util

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "San Francisco, CA", CleanText("  San Francisco,\n  CA "))
}

func TestFirstCommaTokenDropped(t *testing.T) {
	cases := map[string]string{
		"SoMa, San Francisco, California, United States": "San Francisco, California, United States",
		"Singapore":      "Singapore",
		"Berlin, ":       "Berlin,",
		" Tokyo, Japan ": "Japan",
	}
	for in, want := range cases {
		assert.Equal(t, want, FirstCommaTokenDropped(in), in)
	}
}

func TestWithPage(t *testing.T) {
	assert.Equal(t, "https://x.io/plans/1/jobapp?page=3", WithPage("https://x.io/plans/1/jobapp", 3))
	assert.Equal(t, "https://x.io/alljobs/list?page=2&type=all", WithPage("https://x.io/alljobs/list?type=all&page=1", 2))
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "https://x.io/plans/7/jobapp", JoinURL("https://x.io/", "/plans/", "7", "jobapp"))
}

func TestRedactQuery(t *testing.T) {
	got := RedactQuery("https://api.mapbox.test/places/Austin.json?access_token=pk.abc&limit=10", "access_token")
	assert.Equal(t, "https://api.mapbox.test/places/Austin.json?access_token=REDACTED&limit=10", got)
	assert.Equal(t, "https://x.io/a?page=2", RedactQuery("https://x.io/a?page=2", "access_token"))
	assert.Equal(t, "https://x.io/%zz", RedactQuery("https://x.io/%zz?access_token=pk.abc", "access_token"))
}

func TestHostLimiterNilIsNoop(t *testing.T) {
	var hl *HostLimiter
	require.NoError(t, hl.WaitURL(context.Background(), "https://x.io"))
}

func TestHostLimiterRespectsContext(t *testing.T) {
	hl := NewHostLimiter(0.001, 1)
	ctx := context.Background()
	require.NoError(t, hl.WaitURL(ctx, "https://a.io/1"))

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.Error(t, hl.WaitURL(ctx, "https://a.io/2"))

	// other hosts have their own bucket
	require.NoError(t, hl.WaitURL(context.Background(), "https://b.io/1"))
}

func TestHostLimiterDedicatedRate(t *testing.T) {
	hl := NewHostLimiter(0.001, 1).WithHost("https://API.mapbox.test/geocoding", 1000)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for range 5 {
		require.NoError(t, hl.WaitURL(ctx, "https://api.mapbox.test/places/Oslo.json"))
	}

	require.NoError(t, hl.WaitURL(ctx, "https://gh.test/plans/1"))
	short, stop := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer stop()
	assert.Error(t, hl.WaitURL(short, "https://gh.test/plans/2"))

	assert.Same(t, hl, hl.WithHost("::bad", 5))
	assert.Same(t, hl, hl.WithHost("https://x.io", 0))
}
