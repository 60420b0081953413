package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobposts-engine/internal/domain"
	"jobposts-engine/internal/events"
	"jobposts-engine/internal/report"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"americas", "emea"}, splitList(" americas, ,emea "))
	assert.Nil(t, splitList(""))
}

func TestConfirmUnknown(t *testing.T) {
	posts := []domain.PostInfo{{BaseInfo: domain.BaseInfo{ID: 4, Name: "Engineer"}, Location: "Atlantis"}}
	ctx := context.Background()

	var out bytes.Buffer
	ok, err := confirmUnknown(strings.NewReader("y\n"), &out, false)(ctx, posts)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), `"Atlantis"`)

	ok, err = confirmUnknown(strings.NewReader(""), &out, false)(ctx, posts)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = confirmUnknown(strings.NewReader("q\n"), &out, false)(ctx, posts)
	assert.ErrorIs(t, err, report.ErrUserAbort)

	ok, err = confirmUnknown(strings.NewReader(""), &out, true)(ctx, posts)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPrintProgress(t *testing.T) {
	ch := make(chan events.Event, 3)
	ch <- events.MakeEvent("r", events.TypeProgress, 1, events.Progress{Done: 1, Total: 2, Verb: "were deleted"})
	ch <- events.MakeEvent("r", events.TypeConfirm, 1, nil)
	ch <- events.MakeEvent("r", events.TypeSummary, 1, events.Progress{Done: 2, Total: 2, Verb: "were deleted"})
	close(ch)

	var out bytes.Buffer
	printProgress(&out, ch)
	assert.Equal(t, "1 of 2 job posts were deleted.\ndone: 2 of 2 job posts were deleted.\n", out.String())
}
