package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressMessage(t *testing.T) {
	assert.Equal(t, "0 of 0 job posts were deleted.", Progress{Verb: "were deleted"}.Message())
	assert.Equal(t, "2 of 5 job posts are created.", Progress{Done: 2, Total: 5, Verb: "are created"}.Message())
}

func TestHubDeliversAndCloses(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe(4)

	h.Publish(MakeEvent("run-1", TypeProgress, 1, Progress{Op: "reset", Done: 1, Total: 2, Verb: "were deleted"}))
	h.Close()
	h.Publish(MakeEvent("run-1", TypeSummary, 1, nil))

	var got []Event
	for e := range ch {
		got = append(got, e)
	}
	require.Len(t, got, 1)
	assert.Equal(t, "run-1", got[0].RunID)
	p, ok := DecodeProgress(got[0])
	require.True(t, ok)
	assert.Equal(t, 2, p.Total)

	closed := h.Subscribe(1)
	_, open := <-closed
	assert.False(t, open)
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe(1)
	h.Publish(MakeEvent("", TypeProgress, 1, nil))
	h.Publish(MakeEvent("", TypeProgress, 1, nil))
	assert.Len(t, ch, 1)
	h.Unsubscribe(ch)
	h.Unsubscribe(ch)
}

func TestDecodeProgressIgnoresOtherTypes(t *testing.T) {
	_, ok := DecodeProgress(MakeEvent("", TypeConfirm, 1, map[string]int{"n": 1}))
	assert.False(t, ok)
}
