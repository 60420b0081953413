package report

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
)

type Fields map[string]any

// Reporter receives failures that need diagnosis (selector breakage, remote
// errors). User errors are filtered out by callers through IsUserError.
type Reporter interface {
	Report(ctx context.Context, err error, fields Fields)
}

type Nop struct{}

func (Nop) Report(context.Context, error, Fields) {}

type Log struct{}

func (Log) Report(_ context.Context, err error, fields Fields) {
	log.Printf("level=error msg=%q %s", err.Error(), formatFields(fields))
}

// Sink persists reported errors; implemented by the SQLite journal.
type Sink interface {
	RecordError(ctx context.Context, message string, fields map[string]any) error
}

// Journal writes reports to a Sink and falls back to the log when the sink fails.
type Journal struct {
	Sink Sink
}

func (j Journal) Report(ctx context.Context, err error, fields Fields) {
	if j.Sink == nil {
		Log{}.Report(ctx, err, fields)
		return
	}
	if e := j.Sink.RecordError(ctx, err.Error(), fields); e != nil {
		log.Printf("[report] journal write failed err=%v", e)
		Log{}.Report(ctx, err, fields)
	}
}

// Unless reports err unless it is a user error or was reported where it
// happened.
func Unless(ctx context.Context, r Reporter, err error, fields Fields) {
	if r == nil || err == nil || IsUserError(err) || alreadyReported(err) {
		return
	}
	r.Report(ctx, err, fields)
}

func formatFields(f Fields) string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strings.ReplaceAll(toString(f[k]), " ", "_"))
	}
	return b.String()
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
