// Package job coordinates the bulk workflows on one Greenhouse job: cloning
// posts into regions, taking new posts live and resetting a job back to its
// templates. Every step runs sequentially on the single browser session.
package job

import (
	"context"
	"log"
	"regexp"

	"jobposts-engine/internal/config"
	"jobposts-engine/internal/domain"
	"jobposts-engine/internal/events"
	"jobposts-engine/internal/regions"
	"jobposts-engine/internal/report"
	"jobposts-engine/internal/store"
)

// Remote is the Greenhouse surface the orchestrator drives.
type Remote interface {
	FetchJob(ctx context.Context, jobID int) (domain.JobInfo, error)
	Board(ctx context.Context, name string) (domain.JobBoard, error)
	GetBoards(ctx context.Context) ([]domain.JobBoard, error)
	Duplicate(ctx context.Context, post domain.PostInfo, location string, board domain.JobBoard) error
	SetStatus(ctx context.Context, post domain.PostInfo, status domain.PostStatus, board domain.JobBoard) error
	DeletePost(ctx context.Context, post domain.PostInfo, job domain.JobInfo) error
	Reload(ctx context.Context) error
}

type Publisher interface {
	Publish(evt events.Event)
}

type Recorder interface {
	RecordAction(ctx context.Context, a store.Action) error
}

type Job struct {
	id       int
	remote   Remote
	cfg      config.Config
	regions  regions.Table
	reporter report.Reporter
	events   Publisher
	recorder Recorder
	runID    string

	// post ids seen before the last Replicate, used by MarkAsLive
	known map[int]bool
}

type Option func(*Job)

func WithReporter(r report.Reporter) Option { return func(j *Job) { j.reporter = r } }

func WithPublisher(p Publisher) Option { return func(j *Job) { j.events = p } }

func WithRecorder(r Recorder) Option { return func(j *Job) { j.recorder = r } }

func WithRunID(id string) Option { return func(j *Job) { j.runID = id } }

func New(jobID int, remote Remote, cfg config.Config, opts ...Option) *Job {
	j := &Job{
		id:       jobID,
		remote:   remote,
		cfg:      cfg,
		regions:  regions.New(cfg.Regions),
		reporter: report.Nop{},
	}
	for _, o := range opts {
		o(j)
	}
	return j
}

func (j *Job) ID() int { return j.id }

func (j *Job) progress(op, verb string, done, total int) {
	p := events.Progress{Op: op, Done: done, Total: total, Verb: verb}
	log.Printf("[job:%s] job=%d %s", op, j.id, p.Message())
	if j.events != nil {
		j.events.Publish(events.MakeEvent(j.runID, events.TypeProgress, 1, p))
	}
}

func (j *Job) summary(op, verb string, done, total int) {
	if j.events != nil {
		j.events.Publish(events.MakeEvent(j.runID, events.TypeSummary, 1,
			events.Progress{Op: op, Done: done, Total: total, Verb: verb}))
	}
}

func (j *Job) record(ctx context.Context, a store.Action) {
	if j.recorder == nil {
		return
	}
	a.JobID = j.id
	if err := j.recorder.RecordAction(ctx, a); err != nil {
		log.Printf("[job] journal write failed kind=%s post=%d err=%v", a.Kind, a.PostID, err)
	}
}

// fail reports err unless it is a user error and hands it back.
func (j *Job) fail(ctx context.Context, op string, err error) error {
	report.Unless(ctx, j.reporter, err, report.Fields{"op": op, "job_id": j.id, "run_id": j.runID})
	return err
}

func boardsByID(bs []domain.JobBoard) map[int]domain.JobBoard {
	m := make(map[int]domain.JobBoard, len(bs))
	for _, b := range bs {
		m[b.ID] = b
	}
	return m
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}
