package job

import (
	"context"
	"errors"
	"fmt"
	"log"

	"jobposts-engine/internal/domain"
	"jobposts-engine/internal/report"
	"jobposts-engine/internal/store"
)

const createdVerb = "are created"

type ReplicateOptions struct {
	// SourcePostID limits cloning to one post of the source board; 0 means all.
	SourcePostID int
	Regions      []string
}

// Replicate clones the source-board posts into every city of the requested
// regions on the target board and returns the posts it cloned from. A
// geocoding failure skips only that (post, city) pair.
func (j *Job) Replicate(ctx context.Context, opts ReplicateOptions) ([]domain.PostInfo, error) {
	const op = "replicate"

	if len(opts.Regions) == 0 {
		return nil, report.Userf("no regions given")
	}
	cities, err := j.regions.CitiesFor(opts.Regions)
	if err != nil {
		return nil, err
	}

	info, err := j.remote.FetchJob(ctx, j.id)
	if err != nil {
		return nil, j.fail(ctx, op, err)
	}
	j.known = info.PostIDs()

	sources := j.sourcePosts(info, opts.SourcePostID)
	if len(sources) == 0 {
		if opts.SourcePostID != 0 {
			return nil, report.Userf("post %d is not on board %q of job %d", opts.SourcePostID, j.cfg.Greenhouse.SourceBoard, j.id)
		}
		return nil, report.Userf("job %d has no posts on board %q", j.id, j.cfg.Greenhouse.SourceBoard)
	}

	target, err := j.remote.Board(ctx, j.cfg.Greenhouse.TargetBoard)
	if err != nil {
		return nil, j.fail(ctx, op, err)
	}

	total := len(sources) * len(cities)
	done := 0
	log.Printf("[job:%s] job=%d sources=%d cities=%d board=%q", op, j.id, len(sources), len(cities), target.Name)

	for _, post := range sources {
		for _, city := range cities {
			if err := ctx.Err(); err != nil {
				return sources, err
			}
			err := j.remote.Duplicate(ctx, post, city, target)
			if errors.Is(err, report.ErrGeocode) {
				log.Printf("[job:%s] skipped post=%d location=%q err=%v", op, post.ID, city, err)
				report.Unless(ctx, j.reporter, err, report.Fields{"op": op, "post_id": post.ID, "location": city})
				j.record(ctx, store.Action{Kind: store.ActionDuplicate, PostID: post.ID, BoardID: target.ID, Location: city, Outcome: store.OutcomeSkipped, Detail: err.Error()})
				continue
			}
			if err != nil {
				j.summary(op, createdVerb, done, total)
				return sources, j.fail(ctx, op, fmt.Errorf("post %d to %q: %w", post.ID, city, err))
			}
			done++
			j.record(ctx, store.Action{Kind: store.ActionDuplicate, PostID: post.ID, BoardID: target.ID, Location: city})
			j.progress(op, createdVerb, done, total)
		}
	}

	j.summary(op, createdVerb, done, total)
	return sources, nil
}

func (j *Job) sourcePosts(info domain.JobInfo, postID int) []domain.PostInfo {
	var out []domain.PostInfo
	for _, p := range info.Posts {
		if p.Board.Name != j.cfg.Greenhouse.SourceBoard {
			continue
		}
		if postID != 0 && p.ID != postID {
			continue
		}
		out = append(out, p)
	}
	return out
}
