package job

import (
	"context"
	"fmt"
	"log"
	"regexp"

	"jobposts-engine/internal/domain"
	"jobposts-engine/internal/events"
	"jobposts-engine/internal/report"
	"jobposts-engine/internal/store"
)

const deletedVerb = "were deleted"

// ConfirmFunc is asked before posts in no known region are deleted.
type ConfirmFunc func(ctx context.Context, posts []domain.PostInfo) (bool, error)

type ResetOptions struct {
	// Regions limits deletion to posts in these regions; empty means any
	// known region.
	Regions []string
	// SimilarToPostID limits deletion to posts named like this post; 0 disables.
	SimilarToPostID int
	Confirm         ConfirmFunc
}

// selection is the outcome of classifying one job's posts.
type selection struct {
	delete  []domain.PostInfo
	unknown []domain.PostInfo
}

// Reset deletes the unprotected posts of the job that match opts and returns
// how many were deleted. Live posts are taken offline first.
func (j *Job) Reset(ctx context.Context, opts ResetOptions) (int, error) {
	const op = "reset"

	if len(opts.Regions) > 0 {
		if _, err := j.regions.CitiesFor(opts.Regions); err != nil {
			return 0, err
		}
	}
	protected, err := compileAll(j.cfg.Greenhouse.ProtectedBoards)
	if err != nil {
		return 0, fmt.Errorf("protected boards: %w", err)
	}

	info, err := j.remote.FetchJob(ctx, j.id)
	if err != nil {
		return 0, j.fail(ctx, op, err)
	}

	sel, err := j.classify(info, protected, opts)
	if err != nil {
		return 0, err
	}

	total := len(sel.delete)
	done := 0
	var boards map[int]domain.JobBoard

	del := func(posts []domain.PostInfo) error {
		for _, p := range posts {
			if err := ctx.Err(); err != nil {
				return err
			}
			if p.IsLive && boards == nil {
				bs, err := j.remote.GetBoards(ctx)
				if err != nil {
					return err
				}
				boards = boardsByID(bs)
			}
			if err := j.deletePost(ctx, info, p, boards); err != nil {
				return err
			}
			done++
			j.progress(op, deletedVerb, done, total)
		}
		return nil
	}

	if err := del(sel.delete); err != nil {
		j.summary(op, deletedVerb, done, total)
		return done, j.fail(ctx, op, err)
	}

	if len(sel.unknown) > 0 && opts.Confirm != nil {
		if j.events != nil {
			j.events.Publish(events.MakeEvent(j.runID, events.TypeConfirm, 1, sel.unknown))
		}
		ok, err := opts.Confirm(ctx, sel.unknown)
		if err != nil {
			j.summary(op, deletedVerb, done, total)
			return done, j.fail(ctx, op, err)
		}
		if ok {
			total += len(sel.unknown)
			if err := del(sel.unknown); err != nil {
				j.summary(op, deletedVerb, done, total)
				return done, j.fail(ctx, op, err)
			}
		} else {
			log.Printf("[job:%s] job=%d kept %d posts outside known regions", op, j.id, len(sel.unknown))
		}
	}

	p := events.Progress{Op: op, Done: done, Total: total, Verb: deletedVerb}
	log.Printf("[job:%s] job=%d done: %s", op, j.id, p.Message())
	j.summary(op, deletedVerb, done, total)
	return done, nil
}

func (j *Job) classify(info domain.JobInfo, protected []*regexp.Regexp, opts ResetOptions) (selection, error) {
	var (
		sel     selection
		similar string
	)
	if opts.SimilarToPostID != 0 {
		ref, ok := findPost(info, opts.SimilarToPostID)
		if !ok {
			return sel, report.Userf("post %d not found in job %d", opts.SimilarToPostID, j.id)
		}
		similar = ref.Name
	}

	for _, p := range info.Posts {
		if isProtected(p, protected) {
			continue
		}
		if similar != "" && p.Name != similar {
			continue
		}
		if !j.regions.IsKnownLocation(p.Location) {
			sel.unknown = append(sel.unknown, p)
			continue
		}
		if len(opts.Regions) > 0 {
			ok, err := j.regions.MatchesAny(p.Location, opts.Regions)
			if err != nil {
				return sel, err
			}
			if !ok {
				continue
			}
		}
		sel.delete = append(sel.delete, p)
	}
	return sel, nil
}

// deletePost takes p offline when it was live at fetch time, deletes it and
// reloads the view so later scans do not see the removed row.
func (j *Job) deletePost(ctx context.Context, info domain.JobInfo, p domain.PostInfo, boards map[int]domain.JobBoard) error {
	if p.IsLive {
		board, ok := boards[p.Board.ID]
		if !ok {
			return fmt.Errorf("post %d: board %d (%s) not found", p.ID, p.Board.ID, p.Board.Name)
		}
		if err := j.remote.SetStatus(ctx, p, domain.StatusOffline, board); err != nil {
			return err
		}
		j.record(ctx, store.Action{Kind: store.ActionOffline, PostID: p.ID, BoardID: board.ID, Location: p.Location})
	}
	if err := j.remote.DeletePost(ctx, p, info); err != nil {
		return err
	}
	j.record(ctx, store.Action{Kind: store.ActionDelete, PostID: p.ID, BoardID: p.Board.ID, Location: p.Location})
	return j.remote.Reload(ctx)
}

func isProtected(p domain.PostInfo, protected []*regexp.Regexp) bool {
	for _, re := range protected {
		if re.MatchString(p.Board.Name) {
			return true
		}
	}
	return false
}

func findPost(info domain.JobInfo, id int) (domain.PostInfo, bool) {
	for _, p := range info.Posts {
		if p.ID == id {
			return p, true
		}
	}
	return domain.PostInfo{}, false
}
