package job

import (
	"context"
	"fmt"
	"log"

	"jobposts-engine/internal/domain"
	"jobposts-engine/internal/store"
)

const liveVerb = "are live"

// MarkAsLive publishes the posts created since the last Replicate. Only when
// no post id is new does it fall back to every post that is not live yet.
func (j *Job) MarkAsLive(ctx context.Context) (int, error) {
	const op = "live"

	info, err := j.remote.FetchJob(ctx, j.id)
	if err != nil {
		return 0, j.fail(ctx, op, err)
	}

	var fresh []domain.PostInfo
	if j.known != nil {
		for _, p := range info.Posts {
			if !j.known[p.ID] {
				fresh = append(fresh, p)
			}
		}
	}
	if len(fresh) == 0 {
		log.Printf("[job:%s] job=%d no new posts identified, using all offline posts", op, j.id)
		fresh = info.Posts
	}

	var pending []domain.PostInfo
	for _, p := range fresh {
		if !p.IsLive {
			pending = append(pending, p)
		}
	}

	total := len(pending)
	if total == 0 {
		j.summary(op, liveVerb, 0, 0)
		return 0, nil
	}

	bs, err := j.remote.GetBoards(ctx)
	if err != nil {
		return 0, j.fail(ctx, op, err)
	}
	boards := boardsByID(bs)

	done := 0
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		board, ok := boards[p.Board.ID]
		if !ok {
			j.summary(op, liveVerb, done, total)
			return done, j.fail(ctx, op, fmt.Errorf("post %d: board %d (%s) not found", p.ID, p.Board.ID, p.Board.Name))
		}
		if err := j.remote.SetStatus(ctx, p, domain.StatusLive, board); err != nil {
			j.summary(op, liveVerb, done, total)
			return done, j.fail(ctx, op, err)
		}
		done++
		j.record(ctx, store.Action{Kind: store.ActionLive, PostID: p.ID, BoardID: board.ID, Location: p.Location})
		j.progress(op, liveVerb, done, total)
	}

	j.summary(op, liveVerb, done, total)
	return done, nil
}
