package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"jobposts-engine/internal/config"
	"jobposts-engine/internal/domain"
	"jobposts-engine/internal/events"
	"jobposts-engine/internal/job"
	"jobposts-engine/internal/report"
	"jobposts-engine/internal/store"
)

func (a *app) job(jobID int) *job.Job {
	return job.New(jobID, a.client, a.cfg,
		job.WithReporter(a.reporter),
		job.WithPublisher(a.hub),
		job.WithRecorder(a.journal),
		job.WithRunID(a.journal.RunID()),
	)
}

// withProgress runs fn while a second goroutine prints its progress events.
func (a *app) withProgress(ctx context.Context, fn func(ctx context.Context) error) error {
	ch := a.hub.Subscribe(256)

	var g errgroup.Group
	g.Go(func() error {
		printProgress(os.Stdout, ch)
		return nil
	})
	g.Go(func() error {
		defer a.hub.Close()
		return fn(ctx)
	})
	return g.Wait()
}

func printProgress(w io.Writer, ch <-chan events.Event) {
	for e := range ch {
		p, ok := events.DecodeProgress(e)
		if !ok {
			continue
		}
		if e.Type == events.TypeSummary {
			fmt.Fprintf(w, "done: %s\n", p.Message())
			continue
		}
		fmt.Fprintln(w, p.Message())
	}
}

// confirmUnknown asks on in before posts outside known regions are deleted.
func confirmUnknown(in io.Reader, out io.Writer, yes bool) job.ConfirmFunc {
	return func(ctx context.Context, posts []domain.PostInfo) (bool, error) {
		fmt.Fprintf(out, "%d posts are outside every known region:\n", len(posts))
		for _, p := range posts {
			fmt.Fprintf(out, "  %d  %s  %q  (%s)\n", p.ID, p.Name, p.Location, p.Board.Name)
		}
		if yes {
			return true, nil
		}
		fmt.Fprint(out, "delete them too? [y/N/q] ")

		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "q", "quit":
			return false, report.ErrUserAbort
		default:
			return false, ctx.Err()
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func sortedRegions(cfg config.Config) []string {
	out := make([]string, 0, len(cfg.Regions))
	for name := range cfg.Regions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func printBoards(boards []domain.JobBoard) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPUBLISH\tUNPUBLISH")
	for _, b := range boards {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", b.ID, b.Name, b.PublishStatusID, b.UnpublishStatusID)
	}
	_ = tw.Flush()
}

func printJobs(jobs []domain.JobRecord) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tREQUISITION\tNAME")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", j.ID, j.RequisitionID, j.Name)
	}
	_ = tw.Flush()
}

func printRuns(runs []store.Run) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCOMMAND\tJOB\tSTARTED\tOUTCOME\tERROR")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID, r.Command, r.JobID, r.StartedAt.Local().Format(time.DateTime), r.Outcome, r.Error)
	}
	_ = tw.Flush()
}

func printActions(actions []store.Action, errs []store.ErrorRecord) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AT\tKIND\tPOST\tBOARD\tLOCATION\tOUTCOME")
	for _, a := range actions {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			a.At.Local().Format(time.DateTime), a.Kind, a.PostID, a.BoardID, a.Location, a.Outcome)
	}
	_ = tw.Flush()
	for _, e := range errs {
		fmt.Printf("error %s: %s\n", e.At.Local().Format(time.DateTime), e.Message)
	}
}
