package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"jobposts-engine/internal/auth"
	"jobposts-engine/internal/config"
	"jobposts-engine/internal/job"
	"jobposts-engine/internal/report"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if report.IsUserError(err) {
			fmt.Fprintln(os.Stderr, "error:", err)
		} else {
			log.Printf("[cli] failed: %v", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "init":
		return runInit()
	case "login":
		return runLogin(ctx, args)
	case "logout":
		return runLogout(ctx)
	case "boards":
		return runBoards(ctx)
	case "jobs":
		return runJobs(ctx)
	case "replicate":
		return runReplicate(ctx, args)
	case "live":
		return runLive(ctx, args)
	case "reset":
		return runReset(ctx, args)
	case "runs":
		return runRuns(ctx, args)
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return report.Userf("unknown command %q", cmd)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `usage: jobposts <command> [flags]

commands:
  init                         write the default config to the data dir
  login                        sign in and cache the session
  logout                       drop the cached session
  boards                       list job boards with their status ids
  jobs                         list jobs tagged with the recruiter marker
  replicate -job N -regions a,b [-post ID] [-live]
                               clone source-board posts into every region city
  live -job N                  take new posts live
  reset -job N [-regions a,b] [-similar ID] [-yes]
                               delete unprotected posts
  runs [-n 20] [-run ID]       show journaled runs or one run's actions

environment: JOBPOSTS_DATA_DIR, JOBPOSTS_ENV, MAPBOX_ACCESS_TOKEN,
GREENHOUSE_EMAIL, GREENHOUSE_PASSWORD, GREENHOUSE_SSO_COOKIE, REDIS_URL
`)
}

func runInit() error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	_, res := config.NormalizeAndValidate(cfg)
	fmt.Printf("config: %s\n", path)
	fmt.Printf("regions: %v\n", sortedRegions(cfg))
	if len(res.Warnings) > 0 {
		fmt.Println("warnings:")
		for _, w := range res.Warnings {
			fmt.Println("  -", w)
		}
	}
	return nil
}

func runLogin(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("login", flag.ContinueOnError)
	if err := flags.Parse(args); err != nil {
		return report.User(err)
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	switch cfg.Auth.Method {
	case "greenhouse":
		if pw := os.Getenv("GREENHOUSE_PASSWORD"); pw != "" {
			if err := auth.StorePassword(cfg, pw); err != nil {
				return err
			}
		}
	case "sso":
		if v := os.Getenv("GREENHOUSE_SSO_COOKIE"); v != "" {
			if err := auth.StoreSSOCookie(cfg, v); err != nil {
				return err
			}
		}
	}

	a, err := openApp(ctx, "login", 0, false)
	if err != nil {
		return err
	}
	err = a.auth.Login(ctx)
	a.close(err)
	if err != nil {
		return err
	}
	fmt.Println("logged in")
	return nil
}

func runLogout(ctx context.Context) error {
	a, err := openApp(ctx, "logout", 0, false)
	if err != nil {
		return err
	}
	err = a.auth.Logout(ctx)
	a.close(err)
	return err
}

func runBoards(ctx context.Context) error {
	a, err := openApp(ctx, "boards", 0, true)
	if err != nil {
		return err
	}
	boards, err := a.client.GetBoards(ctx)
	a.close(err)
	if err != nil {
		return err
	}
	printBoards(boards)
	return nil
}

func runJobs(ctx context.Context) error {
	a, err := openApp(ctx, "jobs", 0, true)
	if err != nil {
		return err
	}
	jobs, err := a.client.ListJobs(ctx)
	a.close(err)
	if err != nil {
		return err
	}
	printJobs(jobs)
	return nil
}

func runReplicate(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("replicate", flag.ContinueOnError)
	jobID := flags.Int("job", 0, "Greenhouse job id")
	regions := flags.String("regions", "", "comma-separated region names")
	postID := flags.Int("post", 0, "clone only this source post")
	live := flags.Bool("live", false, "take the new posts live afterwards")
	if err := flags.Parse(args); err != nil {
		return report.User(err)
	}
	if *jobID <= 0 {
		return report.Userf("-job is required")
	}

	a, err := openApp(ctx, "replicate", *jobID, true)
	if err != nil {
		return err
	}
	j := a.job(*jobID)
	err = a.withProgress(ctx, func(ctx context.Context) error {
		sources, err := j.Replicate(ctx, job.ReplicateOptions{SourcePostID: *postID, Regions: splitList(*regions)})
		if err != nil {
			return err
		}
		log.Printf("[cli] replicated from %d source posts", len(sources))
		if *live {
			_, err = j.MarkAsLive(ctx)
		}
		return err
	})
	a.close(err)
	return err
}

func runLive(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("live", flag.ContinueOnError)
	jobID := flags.Int("job", 0, "Greenhouse job id")
	if err := flags.Parse(args); err != nil {
		return report.User(err)
	}
	if *jobID <= 0 {
		return report.Userf("-job is required")
	}

	a, err := openApp(ctx, "live", *jobID, true)
	if err != nil {
		return err
	}
	err = a.withProgress(ctx, func(ctx context.Context) error {
		_, err := a.job(*jobID).MarkAsLive(ctx)
		return err
	})
	a.close(err)
	return err
}

func runReset(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("reset", flag.ContinueOnError)
	jobID := flags.Int("job", 0, "Greenhouse job id")
	regions := flags.String("regions", "", "comma-separated region names; empty means all")
	similar := flags.Int("similar", 0, "only delete posts named like this post")
	yes := flags.Bool("yes", false, "delete posts outside known regions without asking")
	if err := flags.Parse(args); err != nil {
		return report.User(err)
	}
	if *jobID <= 0 {
		return report.Userf("-job is required")
	}

	a, err := openApp(ctx, "reset", *jobID, true)
	if err != nil {
		return err
	}
	err = a.withProgress(ctx, func(ctx context.Context) error {
		_, err := a.job(*jobID).Reset(ctx, job.ResetOptions{
			Regions:         splitList(*regions),
			SimilarToPostID: *similar,
			Confirm:         confirmUnknown(os.Stdin, os.Stdout, *yes),
		})
		return err
	})
	a.close(err)
	return err
}

func runRuns(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("runs", flag.ContinueOnError)
	n := flags.Int("n", 20, "how many runs to show")
	runID := flags.String("run", "", "show the actions of this run")
	if err := flags.Parse(args); err != nil {
		return report.User(err)
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	db, journal, err := openJournal(cfg, "")
	if err != nil {
		return err
	}
	defer db.Close()

	if *runID != "" {
		actions, err := journal.Actions(ctx, *runID)
		if err != nil {
			return err
		}
		errs, err := journal.Errors(ctx, *runID)
		if err != nil {
			return err
		}
		printActions(actions, errs)
		return nil
	}
	runs, err := journal.Runs(ctx, *n)
	if err != nil {
		return err
	}
	printRuns(runs)
	return nil
}
