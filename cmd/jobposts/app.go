package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"jobposts-engine/internal/auth"
	"jobposts-engine/internal/browser"
	"jobposts-engine/internal/cache"
	"jobposts-engine/internal/config"
	"jobposts-engine/internal/events"
	"jobposts-engine/internal/report"
	"jobposts-engine/internal/scrape/greenhouse"
	"jobposts-engine/internal/scrape/util"
	"jobposts-engine/internal/store"
)

// app is everything one command owns for its lifetime.
type app struct {
	cfg      config.Config
	dataDir  string
	lock     *flock.Flock
	db       *store.DB
	journal  *store.Journal
	reporter report.Reporter
	hub      *events.Hub
	geo      *cache.GeoCache
	chrome   *browser.Chrome
	client   *greenhouse.Client
	auth     auth.Authenticator
}

func dataDir() (string, error) {
	if d := os.Getenv("JOBPOSTS_DATA_DIR"); d != "" {
		return d, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "jobposts"), nil
}

// loadConfig bootstraps the user config and applies environment overrides.
// Only the CLI reads the environment.
func loadConfig() (config.Config, string, error) {
	dir, err := dataDir()
	if err != nil {
		return config.Config{}, "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return config.Config{}, "", err
	}
	path, err := config.EnsureUserConfig(dir)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("config bootstrap failed: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if v := os.Getenv("JOBPOSTS_ENV"); v != "" {
		cfg.App.Env = v
	}
	if v := os.Getenv("MAPBOX_ACCESS_TOKEN"); v != "" {
		cfg.Geocoding.AccessToken = v
	}
	if v := os.Getenv("GREENHOUSE_EMAIL"); v != "" {
		cfg.Auth.Email = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.RedisURL = v
	}
	if cfg.App.DataDir == "" {
		cfg.App.DataDir = dir
	}

	cfg, res := config.NormalizeAndValidate(cfg)
	for _, w := range res.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !res.OK() {
		return config.Config{}, "", errors.New("config validation failed:\n- " + strings.Join(res.Errors, "\n- "))
	}
	return cfg, path, nil
}

// openJournal opens the journal without touching the browser.
func openJournal(cfg config.Config, runID string) (*store.DB, *store.Journal, error) {
	db, err := store.Open(filepath.Join(cfg.App.DataDir, "jobposts.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}
	return db, store.NewJournal(db, runID), nil
}

// openApp locks the session, starts the journal run and the browser, and
// authenticates when login is true.
func openApp(ctx context.Context, command string, jobID int, login bool) (*app, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, dataDir: cfg.App.DataDir, hub: events.NewHub()}

	a.lock, err = browser.AcquireSession(a.dataDir)
	if err != nil {
		if errors.Is(err, browser.ErrSessionBusy) {
			return nil, report.User(err)
		}
		return nil, err
	}

	runID := uuid.NewString()
	a.db, a.journal, err = openJournal(cfg, runID)
	if err != nil {
		a.close(err)
		return nil, err
	}
	if err := a.journal.StartRun(ctx, command, jobID); err != nil {
		log.Printf("[cli] journal start failed err=%v", err)
	}

	if cfg.Development() {
		a.reporter = report.Log{}
	} else {
		a.reporter = report.Journal{Sink: a.journal}
	}

	opts := []greenhouse.Option{
		greenhouse.WithLimiter(util.NewHostLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst).
			WithHost(cfg.Geocoding.BaseURL, cfg.RateLimit.GeocodePerSecond)),
		greenhouse.WithReporter(a.reporter),
	}
	if cfg.Cache.RedisURL != "" {
		a.geo, err = cache.New(cfg.Cache.RedisURL, cfg.CacheTTL())
		if err != nil {
			log.Printf("[cli] geocode cache disabled err=%v", err)
		} else {
			opts = append(opts, greenhouse.WithGeoCache(a.geo))
		}
	}

	a.chrome, err = browser.NewChrome(ctx, browser.Options{
		Headless:  cfg.Browser.Headless,
		ExecPath:  cfg.Browser.ExecPath,
		UserAgent: cfg.Browser.UserAgent,
		Timeout:   cfg.BrowserTimeout(),
	})
	if err != nil {
		a.close(err)
		return nil, err
	}
	a.client = greenhouse.New(a.chrome, cfg, opts...)

	a.auth, err = auth.New(a.chrome, cfg)
	if err != nil {
		a.close(err)
		return nil, err
	}
	if login {
		if err := a.auth.Authenticate(ctx); err != nil {
			a.close(err)
			return nil, err
		}
	}

	log.Printf("[cli] run=%s command=%s job=%d", runID, command, jobID)
	return a, nil
}

// close releases everything in reverse order and stamps the run outcome.
func (a *app) close(runErr error) {
	if a.journal != nil {
		if err := a.journal.FinishRun(context.Background(), runErr); err != nil {
			log.Printf("[cli] journal finish failed err=%v", err)
		}
	}
	if a.chrome != nil {
		_ = a.chrome.Close()
	}
	if a.geo != nil {
		_ = a.geo.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.lock != nil {
		_ = a.lock.Unlock()
	}
	a.hub.Close()
}
