// Package auth establishes a Greenhouse session in the browser tab before a
// command runs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobposts-engine/internal/browser"
	"jobposts-engine/internal/config"
	"jobposts-engine/internal/report"
	"jobposts-engine/internal/scrape/util"
)

var ErrNotLoggedIn = errors.New("not logged in")

// Authenticator owns the session of one browser tab.
type Authenticator interface {
	// Login performs an interactive or credential-based sign in.
	Login(ctx context.Context) error
	// Authenticate restores a cached session, logging in when there is none.
	Authenticate(ctx context.Context) error
	Logout(ctx context.Context) error
}

// New picks the variant configured in auth.method.
func New(page browser.Page, cfg config.Config) (Authenticator, error) {
	switch cfg.Auth.Method {
	case "greenhouse":
		return &Greenhouse{page: page, cfg: cfg}, nil
	case "sso":
		return &SSOCookie{page: page, cfg: cfg}, nil
	default:
		return nil, report.Userf("unknown auth method %q", cfg.Auth.Method)
	}
}

const signInPath = "users/sign_in"

func dashboardURL(cfg config.Config) string {
	return util.JoinURL(cfg.Greenhouse.BaseURL, "dashboard")
}

// verify loads the dashboard and fails when Greenhouse bounces to sign in.
func verify(ctx context.Context, page browser.Page, cfg config.Config) error {
	if err := page.Navigate(ctx, dashboardURL(cfg)); err != nil {
		return fmt.Errorf("open dashboard: %w", err)
	}
	u, err := page.URL(ctx)
	if err != nil {
		return err
	}
	if strings.Contains(u, signInPath) || util.Host(u) != util.Host(cfg.Greenhouse.BaseURL) {
		return ErrNotLoggedIn
	}
	return nil
}

func sessionCookie(ctx context.Context, page browser.Page, name string) (browser.Cookie, error) {
	cs, err := page.Cookies(ctx)
	if err != nil {
		return browser.Cookie{}, fmt.Errorf("read cookies: %w", err)
	}
	c, ok := browser.FindCookie(cs, name)
	if !ok || c.Value == "" {
		return browser.Cookie{}, ErrNotLoggedIn
	}
	return c, nil
}

// restore installs a cookie value for the Greenhouse host and verifies it.
func restore(ctx context.Context, page browser.Page, cfg config.Config, value string) error {
	if err := page.SetCookie(ctx, browser.Cookie{
		Name:     cfg.Auth.CookieName,
		Value:    value,
		Domain:   util.Host(cfg.Greenhouse.BaseURL),
		Path:     "/",
		Secure:   true,
		HTTPOnly: true,
		Expires:  time.Now().Add(24 * time.Hour),
	}); err != nil {
		return fmt.Errorf("set session cookie: %w", err)
	}
	return verify(ctx, page, cfg)
}
