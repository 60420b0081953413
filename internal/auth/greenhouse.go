package auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"jobposts-engine/internal/browser"
	"jobposts-engine/internal/config"
	"jobposts-engine/internal/report"
	"jobposts-engine/internal/scrape/util"
	"jobposts-engine/internal/secrets"
)

const (
	emailSelector    = "#user_email"
	passwordSelector = "#user_password"
	submitSelector   = `input[type="submit"], button[type="submit"]`
)

// Greenhouse signs in with email and the keychain password, and caches the
// resulting session cookie in the keychain.
type Greenhouse struct {
	page browser.Page
	cfg  config.Config
}

func (g *Greenhouse) Login(ctx context.Context) error {
	email := g.cfg.Auth.Email
	if email == "" {
		return report.Userf("auth.email is not set")
	}
	password, err := secrets.Get(secrets.PasswordAccount(email, g.cfg.Greenhouse.BaseURL))
	if errors.Is(err, secrets.ErrNotFound) {
		return report.User(fmt.Errorf("no password stored for %s: run login with a password first: %w", email, err))
	}
	if err != nil {
		return err
	}

	if err := g.page.Navigate(ctx, util.JoinURL(g.cfg.Greenhouse.BaseURL, signInPath)); err != nil {
		return fmt.Errorf("open sign in: %w", err)
	}
	if err := g.page.Type(ctx, emailSelector, email); err != nil {
		return fmt.Errorf("type email: %w", err)
	}
	if err := g.page.Type(ctx, passwordSelector, password); err != nil {
		return fmt.Errorf("type password: %w", err)
	}
	if err := g.page.Click(ctx, submitSelector); err != nil {
		return fmt.Errorf("submit sign in: %w", err)
	}

	if err := verify(ctx, g.page, g.cfg); err != nil {
		if errors.Is(err, ErrNotLoggedIn) {
			return report.User(fmt.Errorf("sign in as %s rejected: %w", email, err))
		}
		return err
	}
	c, err := sessionCookie(ctx, g.page, g.cfg.Auth.CookieName)
	if err != nil {
		return err
	}
	if err := secrets.Set(secrets.SessionAccount(g.cfg.Greenhouse.BaseURL), c.Value); err != nil {
		log.Printf("[auth] session cache failed err=%v", err)
	}
	log.Printf("[auth] logged in email=%s", email)
	return nil
}

func (g *Greenhouse) Authenticate(ctx context.Context) error {
	if v, err := secrets.Get(secrets.SessionAccount(g.cfg.Greenhouse.BaseURL)); err == nil {
		err := restore(ctx, g.page, g.cfg, v)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNotLoggedIn) {
			return err
		}
		log.Printf("[auth] cached session expired, logging in again")
	}
	return g.Login(ctx)
}

// Logout drops the cached session. The stored password stays.
func (g *Greenhouse) Logout(ctx context.Context) error {
	if err := secrets.Delete(secrets.SessionAccount(g.cfg.Greenhouse.BaseURL)); err != nil {
		return err
	}
	if err := g.page.Navigate(ctx, util.JoinURL(g.cfg.Greenhouse.BaseURL, "users", "sign_out")); err != nil {
		log.Printf("[auth] sign out page failed err=%v", err)
	}
	log.Printf("[auth] logged out")
	return nil
}

// StorePassword saves the Greenhouse password for the configured email.
func StorePassword(cfg config.Config, password string) error {
	if cfg.Auth.Email == "" {
		return report.Userf("auth.email is not set")
	}
	return secrets.Set(secrets.PasswordAccount(cfg.Auth.Email, cfg.Greenhouse.BaseURL), password)
}
