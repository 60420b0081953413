package auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"jobposts-engine/internal/browser"
	"jobposts-engine/internal/config"
	"jobposts-engine/internal/report"
	"jobposts-engine/internal/secrets"
)

// SSOCookie reuses a session cookie copied from a browser that went through
// the identity provider. The cookie lives in the keychain.
type SSOCookie struct {
	page browser.Page
	cfg  config.Config
}

func (s *SSOCookie) Login(ctx context.Context) error {
	v, err := secrets.Get(secrets.SSOCookieAccount(s.cfg.Greenhouse.BaseURL))
	if errors.Is(err, secrets.ErrNotFound) {
		return report.User(fmt.Errorf("no SSO cookie stored: run login with a cookie first: %w", err))
	}
	if err != nil {
		return err
	}
	if err := restore(ctx, s.page, s.cfg, v); err != nil {
		if errors.Is(err, ErrNotLoggedIn) {
			return report.User(fmt.Errorf("stored SSO cookie was rejected: %w", err))
		}
		return err
	}
	log.Printf("[auth] sso session restored")
	return nil
}

func (s *SSOCookie) Authenticate(ctx context.Context) error {
	return s.Login(ctx)
}

func (s *SSOCookie) Logout(context.Context) error {
	if err := secrets.Delete(secrets.SSOCookieAccount(s.cfg.Greenhouse.BaseURL)); err != nil {
		return err
	}
	log.Printf("[auth] sso cookie removed")
	return nil
}

// StoreSSOCookie saves the SSO session cookie value.
func StoreSSOCookie(cfg config.Config, value string) error {
	return secrets.Set(secrets.SSOCookieAccount(cfg.Greenhouse.BaseURL), value)
}
