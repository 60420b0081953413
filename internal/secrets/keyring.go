package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"jobposts-engine/internal/scrape/util"
)

const (
	// KeyringService groups the tool's secrets in the OS keychain.
	KeyringService = "jobposts"
)

var ErrNotFound = errors.New("secret not found in keychain")

func Get(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", errors.New("keyring account name is empty")
	}
	v, err := keyring.Get(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) || (err == nil && strings.TrimSpace(v) == "") {
		return "", fmt.Errorf("%w: %s", ErrNotFound, account)
	}
	if err != nil {
		return "", fmt.Errorf("keyring get %s: %w", account, err)
	}
	return v, nil
}

func Set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

// Delete treats a missing entry as already deleted.
func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	err := keyring.Delete(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func PasswordAccount(email, baseURL string) string {
	return fmt.Sprintf("jobposts:password:%s@%s", strings.ToLower(email), util.Host(baseURL))
}

func SSOCookieAccount(baseURL string) string {
	return "jobposts:sso-cookie:" + util.Host(baseURL)
}

func SessionAccount(baseURL string) string {
	return "jobposts:session:" + util.Host(baseURL)
}
