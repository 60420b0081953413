package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

var ErrSessionBusy = errors.New("another command is using the browser session")

// AcquireSession takes an exclusive lock on <dataDir>/session.lock so only one
// command drives the Greenhouse session at a time.
func AcquireSession(dataDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	fl := flock.New(filepath.Join(dataDir, "session.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("session lock: %w", err)
	}
	if !ok {
		return nil, ErrSessionBusy
	}
	return fl, nil
}
