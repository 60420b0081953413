package report

import (
	"errors"
	"fmt"
)

// ErrUserAbort is returned when an interactive confirmation is interrupted.
var ErrUserAbort = errors.New("aborted by user")

// ErrGeocode marks a failed location lookup. It aborts only the post/location
// pair being duplicated.
var ErrGeocode = errors.New("geocoding failed")

// UserError is an expected failure the user can fix (bad region, missing
// post or board). It is shown as-is and never sent to the reporter.
type UserError struct {
	Msg string
	Err error
}

func (e *UserError) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *UserError) Unwrap() error { return e.Err }

func Userf(format string, args ...any) error {
	return &UserError{Msg: fmt.Sprintf(format, args...)}
}

// User marks err as a user error, keeping it in the chain.
func User(err error) error {
	if err == nil {
		return nil
	}
	return &UserError{Err: err}
}

func IsUserError(err error) bool {
	if errors.Is(err, ErrUserAbort) {
		return true
	}
	var ue *UserError
	return errors.As(err, &ue)
}

// ScrapeError means the vendor page or JSON did not have the expected shape.
type ScrapeError struct {
	Selector string
	Context  string
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape %s: missing %q", e.Context, e.Selector)
}

// RemoteError is the HTTP detail of a failed in-page request.
type RemoteError struct {
	IsError    bool   `json:"isError"`
	Status     int    `json:"status"`
	URL        string `json:"url"`
	StatusText string `json:"statusText"`
	Body       string `json:"-"`
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("http %d %s url=%s", e.Status, e.StatusText, e.URL)
}

// OperationError is the uniform user-facing form of a remote failure. The
// underlying detail goes to the reporter separately; Reported is set once it
// has.
type OperationError struct {
	Context  string
	Err      error
	Reported bool
}

func alreadyReported(err error) bool {
	var op *OperationError
	return errors.As(err, &op) && op.Reported
}

func (e *OperationError) Error() string { return "operation failed: " + e.Context }

func (e *OperationError) Unwrap() error { return e.Err }
