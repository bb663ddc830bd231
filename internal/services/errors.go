package services

import (
	"errors"
	"fmt"

	"github.com/courtdata/ecourts-api/internal/models"
)

var (
	// ErrNoCaseData signals a result page carrying neither a case title nor
	// a petitioner; the search is classified as not-found, not success.
	ErrNoCaseData = errors.New("no case data found on page")

	// ErrCaptchaNotSolved signals that every captcha strategy came back empty
	ErrCaptchaNotSolved = errors.New("captcha could not be solved")

	// ErrCaptchaTimeout signals the provider poll window elapsed
	ErrCaptchaTimeout = errors.New("timeout waiting for captcha solution")
)

// NavigationFailure is a terminal failure of the portal state machine,
// carrying the cause kind the orchestrator maps into the outcome.
type NavigationFailure struct {
	Cause models.CauseKind
	State NavState
	Err   error
}

func (f *NavigationFailure) Error() string {
	return fmt.Sprintf("navigation failed at %s: %v", f.State, f.Err)
}

func (f *NavigationFailure) Unwrap() error {
	return f.Err
}

func navFailure(cause models.CauseKind, state NavState, err error) *NavigationFailure {
	return &NavigationFailure{Cause: cause, State: state, Err: err}
}
