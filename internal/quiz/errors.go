package quiz

import "errors"

var (
	ErrEmptySubmission         = errors.New("no answers provided")
	ErrSubmissionFailed        = errors.New("failed to submit quiz")
	ErrStoreUnavailable        = errors.New("store unavailable")
	ErrOptionEnforcementFailed = errors.New("failed to save option")
	ErrNotFound                = errors.New("not found")
	ErrInvalidInput            = errors.New("invalid input")
)
