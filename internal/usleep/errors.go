package usleep

import (
	"errors"
	"fmt"
	"strings"
)

// Category sentinels for everything the API surface can fail with. Callers
// classify failures with errors.Is rather than inspecting messages.
var (
	// ErrTransport covers network-level failures and 5xx responses. It is
	// the only category the poller retries.
	ErrTransport = errors.New("transport failure")

	// ErrAuth covers rejected or expired tokens. Never retried.
	ErrAuth = errors.New("authentication rejected")

	// ErrConfiguration covers bad model names, bad channel groups, and
	// other request payloads the server refuses.
	ErrConfiguration = errors.New("configuration rejected")

	// ErrJobAlreadyRunning is returned when predict is issued while a
	// prediction is still in flight for the session.
	ErrJobAlreadyRunning = errors.New("prediction already running")

	// ErrResultNotReady is returned when a result artifact is requested
	// before the prediction has reached SUCCESS.
	ErrResultNotReady = errors.New("result not ready")

	// ErrPollTimeout is returned by the poller when its wall-clock budget
	// is exhausted. The job may still be running server-side.
	ErrPollTimeout = errors.New("timed out waiting for completion")

	// ErrSessionLimit is returned when the server reports the account's
	// concurrent session cap has been reached.
	ErrSessionLimit = errors.New("session limit reached")

	// ErrUpload covers failed file uploads, including files the server
	// rejects as too large and local anonymization failures.
	ErrUpload = errors.New("upload failed")

	// ErrDownload covers failed resource downloads, including local I/O
	// failures at the destination path.
	ErrDownload = errors.New("download failed")

	// ErrNotFound covers requests against sessions or resources the
	// server does not know.
	ErrNotFound = errors.New("not found")

	// ErrUnknownStatus is returned when the server reports a prediction
	// status label this client does not recognize.
	ErrUnknownStatus = errors.New("unrecognized prediction status")

	// ErrPredictionFailed is returned by QuickPredict when the job
	// reached the FAILED terminal state.
	ErrPredictionFailed = errors.New("prediction failed")
)

// APIError describes a failed call against the scoring service. It unwraps to
// one of the category sentinels above and, for network failures, to the
// underlying error.
type APIError struct {
	Op         string // e.g. "POST /api/v1/predict"
	StatusCode int    // zero when the request never completed
	Body       string // response body snippet, empty for network failures
	Kind       error  // category sentinel
	Err        error  // underlying cause, nil for HTTP rejections
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if body := snippet(e.Body); body != "" {
		return fmt.Sprintf("%s: server returned status %d: %s", e.Op, e.StatusCode, body)
	}
	return fmt.Sprintf("%s: server returned status %d", e.Op, e.StatusCode)
}

func (e *APIError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

const maxSnippet = 140

func snippet(body string) string {
	s := strings.TrimSpace(body)
	if len(s) > maxSnippet {
		return s[:maxSnippet] + "..."
	}
	return s
}

// classify maps a non-2xx response to an error category. Statuses with a
// universal meaning map directly; anything else falls back to the category
// the calling endpoint considers its failure mode.
func classify(op string, code int, body string, fallback error) error {
	kind := fallback
	lower := strings.ToLower(body)
	switch {
	case code == 401:
		kind = ErrAuth
	case code == 403 && strings.Contains(lower, "session"):
		kind = ErrSessionLimit
	case code == 403:
		kind = ErrAuth
	case code == 404:
		kind = ErrNotFound
	case code == 409:
		kind = ErrJobAlreadyRunning
	case code == 413:
		kind = ErrUpload
	case code >= 500:
		kind = ErrTransport
	}
	return &APIError{Op: op, StatusCode: code, Body: body, Kind: kind}
}
