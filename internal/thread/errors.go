package thread

import (
	"errors"
	"strings"
)

// Error kinds a fragment load can end with. Match with errors.Is.
var (
	ErrNetwork  = errors.New("network error")
	ErrBlocked  = errors.New("blocked by challenge page")
	ErrNotFound = errors.New("comment not found in response")
)

const (
	blockedMessage  = "Bot protection triggered - please refresh the page and complete the verification"
	notFoundMessage = "Comment not found in response"
)

// DefaultChallengeSignatures identify interstitial challenge pages.
var DefaultChallengeSignatures = []string{
	"<title>Just a moment...</title>",
	"needs to review the security of your connection",
}

// LoadError is the failure of one fragment load. Its message is the text
// shown in place of the placeholder label.
type LoadError struct {
	Kind error
	URL  string
	Err  error
}

func (e *LoadError) Error() string {
	switch e.Kind {
	case ErrBlocked:
		return blockedMessage
	case ErrNotFound:
		return notFoundMessage
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Error()
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindName is the short name used in logs and the fetch history.
func KindName(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrBlocked):
		return "blocked"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "network"
	}
}

// IsChallengePage reports whether markup contains any of the signatures.
func IsChallengePage(markup string, signatures []string) bool {
	for _, sig := range signatures {
		if sig != "" && strings.Contains(markup, sig) {
			return true
		}
	}
	return false
}

func classify(url string, err error) *LoadError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}
	return &LoadError{Kind: ErrNetwork, URL: url, Err: err}
}
