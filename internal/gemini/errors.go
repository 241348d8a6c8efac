package gemini

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ErrorKind classifies backend failures so callers can choose wording
// and retry behavior without parsing provider messages.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindRateLimited
	KindInvalidCredential
	KindServerError
)

// BackendError wraps a provider failure with a stable classification.
type BackendError struct {
	Kind    ErrorKind
	Message string
}

func (e *BackendError) Error() string {
	switch e.Kind {
	case KindRateLimited:
		return "rate limit exceeded, wait a moment before retrying"
	case KindInvalidCredential:
		return "the configured API key is not valid"
	case KindServerError:
		return "the model service reported an internal error, try again shortly"
	default:
		if e.Message != "" {
			return e.Message
		}
		return "model request failed"
	}
}

// classifyError maps raw provider errors onto BackendError kinds.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Status == "RESOURCE_EXHAUSTED" {
			return &BackendError{Kind: KindRateLimited, Message: msg}
		}
		if apiErr.Code >= 500 {
			return &BackendError{Kind: KindServerError, Message: msg}
		}
	}

	switch {
	case strings.Contains(lower, "resource_exhausted"),
		strings.Contains(lower, "429"),
		strings.Contains(lower, "quota"):
		return &BackendError{Kind: KindRateLimited, Message: msg}
	case strings.Contains(lower, "api key not valid"):
		return &BackendError{Kind: KindInvalidCredential, Message: msg}
	case strings.Contains(lower, "rpc failed"),
		strings.Contains(lower, "server error"),
		strings.Contains(lower, "internal error"):
		return &BackendError{Kind: KindServerError, Message: msg}
	}
	return &BackendError{Kind: KindUnknown, Message: msg}
}

// wrapf attaches context while keeping the classified error unwrappable.
func wrapf(err error, format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, classifyError(err))...)
}
