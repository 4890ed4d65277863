package gemini

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"google.golang.org/genai"
)

var sleep = time.Sleep

const (
	baseRetryDelay = time.Second
	maxRetryDelay  = 30 * time.Second
)

var retryAfterHint = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?)\s*(?:s\b|sec|second)`)

// retryDelay reports whether err is worth another attempt and how long to
// wait first. Quota errors asking for a delay above maxRetryDelay are final.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	if errors.Is(err, errEmptyResponse) {
		return backoff(attempt), true
	}

	apiErr, ok := asAPIError(err)
	if !ok {
		return 0, false
	}

	switch apiErr.Code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
	default:
		return 0, false
	}

	if hint, ok := parseRetryAfter(apiErr.Message); ok {
		if hint > maxRetryDelay {
			return 0, false
		}
		return hint, true
	}

	return backoff(attempt), true
}

func asAPIError(err error) (genai.APIError, bool) {
	var value genai.APIError
	if errors.As(err, &value) {
		return value, true
	}
	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	return genai.APIError{}, false
}

func parseRetryAfter(message string) (time.Duration, bool) {
	m := retryAfterHint.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

func backoff(attempt int) time.Duration {
	delay := baseRetryDelay << (attempt - 1)
	if delay <= 0 || delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}
