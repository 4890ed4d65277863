package gemini

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"google.golang.org/genai"
)

func TestRetryDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		attempt   int
		wantDelay time.Duration
		wantRetry bool
	}{
		{name: "server error backs off", err: genai.APIError{Code: http.StatusServiceUnavailable}, attempt: 2, wantDelay: 2 * time.Second, wantRetry: true},
		{name: "wrapped pointer error", err: fmt.Errorf("send: %w", &genai.APIError{Code: http.StatusInternalServerError}), attempt: 1, wantDelay: time.Second, wantRetry: true},
		{name: "short quota hint", err: genai.APIError{Code: http.StatusTooManyRequests, Message: "Please retry in 4.5s."}, attempt: 1, wantDelay: 4500 * time.Millisecond, wantRetry: true},
		{name: "long quota hint", err: genai.APIError{Code: http.StatusTooManyRequests, Message: "retry after 60 seconds"}, attempt: 1},
		{name: "bad request", err: genai.APIError{Code: http.StatusBadRequest}, attempt: 1},
		{name: "plain error", err: errors.New("dial tcp: refused"), attempt: 1},
		{name: "empty response", err: errEmptyResponse, attempt: 1, wantDelay: time.Second, wantRetry: true},
		{name: "backoff capped", err: genai.APIError{Code: http.StatusBadGateway}, attempt: 10, wantDelay: maxRetryDelay, wantRetry: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			delay, retry := retryDelay(tt.err, tt.attempt)
			if retry != tt.wantRetry || delay != tt.wantDelay {
				t.Fatalf("expected (%s, %v), got (%s, %v)", tt.wantDelay, tt.wantRetry, delay, retry)
			}
		})
	}
}
