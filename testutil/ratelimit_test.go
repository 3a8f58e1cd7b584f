package testutil

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

type apiError struct{ constant string }

func (e *apiError) Error() string    { return "api error: " + e.constant }
func (e *apiError) Constant() string { return e.constant }

func TestRateLimitMessage(t *testing.T) {
	tests := []struct {
		constant string
		want     string
	}{
		{"QUOTA_FILLED", "Skipping TestX(), link posting quota has been filled for this user"},
		{"quota_filled", "Skipping TestX(), link posting quota has been filled for this user"},
		{"RATELIMIT", "Skipping TestX(), reached ratelimit"},
		{"RateLimit", "Skipping TestX(), reached ratelimit"},
		{"SUBREDDIT_NOEXIST", ""},
		{"", ""},
	}
	for _, tc := range tests {
		t.Run(tc.constant, func(t *testing.T) {
			if got := rateLimitMessage(tc.constant, "TestX"); got != tc.want {
				t.Errorf("rateLimitMessage(%q) = %q, want %q", tc.constant, got, tc.want)
			}
		})
	}
}

func TestSkipIfRateLimited(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantSkip bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"other constant", &apiError{"BAD_SR_NAME"}, false},
		{"ratelimit", &apiError{"RATELIMIT"}, true},
		{"wrapped quota", fmt.Errorf("submit: %w", &apiError{"QUOTA_FILLED"}), true},
	}
	for _, tc := range tests {
		var inner *testing.T
		reached := false
		t.Run(tc.name, func(t *testing.T) {
			inner = t
			SkipIfRateLimited(t, tc.err)
			reached = true
		})
		if inner.Skipped() != tc.wantSkip {
			t.Errorf("%s: Skipped() = %v, want %v", tc.name, inner.Skipped(), tc.wantSkip)
		}
		if reached == tc.wantSkip {
			t.Errorf("%s: code after the skip should run only when not skipped", tc.name)
		}
	}
}

func TestCallerName(t *testing.T) {
	if got := callerName(1); got != "TestCallerName" {
		t.Errorf("callerName(1) = %q", got)
	}
	func() {
		if got := callerName(1); !strings.HasPrefix(got, "TestCallerName.func") {
			t.Errorf("callerName(1) in closure = %q", got)
		}
	}()
}
