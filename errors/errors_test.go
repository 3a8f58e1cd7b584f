package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "not found" {
		t.Errorf("expected message 'not found', got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}

	if !New(ErrCodeTimeout, "timed out", http.StatusGatewayTimeout).Retryable {
		t.Error("TIMEOUT should be retryable")
	}
}

func TestAppError_NotFound(t *testing.T) {
	err := NotFound("user", "123")
	if err.Details["resource"] != "user" || err.Details["id"] != "123" {
		t.Errorf("unexpected details %v", err.Details)
	}
	if _, ok := NotFound("user", "").Details["id"]; ok {
		t.Error("empty id should not be recorded")
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		status    int
		retryable bool
	}{
		{"ServiceUnavailable", ServiceUnavailable("api"), ErrCodeServiceUnavailable, http.StatusServiceUnavailable, true},
		{"ConnectionFailed", ConnectionFailed("upstream"), ErrCodeConnectionFailed, http.StatusBadGateway, true},
		{"Timeout", Timeout("round trip"), ErrCodeTimeout, http.StatusGatewayTimeout, true},
		{"RateLimited", RateLimited(), ErrCodeRateLimited, http.StatusTooManyRequests, true},
		{"NotFound", NotFound("resource", ""), ErrCodeNotFound, http.StatusNotFound, false},
		{"InvalidInput", InvalidInput("proxy", "bad"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"Validation", Validation("bad input"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"Unauthorized", Unauthorized(""), ErrCodeUnauthorized, http.StatusUnauthorized, false},
		{"Forbidden", Forbidden(""), ErrCodeForbidden, http.StatusForbidden, false},
		{"Internal", Internal(nil), ErrCodeInternal, http.StatusInternalServerError, false},
		{"ExternalServiceError", ExternalServiceError("upstream", nil), ErrCodeExternalService, http.StatusBadGateway, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
			if tc.err.Message == "" {
				t.Error("expected a message")
			}
		})
	}
}

func TestAppError_DefaultReasons(t *testing.T) {
	if Unauthorized("token revoked").Message != "token revoked" {
		t.Error("explicit reason should be kept")
	}
	if !strings.Contains(InvalidInput("f", "too long").Message, "too long") {
		t.Error("reason should appear in the message")
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := ConnectionFailed("upstream").WithCause(cause)
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if !strings.Contains(err.Error(), "dial tcp: refused") {
		t.Errorf("Error() should include the cause, got %q", err.Error())
	}
	if NotFound("x", "").Unwrap() != nil {
		t.Error("Unwrap should return nil when no cause")
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := Validation("bad").WithDetails(map[string]any{"a": 1}).WithDetail("b", 2)
	if err.Details["a"] != 1 || err.Details["b"] != 2 {
		t.Errorf("unexpected details %v", err.Details)
	}

	merged := NotFound("user", "1").WithDetails(map[string]any{"status_code": 404})
	if merged.Details["resource"] != "user" || merged.Details["status_code"] != 404 {
		t.Errorf("details should merge, got %v", merged.Details)
	}
}

func TestAppError_Error_Format(t *testing.T) {
	err := New(ErrCodeInvalidInput, "bad header", http.StatusBadRequest)
	if got := err.Error(); got != "INVALID_INPUT: bad header" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorCode_IsRetryableCode_Table(t *testing.T) {
	retryable := []ErrorCode{ErrCodeServiceUnavailable, ErrCodeConnectionFailed, ErrCodeTimeout, ErrCodeRateLimited, ErrCodeExternalService}
	for _, code := range retryable {
		if !IsRetryableCode(code) {
			t.Errorf("expected %s to be retryable", code)
		}
	}

	nonRetryable := []ErrorCode{ErrCodeNotFound, ErrCodeInvalidInput, ErrCodeUnauthorized, ErrCodeForbidden, ErrCodeInternal}
	for _, code := range nonRetryable {
		if IsRetryableCode(code) {
			t.Errorf("expected %s to NOT be retryable", code)
		}
	}
}

func TestAppError_ToResponse(t *testing.T) {
	resp := NotFound("user", "42").ToResponse()
	if resp.Error.Code != ErrCodeNotFound {
		t.Errorf("expected code NOT_FOUND in response, got %s", resp.Error.Code)
	}
	if resp.Error.Retryable {
		t.Error("expected retryable=false in response")
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"code":"NOT_FOUND"`) || !strings.Contains(string(data), `"resource":"user"`) {
		t.Errorf("unexpected JSON %s", data)
	}
}

func TestIsAppError(t *testing.T) {
	appErr := NotFound("x", "")
	if !IsAppError(appErr) {
		t.Error("expected IsAppError to return true for AppError")
	}
	if !IsAppError(fmt.Errorf("wrapped: %w", appErr)) {
		t.Error("expected IsAppError to return true for wrapped AppError")
	}
	if IsAppError(fmt.Errorf("plain error")) {
		t.Error("expected IsAppError to return false for plain error")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Internal(nil)
	got, ok := AsAppError(fmt.Errorf("wrap: %w", appErr))
	if !ok || got != appErr {
		t.Fatal("expected AsAppError to find the wrapped AppError")
	}
	if _, ok := AsAppError(fmt.Errorf("not an app error")); ok {
		t.Error("expected AsAppError to return false for non-AppError")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}

	orig := NotFound("item", "1")
	if Wrap(orig) != orig {
		t.Error("Wrap should return the original AppError unchanged")
	}
	if Wrap(fmt.Errorf("outer: %w", orig)) != orig {
		t.Error("Wrap should find a wrapped AppError")
	}

	plain := fmt.Errorf("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	if got.Cause != plain {
		t.Error("expected cause to be the original error")
	}
}
