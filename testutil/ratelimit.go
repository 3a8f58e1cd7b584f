package testutil

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/kbukum/restadapter/logger"
)

// API error constants that mean a live test hit a service quota.
const (
	ConstantQuotaFilled = "QUOTA_FILLED"
	ConstantRateLimit   = "RATELIMIT"
)

// ConstantError is implemented by API errors that carry a machine-readable
// constant.
type ConstantError interface {
	error
	Constant() string
}

// SkipIfRateLimited skips the calling test when err carries the
// QUOTA_FILLED or RATELIMIT constant (case-insensitive). Any other error,
// or nil, is ignored.
func SkipIfRateLimited(t testing.TB, err error) {
	t.Helper()
	var ce ConstantError
	if !errors.As(err, &ce) {
		return
	}
	msg := rateLimitMessage(ce.Constant(), callerName(2))
	if msg == "" {
		return
	}
	logger.Warn(msg)
	t.Skip(msg)
}

func rateLimitMessage(constant, caller string) string {
	switch strings.ToUpper(constant) {
	case ConstantQuotaFilled:
		return fmt.Sprintf("Skipping %s(), link posting quota has been filled for this user", caller)
	case ConstantRateLimit:
		return fmt.Sprintf("Skipping %s(), reached ratelimit", caller)
	}
	return ""
}

// callerName returns the unqualified name of the function skip frames
// above callerName itself, e.g. "TestSubmit" or "TestSubmit.func1".
func callerName(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	name := fn.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if _, rest, ok := strings.Cut(name, "."); ok {
		name = rest
	}
	return name
}
