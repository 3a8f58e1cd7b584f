package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-service")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-service" {
		t.Errorf("expected service 'test-service', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := &Config{Level: "invalid", Format: "json"}
	l := New(cfg, "test")
	if l == nil {
		t.Fatal("expected non-nil logger even with invalid level")
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_OUTPUT", "stdout")

	l := NewFromEnv("env-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func newJSONLogger(buf *bytes.Buffer) *Logger {
	return NewWithWriter(&Config{Level: "debug", Format: "json"}, "test", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid json log line %q: %v", line, err)
	}
	return m
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	newJSONLogger(&buf).WithComponent("httpadapter").Info("hello")

	m := decodeLine(t, &buf)
	if m[FieldComponent] != "httpadapter" {
		t.Errorf("component = %v", m[FieldComponent])
	}
	if m["message"] != "hello" {
		t.Errorf("message = %v", m["message"])
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithRequestID(context.Background(), "req-789")
	ctx = WithTrace(ctx, "trace-123", "span-456")

	newJSONLogger(&buf).WithContext(ctx).Info("scoped")

	m := decodeLine(t, &buf)
	want := map[string]string{
		FieldRequestID: "req-789",
		FieldTraceID:   "trace-123",
		FieldSpanID:    "span-456",
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("%s = %v, want %s", k, m[k], v)
		}
	}
}

func TestRequestIDFromContext(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty request id, got %q", got)
	}
	ctx := WithRequestID(context.Background(), "abc")
	if got := RequestIDFromContext(ctx); got != "abc" {
		t.Errorf("RequestIDFromContext() = %q", got)
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	newJSONLogger(&buf).
		WithFields(map[string]interface{}{"key": "value"}).
		WithError(fmt.Errorf("boom")).
		Warn("careful")

	m := decodeLine(t, &buf)
	if m["key"] != "value" {
		t.Errorf("key = %v", m["key"])
	}
	if m["error"] != "boom" {
		t.Errorf("error = %v", m["error"])
	}
	if m["level"] != "warn" {
		t.Errorf("level = %v", m["level"])
	}
}

func TestLevelMethods(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf)

	tests := []struct {
		level string
		log   func(string, ...map[string]interface{})
	}{
		{"debug", l.Debug},
		{"info", l.Info},
		{"warn", l.Warn},
		{"error", l.Error},
	}
	for _, tt := range tests {
		buf.Reset()
		tt.log("msg", Fields(FieldStatus, 200))
		m := decodeLine(t, &buf)
		if m["level"] != tt.level {
			t.Errorf("level = %v, want %s", m["level"], tt.level)
		}
		if m[FieldStatus] != float64(200) {
			t.Errorf("status = %v", m[FieldStatus])
		}
	}
}

func TestInit(t *testing.T) {
	Init(Config{Level: "debug", Format: "json"})
	if GetGlobalLogger() == nil {
		t.Fatal("expected global logger after Init")
	}
}

func TestSetGlobalLogger(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	custom := NewDefault("custom")
	SetGlobalLogger(custom)
	if GetGlobalLogger() != custom {
		t.Error("expected global logger to be the custom one")
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	var buf bytes.Buffer
	SetGlobalLogger(newJSONLogger(&buf))

	Info("package info")
	if !strings.Contains(buf.String(), "package info") {
		t.Errorf("package-level Info not routed to global logger: %q", buf.String())
	}
	buf.Reset()
	WithComponent("cli").Debug("component debug")
	if !strings.Contains(buf.String(), `"component":"cli"`) {
		t.Errorf("package-level WithComponent missing component: %q", buf.String())
	}
	buf.Reset()
	WithContext(WithRequestID(context.Background(), "r1")).Error("ctx error")
	if !strings.Contains(buf.String(), `"request_id":"r1"`) {
		t.Errorf("package-level WithContext missing request id: %q", buf.String())
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected output 'stderr', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp enabled")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid json", Config{Level: "info", Format: "json"}, false},
		{"valid pretty", Config{Level: "debug", Format: "pretty"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConsoleLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "console", NoColor: true}, "restadapter", &buf)
	l.Info("console line")

	out := buf.String()
	if !strings.Contains(out, "[RES][INF]") {
		t.Errorf("expected service and level tags, got %q", out)
	}
	if !strings.Contains(out, "console line") {
		t.Errorf("expected message, got %q", out)
	}
}

func TestRegisterAndGet(t *testing.T) {
	l := NewDefault("registered")
	Register("my-component", l)

	if got := Get("my-component"); got != l {
		t.Error("expected registered logger")
	}
}

func TestGetUnregistered(t *testing.T) {
	if Get("never-registered") == nil {
		t.Fatal("expected fallback logger for unregistered name")
	}
}

func TestRegisterDefaults(t *testing.T) {
	RegisterDefaults("alpha", "beta")
	if Get("alpha") == nil || Get("beta") == nil {
		t.Error("expected default loggers to be registered")
	}
}

func TestFields(t *testing.T) {
	tests := []struct {
		name     string
		input    []interface{}
		expected map[string]interface{}
	}{
		{"empty", nil, map[string]interface{}{}},
		{"pairs", []interface{}{"a", 1, "b", "two"}, map[string]interface{}{"a": 1, "b": "two"}},
		{"odd count drops last", []interface{}{"a", 1, "b"}, map[string]interface{}{"a": 1}},
		{"non-string key skipped", []interface{}{42, "x", "k", "v"}, map[string]interface{}{"k": "v"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Fields(tc.input...)
			if len(result) != len(tc.expected) {
				t.Fatalf("Fields() = %v, expected %v", result, tc.expected)
			}
			for k, v := range tc.expected {
				if result[k] != v {
					t.Errorf("Fields[%q] = %v, expected %v", k, result[k], v)
				}
			}
		})
	}
}

func TestErrorFields(t *testing.T) {
	fields := ErrorFields("execute", fmt.Errorf("something broke"))
	if fields[FieldOperation] != "execute" {
		t.Errorf("expected operation 'execute', got %v", fields[FieldOperation])
	}
	if fields[FieldError] != "something broke" {
		t.Errorf("expected error 'something broke', got %v", fields[FieldError])
	}
}

func TestMergeWithError(t *testing.T) {
	err := fmt.Errorf("test error")

	fields := map[string]interface{}{"op": "save"}
	result := MergeWithError(fields, err)
	if result[FieldError] != "test error" {
		t.Errorf("expected error field, got %v", result[FieldError])
	}
	if result["op"] != "save" {
		t.Error("expected existing fields to be preserved")
	}

	if MergeWithError(nil, err)[FieldError] != "test error" {
		t.Error("expected error field from nil map")
	}
}

func TestMergeWithDuration(t *testing.T) {
	d := 200 * time.Millisecond

	fields := map[string]interface{}{"op": "query"}
	result := MergeWithDuration(fields, d)
	if result[FieldDuration] != int64(200) {
		t.Errorf("expected duration 200, got %v", result[FieldDuration])
	}
	if result["op"] != "query" {
		t.Error("expected existing fields to be preserved")
	}

	if MergeWithDuration(nil, d)[FieldDuration] != int64(200) {
		t.Error("expected duration from nil map")
	}
}
