// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

package logging

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestAppendCtx(t *testing.T) {
	attr := slog.String("key1", "value1")
	ctx := AppendCtx(context.TODO(), attr)

	if ctx == nil {
		t.Fatal("expected non-nil context")
	}

	attrs, ok := ctx.Value(slogFields).([]slog.Attr)
	if !ok {
		t.Fatal("expected slog attributes in context")
	}
	if len(attrs) != 1 {
		t.Fatalf("expected 1 attribute, got %d", len(attrs))
	}
	if attrs[0].Key != "key1" || attrs[0].Value.String() != "value1" {
		t.Errorf("unexpected attribute %s=%s", attrs[0].Key, attrs[0].Value.String())
	}
}

func TestAppendCtx_Accumulates(t *testing.T) {
	ctx := context.Background()
	ctx = AppendCtx(ctx, slog.String("key1", "value1"))
	ctx = AppendCtx(ctx, slog.Int("key2", 42))
	ctx = AppendCtx(ctx, slog.Bool("key3", true))

	attrs, ok := ctx.Value(slogFields).([]slog.Attr)
	if !ok {
		t.Fatal("expected slog attributes in context")
	}
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}

	expectedKeys := []string{"key1", "key2", "key3"}
	for i, expectedKey := range expectedKeys {
		if attrs[i].Key != expectedKey {
			t.Errorf("expected key[%d] %q, got %q", i, expectedKey, attrs[i].Key)
		}
	}
}

func TestContextHandler_Handle(t *testing.T) {
	var captured []slog.Attr
	testHandler := &testSlogHandler{
		handleFunc: func(ctx context.Context, r slog.Record) error {
			r.Attrs(func(a slog.Attr) bool {
				captured = append(captured, a)
				return true
			})
			return nil
		},
	}

	handler := contextHandler{Handler: testHandler}

	ctx := AppendCtx(context.Background(), slog.String("ctx_key", "ctx_value"))

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "test message", 0)
	record.AddAttrs(slog.String("record_key", "record_value"))

	if err := handler.Handle(ctx, record); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	found := false
	for _, a := range captured {
		if a.Key == "ctx_key" && a.Value.String() == "ctx_value" {
			found = true
		}
	}
	if !found {
		t.Error("expected context attribute to be added to the record")
	}
}

func TestInitStructuredLogger_Levels(t *testing.T) {
	testCases := []struct {
		name     string
		logLevel string
	}{
		{"debug level", "debug"},
		{"warn level", "warn"},
		{"error level", "error"},
		{"info level", "info"},
		{"unknown level", "unknown"},
	}

	originalLogLevel := os.Getenv("LOG_LEVEL")
	defer func() {
		if originalLogLevel != "" {
			os.Setenv("LOG_LEVEL", originalLogLevel)
		} else {
			os.Unsetenv("LOG_LEVEL")
		}
	}()

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Setenv("LOG_LEVEL", tc.logLevel)
			if handler := InitStructuredLogger(); handler == nil {
				t.Error("expected non-nil handler")
			}
		})
	}
}

type testSlogHandler struct {
	handleFunc func(context.Context, slog.Record) error
}

func (h *testSlogHandler) Enabled(ctx context.Context, level slog.Level) bool { return true }

func (h *testSlogHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.handleFunc != nil {
		return h.handleFunc(ctx, r)
	}
	return nil
}

func (h *testSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }

func (h *testSlogHandler) WithGroup(name string) slog.Handler { return h }
