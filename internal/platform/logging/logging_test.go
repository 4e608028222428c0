package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/m-mizutani/masq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeLine parses the single JSON record written to buf.
func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	return entry
}

func TestFromContext(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.Equal(t, defaultLogger, FromContext(nil)) //nolint:staticcheck // nil guard
	assert.Equal(t, defaultLogger, FromContext(context.Background()))
	assert.Equal(t, custom, FromContext(WithContext(context.Background(), custom)))
}

func TestWithIDs(t *testing.T) {
	var buf bytes.Buffer

	ctx := WithContext(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx = WithRequestID(ctx, "req-123")
	ctx = WithTraceID(ctx, "trace-456")
	ctx = WithCorrelationID(ctx, "corr-789")

	FromContext(ctx).InfoContext(ctx, "user created")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "trace-456", entry["trace_id"])
	assert.Equal(t, "corr-789", entry["correlation_id"])
}

func TestWithAttrs(t *testing.T) {
	var buf bytes.Buffer

	base := slog.New(slog.NewJSONHandler(&buf, nil))
	parent := WithContext(context.Background(), base)
	child := WithAttrs(parent, slog.String("locale", "zh"), slog.Int("status", 404))

	FromContext(child).Info("error translated")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "zh", entry["locale"])
	assert.InDelta(t, 404, entry["status"], 0)
	assert.Equal(t, base, FromContext(parent), "parent context keeps its logger")
}

func TestSetDefault(t *testing.T) {
	original := defaultLogger
	t.Cleanup(func() { SetDefault(original) })

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	SetDefault(custom)

	assert.Equal(t, custom, FromContext(context.Background()))
	assert.Equal(t, custom, slog.Default())
}

func TestNewWithWriter(t *testing.T) {
	tests := []struct {
		name   string
		format string
		level  string
		log    func(*slog.Logger)
		want   string
	}{
		{"json", "json", "info", func(l *slog.Logger) { l.Info("user created") }, `"msg":"user created"`},
		{"text", "text", "debug", func(l *slog.Logger) { l.Debug("cache miss") }, "msg=\"cache miss\""},
		{"pretty", "pretty", "info", func(l *slog.Logger) { l.Info("starting server") }, "starting server"},
		{"unknown format defaults to json", "xml", "info", func(l *slog.Logger) { l.Info("ready") }, `"msg":"ready"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			logger := NewWithWriter(&Config{
				Level:   tt.level,
				Format:  tt.format,
				Service: "lingo-service",
				Version: "1.0.0",
			}, &buf)

			tt.log(logger)

			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), "lingo-service")
		})
	}
}

func TestNewWithWriter_RollingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")

	var buf bytes.Buffer

	logger := NewWithWriter(&Config{
		Level:  "info",
		Format: "pretty",
		File: FileConfig{
			Enabled:    true,
			Path:       path,
			MaxSizeMB:  1,
			MaxBackups: 1,
			MaxAgeDays: 1,
		},
	}, &buf)

	logger.Info("user deleted", slog.String("password", "hunter2"))

	assert.Contains(t, buf.String(), "user deleted")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"user deleted"`)
	assert.NotContains(t, string(content), "hunter2")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace":   LevelTrace,
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for input, want := range tests {
		assert.Equal(t, want, parseLevel(input), input)
	}
}

func TestSlogToCharmLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, slogToCharmLevel(LevelTrace))
	assert.Equal(t, log.DebugLevel, slogToCharmLevel(slog.LevelDebug))
	assert.Equal(t, log.InfoLevel, slogToCharmLevel(slog.LevelInfo))
	assert.Equal(t, log.WarnLevel, slogToCharmLevel(slog.LevelWarn))
	assert.Equal(t, log.ErrorLevel, slogToCharmLevel(slog.LevelError))
}

// failingHandler accepts every record and fails to write it.
type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestMultiHandler(t *testing.T) {
	t.Run("enabled if any handler is", func(t *testing.T) {
		h := NewMultiHandler(
			slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}),
			slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)

		assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))
		assert.False(t, h.Enabled(context.Background(), LevelTrace))
	})

	t.Run("writes to handlers enabled for the level", func(t *testing.T) {
		var warnOnly, all bytes.Buffer

		logger := slog.New(NewMultiHandler(
			slog.NewJSONHandler(&warnOnly, &slog.HandlerOptions{Level: slog.LevelWarn}),
			slog.NewJSONHandler(&all, nil),
		))

		logger.Info("user created")

		assert.Empty(t, warnOnly.String())
		assert.Contains(t, all.String(), "user created")
	})

	t.Run("attrs and groups reach every handler", func(t *testing.T) {
		var a, b bytes.Buffer

		logger := slog.New(NewMultiHandler(
			slog.NewJSONHandler(&a, nil),
			slog.NewJSONHandler(&b, nil),
		)).With(slog.String("request_id", "req-1")).WithGroup("user")

		logger.Info("renamed", slog.String("name", "Ada"))

		for _, buf := range []*bytes.Buffer{&a, &b} {
			entry := decodeLine(t, buf)
			assert.Equal(t, "req-1", entry["request_id"])
			assert.Equal(t, map[string]any{"name": "Ada"}, entry["user"])
		}
	})

	t.Run("errors are joined", func(t *testing.T) {
		var buf bytes.Buffer

		h := NewMultiHandler(
			failingHandler{slog.NewJSONHandler(io.Discard, nil)},
			slog.NewJSONHandler(&buf, nil),
		)

		err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0))

		require.ErrorContains(t, err, "disk full")
		assert.Contains(t, buf.String(), "msg", "later handlers still run")
	})
}

func TestNewReplaceAttr(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		redact bool
	}{
		{"password field", "password", "hunter2", true},
		{"authorization field", "authorization", "token123", true},
		{"secret prefix", "secret_salt", "pepper", true},
		{"database url", "dsn", "postgres://app:s3cret@db:5432/users", true},
		{"redis url", "addr", "redis://:s3cret@cache:6379/0", true},
		{"bearer token", "header", "Bearer abc123xyz456", true},
		{"jwt", "header", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig", true},
		{"url without credentials", "dsn", "postgres://db:5432/users", false},
		{"user name", "name", "Ada", false},
		{"locale", "locale", "zh-CN", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{ReplaceAttr: NewReplaceAttr()}))
			logger.Info("test", slog.String(tt.key, tt.value))

			if tt.redact {
				assert.NotContains(t, buf.String(), tt.value)
				assert.Contains(t, buf.String(), tt.key)
			} else {
				assert.Contains(t, buf.String(), tt.value)
			}
		})
	}
}

func TestNewReplaceAttr_ExtraOptions(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		ReplaceAttr: NewReplaceAttr(masq.WithFieldName("subject")),
	}))

	logger.Info("authenticated", slog.String("subject", "user-42"))

	assert.NotContains(t, buf.String(), "user-42")
}

func TestTrace(t *testing.T) {
	t.Run("emitted at trace level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&Config{Level: "trace", Format: "json"}, &buf)
		ctx := WithContext(context.Background(), logger)

		Trace(ctx, "translated", slog.String("code", "error.internal_error"))

		entry := decodeLine(t, &buf)
		assert.Equal(t, "translated", entry["msg"])
		assert.Equal(t, "DEBUG-4", entry["level"])
		assert.Equal(t, "error.internal_error", entry["code"])
	})

	t.Run("suppressed at debug level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&Config{Level: "debug", Format: "json"}, &buf)
		ctx := WithContext(context.Background(), logger)

		Trace(ctx, "translated")

		assert.Empty(t, buf.String())
	})
}
