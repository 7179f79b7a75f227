package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestMaskingHandler tests credential masking in log output.
func TestMaskingHandler(t *testing.T) {
	t.Parallel()

	t.Run("masks cookie values", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		logger.Info("request sent",
			"url", "https://example.gov/page",
			"cookie", "session=supersecret",
		)

		out := buf.String()
		if strings.Contains(out, "supersecret") {
			t.Errorf("cookie value leaked into log output: %s", out)
		}
		if !strings.Contains(out, MaskValue) {
			t.Errorf("expected mask value in output: %s", out)
		}
		if !strings.Contains(out, "https://example.gov/page") {
			t.Errorf("non-sensitive attribute was altered: %s", out)
		}
	})

	t.Run("masks authorization case-insensitively", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		logger.Warn("retrying", "Authorization", "Bearer abc123")

		if strings.Contains(buf.String(), "abc123") {
			t.Errorf("authorization value leaked: %s", buf.String())
		}
	})

	t.Run("masks attributes added via With", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true).With("cookie", "gate=open")

		logger.Info("walking pages")

		if strings.Contains(buf.String(), "gate=open") {
			t.Errorf("With-attached cookie leaked: %s", buf.String())
		}
	})

	t.Run("masks inside groups", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		logger.Info("request sent", slog.Group("headers",
			slog.String("x-api-key", "verysecret"),
			slog.String("accept", "*/*"),
		))

		out := buf.String()
		if strings.Contains(out, "verysecret") {
			t.Errorf("grouped sensitive value leaked: %s", out)
		}
		if !strings.Contains(out, "*/*") {
			t.Errorf("grouped non-sensitive value was altered: %s", out)
		}
	})

	t.Run("default level suppresses info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)

		logger.Info("should not appear")
		logger.Warn("should appear")

		out := buf.String()
		if strings.Contains(out, "should not appear") {
			t.Error("info message logged at default level")
		}
		if !strings.Contains(out, "should appear") {
			t.Error("warn message missing at default level")
		}
	})
}
