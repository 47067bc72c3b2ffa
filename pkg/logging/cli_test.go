package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCLIHandler(&buf, slog.LevelInfo))

	logger.Info("fetch done", "records", 60)
	out := buf.String()
	assert.Contains(t, out, "fetch done: records=60")
	assert.Contains(t, out, colorGreen)

	buf.Reset()
	logger.Warn("skipping context size")
	assert.Contains(t, buf.String(), colorYellow)

	buf.Reset()
	logger.Error("fatal error")
	assert.Contains(t, buf.String(), colorRed)
}

func TestCLIHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCLIHandler(&buf, slog.LevelWarn))

	logger.Info("quiet")
	assert.Empty(t, buf.String())

	logger.Warn("loud")
	assert.NotEmpty(t, buf.String())
}

func TestCLIHandler_Group(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCLIHandler(&buf, slog.LevelInfo)).WithGroup("eval")

	logger.Info("evaluating ranker")
	assert.Contains(t, buf.String(), "[eval] evaluating ranker")
}

func TestCLIHandler_Enabled(t *testing.T) {
	h := NewCLIHandler(&bytes.Buffer{}, slog.LevelDebug)
	require.True(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, NewCLIHandler(&bytes.Buffer{}, slog.LevelInfo).Enabled(context.Background(), slog.LevelDebug))
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"  WARN ": slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	} {
		assert.Equal(t, want, ParseLogLevel(in), strings.TrimSpace(in))
	}
}
