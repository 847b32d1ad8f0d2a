package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input  string
		expect slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expect, ParseLevel(tc.input))
		})
	}
	assert.True(t, ValidLevel(""))
	assert.True(t, ValidLevel(" Error "))
	assert.False(t, ValidLevel("verbose"))
}

func TestNewWithWriter_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewWithWriter(buf, "debug", FormatJSON)
	logger.Debug("step invoked",
		Organizer("checkout"),
		Step("charge"),
		Index(2),
		RunID("r-1"),
		Duration(time.Second),
		Error(errors.New("boom")))

	record := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "step invoked", record["msg"])
	assert.Equal(t, "checkout", record["organizer"])
	assert.Equal(t, "charge", record["step"])
	assert.EqualValues(t, 2, record["index"])
	assert.Equal(t, "r-1", record["run_id"])
	assert.Equal(t, "boom", record["error"])
}

func TestNewWithWriter_TextFiltersLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewWithWriter(buf, "warn", FormatText)
	logger.Info("hidden")
	assert.Empty(t, buf.String())
	logger.Warn("shown", Reason("guard"))
	assert.Contains(t, buf.String(), "reason=guard")
}

func TestError_Nil(t *testing.T) {
	assert.Equal(t, "", Error(nil).Value.String())
}
