package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected slog.Level
	}{
		{input: "debug", expected: slog.LevelDebug},
		{input: "DEBUG", expected: slog.LevelDebug},
		{input: "warn", expected: slog.LevelWarn},
		{input: "warning", expected: slog.LevelWarn},
		{input: " error ", expected: slog.LevelError},
		{input: "info", expected: slog.LevelInfo},
		{input: "", expected: slog.LevelInfo},
		{input: "verbose", expected: slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseLevel(tc.input))
		})
	}
}

func Test_NewJSON(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(&buf, "capturectl", "v0.1.0", "warn", "json")
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", "cluster", "MyCluster")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "capturectl", entry["module"])
	assert.Equal(t, "v0.1.0", entry["version"])
	assert.Equal(t, "MyCluster", entry["cluster"])
	assert.NotContains(t, entry, "source")
}

func Test_NewText(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(&buf, "capturectl", "dev", "debug", "")
	require.NoError(t, err)

	logger.Debug("details")

	assert.Contains(t, buf.String(), "msg=details")
	assert.Contains(t, buf.String(), "module=capturectl")
	assert.Contains(t, buf.String(), "source=")
}

func Test_NewUnknownFormat(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "capturectl", "dev", "info", "xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
