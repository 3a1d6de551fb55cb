package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithConfigLevels(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithConfig(LogConfig{Level: "WARN", Format: "text", Out: &buf}))
	assert.False(t, IsDebugEnabled())

	Info(context.Background(), "hidden")
	Warn(context.Background(), "shown", "file", "prices.ndjson")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "file=prices.ndjson")

	require.NoError(t, InitWithConfig(LogConfig{Level: "DEBUG", Out: &buf}))
	assert.True(t, IsDebugEnabled())
}

func TestDetailedLoggingEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithConfig(LogConfig{Level: "ERROR", DetailedLogging: true, Out: &buf}))
	assert.True(t, IsDebugEnabled())

	Debug(context.Background(), "detail")
	assert.Contains(t, buf.String(), "detail")
	assert.Contains(t, buf.String(), "source.function=")
}

func TestMalformedLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithConfig(LogConfig{Level: "INFO", Format: "json", Out: &buf}))

	MalformedLine(context.Background(), "snapshots.ndjson", 3, errors.New("unexpected EOF"))
	assert.Contains(t, buf.String(), `"type":"MALFORMED_LINE"`)
	assert.Contains(t, buf.String(), `"line":3`)
}
