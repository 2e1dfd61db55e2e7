package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "level")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", FormatJSON, &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("loaded vhost file", zap.String("path", "/etc/apache2/sites-available/000_p_live"))
	require.NoError(t, logger.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "loaded vhost file", entry["msg"])
	assert.Equal(t, "/etc/apache2/sites-available/000_p_live", entry["path"])
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("warn", "", &buf)
	require.NoError(t, err)

	logger.Warn("careful")
	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "careful")
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New("info", "xml", &bytes.Buffer{})
	assert.Error(t, err)
}
