package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "level %q", tt.in)
	}
}

func TestNewCreatesLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	logger, err := New(dir, "info")
	require.NoError(t, err)
	defer func() { _ = logger.Close() }()

	zl := logger.Zerolog()
	zl.Info().Str("query", "batman").Msg("search submitted")

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"query":"batman"`)
	assert.Contains(t, string(data), "search submitted")
}

func TestNewWriterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, "warn")

	zl := logger.Zerolog()
	zl.Info().Msg("hidden")
	zl.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestComponentBeforeInitIsSilent(t *testing.T) {
	SetGlobal(nil)

	zl := Component("search")
	zl.Error().Msg("nothing should panic")
}

func TestComponentTagsRecords(t *testing.T) {
	var buf bytes.Buffer
	SetGlobal(NewWriter(&buf, "debug"))
	defer SetGlobal(nil)

	zl := Component("ingest")
	zl.Debug().Msg("feed fetched")

	assert.Contains(t, buf.String(), `"component":"ingest"`)
}

func TestBaseBeforeInitIsDisabled(t *testing.T) {
	SetGlobal(nil)

	assert.Equal(t, zerolog.Disabled, Base().GetLevel())
}

func TestBaseUsesGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	SetGlobal(NewWriter(&buf, "info"))
	defer SetGlobal(nil)

	zl := Base()
	zl.Info().Msg("index opened")

	assert.Contains(t, buf.String(), "index opened")
	assert.NotContains(t, buf.String(), `"component"`)
}
