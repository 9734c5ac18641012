package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T, level log.Level) *bytes.Buffer {
	t.Helper()
	saved := Logger
	t.Cleanup(func() { Logger = saved })

	var buf bytes.Buffer
	SetOutput(&buf)
	Logger.SetLevel(level)
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"INFO":    log.InfoLevel,
		"warn":    log.WarnLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"fatal":   log.FatalLevel,
		"":        log.InfoLevel,
		"bogus":   log.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestEnterLeave(t *testing.T) {
	buf := captureLogs(t, log.DebugLevel)

	Enter("cg_iRIC_Read_Grid2d_Str_Size", "fid", "abc")
	Leave("cg_iRIC_Read_Grid2d_Str_Size", nil)

	out := buf.String()
	assert.Contains(t, out, "enter")
	assert.Contains(t, out, "leave")
	assert.Contains(t, out, "fid=abc")
}

func TestLeaveLogsErrorOnce(t *testing.T) {
	buf := captureLogs(t, log.ErrorLevel)

	Enter("op")
	Leave("op", errors.New("zone not found"))

	out := buf.String()
	assert.Equal(t, 1, bytes.Count([]byte(out), []byte("zone not found")))
	assert.NotContains(t, out, "enter")
}

func TestConfigureFile(t *testing.T) {
	saved := Logger
	t.Cleanup(func() { Logger = saved })

	path := filepath.Join(t.TempDir(), "gridstore.log")
	require.NoError(t, Configure("warn", path))

	Info("hidden")
	Warn("shown")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestConfigureBadFile(t *testing.T) {
	saved := Logger
	t.Cleanup(func() { Logger = saved })

	err := Configure("info", filepath.Join(t.TempDir(), "missing", "dir", "x.log"))
	assert.Error(t, err)
}
