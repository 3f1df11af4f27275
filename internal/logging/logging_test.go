package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
}

func TestLoggerRouting(t *testing.T) {
	tests := []struct {
		name      string
		level     Level
		toConsole bool
	}{
		{name: "info", level: Info, toConsole: true},
		{name: "warning", level: Warning, toConsole: true},
		{name: "error", level: Error, toConsole: true},
		{name: "trace stays in file", level: Trace, toConsole: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var file, console bytes.Buffer
			l := NewWithWriters(&file, &console)
			l.now = fixedClock

			l.Log(tt.level, "frame=%d dx=%g", 7, 1.5)

			assert.Equal(t, "2024-03-09 14:05:07 ["+tt.level.String()+"] frame=7 dx=1.5\n", file.String())
			if tt.toConsole {
				assert.Contains(t, console.String(), "frame=7 dx=1.5")
				assert.Contains(t, console.String(), tt.level.String())
			} else {
				assert.Empty(t, console.String())
			}
		})
	}
}

func TestNewTruncatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidstab.log")
	require.NoError(t, os.WriteFile(path, []byte("stale run\n"), 0644))

	l, err := New(path)
	require.NoError(t, err)
	l.console = &bytes.Buffer{}
	l.Tracef("fresh")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale run")
	assert.True(t, strings.HasSuffix(string(data), "[TRACE] fresh\n"))
}

func TestNewRejectsMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "vidstab.log"))
	assert.Error(t, err)
}

func TestDefaultLogger(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	var file bytes.Buffer
	SetDefault(NewWithWriters(&file, nil))
	Warnf("skipped frame %d", 3)
	assert.Contains(t, file.String(), "[WARNING] skipped frame 3")

	SetDefault(nil)
	Errorf("nobody hears this")
	assert.NotContains(t, file.String(), "nobody")
}
