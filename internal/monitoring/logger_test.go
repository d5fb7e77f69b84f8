package monitoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *[]string {
	t.Helper()
	original := Logf
	originalLevel := Verbosity()
	t.Cleanup(func() {
		Logf = original
		SetVerbosity(originalLevel)
	})

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	return &lines
}

func TestSetLogger(t *testing.T) {
	lines := capture(t)

	Logf("test %d", 1)
	assert.Equal(t, []string{"test 1"}, *lines)

	// nil installs a no-op logger
	SetLogger(nil)
	assert.NotPanics(t, func() { Logf("test message") })
}

func TestVerbosityGating(t *testing.T) {
	testCases := []struct {
		level int
		want  []string
	}{
		{LevelQuiet, []string{"warning: w"}},
		{LevelInfo, []string{"i", "warning: w"}},
		{LevelVerbose, []string{"i", "d", "warning: w"}},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("level %d", tc.level), func(t *testing.T) {
			lines := capture(t)
			SetVerbosity(tc.level)

			Infof("i")
			Debugf("d")
			Warnf("w")

			assert.Equal(t, tc.want, *lines)
		})
	}
}

func TestSetVerbosity_Clamps(t *testing.T) {
	_ = capture(t)

	SetVerbosity(-3)
	assert.Equal(t, LevelQuiet, Verbosity())

	SetVerbosity(9)
	assert.Equal(t, LevelVerbose, Verbosity())
	assert.True(t, Enabled(LevelInfo))
}
