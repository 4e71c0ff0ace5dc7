package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riotscrape/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
		ok    bool
	}{
		{"debug", zerolog.DebugLevel, true},
		{"info", zerolog.InfoLevel, true},
		{"", zerolog.InfoLevel, true},
		{"WARN", zerolog.WarnLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"error", zerolog.ErrorLevel, true},
		{"disabled", zerolog.Disabled, true},
		{"loud", zerolog.InfoLevel, false},
	}

	for _, tt := range tests {
		level, err := parseLogLevel(tt.input)
		if tt.ok {
			assert.NoError(t, err, tt.input)
			assert.Equal(t, tt.want, level, tt.input)
		} else {
			assert.Error(t, err, tt.input)
		}
	}
}

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	base, err := New(&config.LoggingConfig{Level: "disabled"})
	require.NoError(t, err)

	child := base.WithField("a", 1).WithFields(map[string]interface{}{"b": 2})
	require.NotSame(t, base, child)

	parent := base.(*zerologLogger)
	assert.Empty(t, parent.fields)

	leaf := child.(*zerologLogger)
	assert.Len(t, leaf.fields, 2)
}

func TestWithErrorNil(t *testing.T) {
	base, err := New(&config.LoggingConfig{Level: "disabled"})
	require.NoError(t, err)
	assert.Same(t, base, base.WithError(nil))
}
