package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	log, err := New(true, true)
	require.NoError(t, err)
	require.NotNil(t, log)

	assert.True(t, log.Core().Enabled(zapcore.DebugLevel), "debug level should be enabled")
}

func TestNew_InfoLevelByDefault(t *testing.T) {
	log, err := New(false, false)
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("  abc  ", 5))
	assert.Equal(t, "ab...", Truncate("abcdef", 2))
	assert.Equal(t, "èé...", Truncate("èéàò", 2))
	assert.Equal(t, "", Truncate("abc", 0))
}
