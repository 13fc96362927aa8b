package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelTrace, ParseLogLevel(" TRACE "))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
}

func TestLogger_Levels(t *testing.T) {
	l := NewLoggerWithFormat(LogLevelWarn, "json")
	assert.Equal(t, LogLevelWarn, l.GetLevel())
	assert.NotNil(t, l.Zap())

	nop := NewNopLogger()
	nop.Info("[Test] %d rows", 3)
	nop.Trace("ignored")
}
