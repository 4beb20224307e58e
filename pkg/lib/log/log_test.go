package log

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseLevel 测试日志级别解析
func TestParseLevel(t *testing.T) {
	for input, want := range map[string]slog.Level{
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"":        LevelInfo,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		" INFO ":  LevelInfo,
	} {
		level, err := ParseLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, level, input)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

// TestLazyLogger 测试输出重定向和级别过滤
func TestLazyLogger(t *testing.T) {
	defer SetOutputWithLevel(os.Stderr, LevelInfo)

	var buf bytes.Buffer
	SetOutputWithLevel(&buf, LevelWarn)

	l := Logger("testcomp")
	l.Debug("不应出现")
	l.Info("不应出现")
	l.Warn("应当出现", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "不应出现")
	assert.Contains(t, out, "应当出现")
	assert.Contains(t, out, "component=testcomp")
	assert.Contains(t, out, "key=value")
}
