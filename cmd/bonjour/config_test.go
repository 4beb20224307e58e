package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-bonjour/config"
)

// TestLoadConfig 测试配置装配：文件、环境变量、自动修复
func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bonjour.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"backend": "embedded",
		"browse": {"domain": "", "event_buffer": 0},
		"log": {"level": "warn"}
	}`), 0o644))

	old := *configFile
	*configFile = path
	defer func() { *configFile = old }()

	t.Setenv(EnvPrefix+"LOG_LEVEL", "Error")
	t.Setenv(EnvPrefix+"LOG_FILE", "/tmp/bonjour-test.log")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.BackendEmbedded, cfg.Backend)
	// 自动修复补回默认值
	assert.Equal(t, "local.", cfg.Browse.Domain)
	assert.Equal(t, 100, cfg.Browse.EventBuffer)
	// 环境变量覆盖文件
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "/tmp/bonjour-test.log", cfg.Log.File)
}

// TestApplyEnvOverrides 测试环境变量覆盖
func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvPrefix+"BACKEND", "widearea")
	t.Setenv(EnvPrefix+"DOMAIN", "example.org.")
	t.Setenv(EnvPrefix+"EVENT_BUFFER", "50")
	t.Setenv(EnvPrefix+"WIDEAREA_DOMAINS", "a.example.org., b.example.org.")
	t.Setenv(EnvPrefix+"WIDEAREA_RESOLVER", "10.0.0.1:53")

	cfg := config.NewConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, config.BackendWideArea, cfg.Backend)
	assert.Equal(t, "example.org.", cfg.Browse.Domain)
	assert.Equal(t, 50, cfg.Browse.EventBuffer)
	assert.Equal(t, []string{"a.example.org.", "b.example.org."}, cfg.WideArea.Domains)
	assert.Equal(t, "10.0.0.1:53", cfg.WideArea.Resolver)
}

// TestParseTxt 测试 TXT 参数解析
func TestParseTxt(t *testing.T) {
	assert.Equal(t, map[string]string{"path": "/", "v": "1"}, parseTxt("path=/, v=1"))
	assert.Equal(t, map[string]string{"flag": ""}, parseTxt("flag"))
	assert.Empty(t, parseTxt(""))
}
