package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConfig 测试默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendAuto, cfg.Backend)
	assert.Equal(t, "local.", cfg.Browse.Domain)
	assert.Equal(t, 100, cfg.Browse.EventBuffer)
	assert.Equal(t, 60*time.Second, cfg.WideArea.RefreshInterval.Duration())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)
}

// TestValidate 测试配置验证
func TestValidate(t *testing.T) {
	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())

	cfg := NewConfig()
	cfg.Backend = "bogus"
	assert.Error(t, cfg.Validate())

	cfg = NewConfig()
	cfg.Browse.EventBuffer = -1
	assert.Error(t, cfg.Validate())

	cfg = NewConfig()
	cfg.Log.Level = "loud"
	assert.Error(t, cfg.Validate())

	// 广域后端必须有浏览域
	cfg = NewConfig()
	cfg.Backend = BackendWideArea
	assert.Error(t, cfg.Validate())

	cfg.WideArea.Domains = []string{"dns-sd.example.org."}
	require.NoError(t, cfg.Validate())

	cfg.WideArea.RefreshInterval = 0
	assert.Error(t, cfg.Validate())
}

// TestValidateAndFix 测试自动修复
func TestValidateAndFix(t *testing.T) {
	fixed, err := ValidateAndFix(nil)
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), fixed)

	cfg := NewConfig()
	cfg.Browse.EventBuffer = 0
	cfg.Browse.Domain = ""
	cfg.WideArea.RefreshInterval = 0
	cfg.Log.Level = ""
	fixed, err = ValidateAndFix(cfg)
	require.NoError(t, err)
	assert.Equal(t, 100, fixed.Browse.EventBuffer)
	assert.Equal(t, "local.", fixed.Browse.Domain)
	assert.Equal(t, 60*time.Second, fixed.WideArea.RefreshInterval.Duration())
	assert.Equal(t, "info", fixed.Log.Level)
}

// TestFromJSON 测试 JSON 加载
func TestFromJSON(t *testing.T) {
	data := []byte(`{
		"backend": "widearea",
		"browse": {"domain": "example.org.", "event_buffer": 50},
		"wide_area": {
			"domains": ["dns-sd.example.org."],
			"resolver": "10.0.0.1:53",
			"refresh_interval": "30s",
			"timeout": 2000000000
		},
		"log": {"level": "debug", "file": "/var/log/bonjour.log"}
	}`)

	cfg, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, BackendWideArea, cfg.Backend)
	assert.Equal(t, "example.org.", cfg.Browse.Domain)
	assert.Equal(t, 50, cfg.Browse.EventBuffer)
	assert.Equal(t, []string{"dns-sd.example.org."}, cfg.WideArea.Domains)
	// 字符串和纳秒数两种时长格式
	assert.Equal(t, 30*time.Second, cfg.WideArea.RefreshInterval.Duration())
	assert.Equal(t, 2*time.Second, cfg.WideArea.Timeout.Duration())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/var/log/bonjour.log", cfg.Log.File)

	_, err = FromJSON([]byte("{bad"))
	assert.Error(t, err)
}

// TestFromJSON_Defaults 测试未出现字段保持默认
func TestFromJSON_Defaults(t *testing.T) {
	cfg, err := FromJSON([]byte(`{"backend": "embedded"}`))
	require.NoError(t, err)
	assert.Equal(t, BackendEmbedded, cfg.Backend)
	assert.Equal(t, "local.", cfg.Browse.Domain)
	assert.Equal(t, 100, cfg.Browse.EventBuffer)
}

// TestToJSON_RoundTrip 测试序列化往返
func TestToJSON_RoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.Backend = BackendEmbedded
	cfg.WideArea.Domains = []string{"dns-sd.example.org."}

	data, err := cfg.ToJSON()
	require.NoError(t, err)

	parsed, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, parsed)
}

// TestDuration_Invalid 测试非法时长
func TestDuration_Invalid(t *testing.T) {
	var d Duration
	assert.Error(t, d.UnmarshalJSON([]byte(`"not-a-duration"`)))
	assert.Error(t, d.UnmarshalJSON([]byte(`{}`)))
}
