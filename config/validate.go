package config

import (
	"errors"
	"fmt"
)

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	switch c.Backend {
	case BackendAuto, BackendPlatform, BackendEmbedded, BackendWideArea:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	if c.Browse.EventBuffer < 0 {
		return errors.New("browse: event buffer must not be negative")
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log: unknown level %q", c.Log.Level)
	}

	if c.Backend == BackendWideArea {
		if len(c.WideArea.Domains) == 0 {
			return errors.New("wide_area: at least one domain is required")
		}
		if c.WideArea.RefreshInterval.Duration() <= 0 {
			return errors.New("wide_area: refresh interval must be positive")
		}
		if c.WideArea.Timeout.Duration() <= 0 {
			return errors.New("wide_area: timeout must be positive")
		}
	}

	return nil
}

// ValidateAndFix 验证配置并尝试自动修复常见问题
//
// 可修复的问题：
//   - 事件缓冲为零或负值 -> 使用默认值
//   - 广域刷新间隔/超时非法 -> 使用默认值
//   - 日志级别为空 -> 使用默认级别
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	def := NewConfig()

	if c.Browse.EventBuffer <= 0 {
		c.Browse.EventBuffer = def.Browse.EventBuffer
	}
	if c.Browse.Domain == "" {
		c.Browse.Domain = def.Browse.Domain
	}
	if c.WideArea.RefreshInterval.Duration() <= 0 {
		c.WideArea.RefreshInterval = def.WideArea.RefreshInterval
	}
	if c.WideArea.Timeout.Duration() <= 0 {
		c.WideArea.Timeout = def.WideArea.Timeout
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
