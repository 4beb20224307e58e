package avahi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/holoplot/go-avahi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-bonjour/config"
	"github.com/dep2p/go-bonjour/pkg/types"
)

// TestConfig_Default 测试默认配置
func TestConfig_Default(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "local.", cfg.Domain)
	assert.Equal(t, DefaultEventBuffer, cfg.EventBuffer)
	assert.Equal(t, DefaultResolveTimeout, cfg.ResolveTimeout)
}

// TestConfig_Validate 测试配置验证
func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EventBuffer = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.ResolveTimeout = 0
	assert.Error(t, cfg.Validate())

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}

// TestConfig_Options 测试配置选项
func TestConfig_Options(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyOptions(
		WithDomain("example.org."),
		WithEventBuffer(7),
		WithResolveTimeout(time.Second),
	)
	assert.Equal(t, "example.org.", cfg.Domain)
	assert.Equal(t, 7, cfg.EventBuffer)
	assert.Equal(t, time.Second, cfg.ResolveTimeout)
}

// TestConfigFromUnified 测试从统一配置转换
func TestConfigFromUnified(t *testing.T) {
	assert.Equal(t, DefaultConfig(), ConfigFromUnified(nil))

	unified := config.NewConfig()
	unified.Browse.Domain = "example.org."
	unified.Browse.EventBuffer = 42
	cfg := ConfigFromUnified(unified)
	assert.Equal(t, "example.org.", cfg.Domain)
	assert.Equal(t, 42, cfg.EventBuffer)
}

// TestAvahiDomain 测试域名形式转换
func TestAvahiDomain(t *testing.T) {
	assert.Equal(t, "local", avahiDomain("local."))
	assert.Equal(t, "local", avahiDomain(""))
	assert.Equal(t, "example.org", avahiDomain("example.org"))
}

// TestToService 测试解析结果转换
func TestToService(t *testing.T) {
	svc := toService(avahi.Service{
		Name:    "My Printer",
		Type:    "_ipp._tcp",
		Domain:  "local",
		Host:    "printer.local",
		Port:    631,
		Address: "192.168.1.10",
		Txt:     [][]byte{[]byte("txtvers=1"), []byte("rp=ipp/print")},
	})
	assert.Equal(t, "My Printer", svc.Instance)
	assert.Equal(t, "_ipp._tcp", svc.Service)
	assert.Equal(t, "local.", svc.Domain)
	assert.Equal(t, "printer.local", svc.Host)
	assert.Equal(t, 631, svc.Port)
	assert.Equal(t, "1", svc.Text["txtvers"])
	assert.Equal(t, "ipp/print", svc.Text["rp"])
	assert.Len(t, svc.AddrIPv4, 1)
	assert.False(t, svc.DiscoveredAt.IsZero())
}

// TestToUnresolvedService 测试未解析条目转换
func TestToUnresolvedService(t *testing.T) {
	svc := toUnresolvedService(avahi.Service{
		Name:   "svc1",
		Type:   "_http._tcp",
		Domain: "local",
	})
	assert.Equal(t, "svc1", svc.Instance)
	assert.Equal(t, "_http._tcp", svc.Service)
	assert.Equal(t, "local.", svc.Domain)
	assert.False(t, svc.HasAddrs())
}

// TestTxtRoundTrip 测试 TXT 字节串转换
func TestTxtRoundTrip(t *testing.T) {
	in := []string{"k=v", "flag"}
	assert.Equal(t, in, txtStrings(txtBytes(in)))
	assert.Empty(t, txtStrings(nil))
}

// TestBrowseKey 测试去重键聚合
func TestBrowseKey(t *testing.T) {
	a := avahi.Service{Name: "svc1", Type: "_http._tcp", Domain: "local", Interface: 2, Protocol: 0}
	b := avahi.Service{Name: "svc1", Type: "_http._tcp", Domain: "local", Interface: 3, Protocol: 1}
	// 不同网卡/协议组合聚合为同一个键
	assert.Equal(t, browseKey(a), browseKey(b))

	c := avahi.Service{Name: "svc2", Type: "_http._tcp", Domain: "local"}
	assert.NotEqual(t, browseKey(a), browseKey(c))
}

// TestBackend_InvalidInput 测试非法输入
func TestBackend_InvalidInput(t *testing.T) {
	b, err := New()
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()

	_, err = b.Browse(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidService)

	_, err = b.Register(ctx, types.Service{Service: "", Port: 80})
	assert.ErrorIs(t, err, ErrInvalidService)

	_, err = b.Register(ctx, types.Service{Service: "_http._tcp", Port: 0})
	assert.ErrorIs(t, err, types.ErrInvalidPort)

	_, err = b.Lookup(ctx, "x", "", "")
	assert.ErrorIs(t, err, ErrInvalidService)
}

// TestDaemonError 测试守护进程不可达错误的标记
func TestDaemonError(t *testing.T) {
	cause := errors.New("dial unix /run/dbus/system_bus_socket: no such file")
	err := daemonError(cause, "连接系统总线失败")
	assert.ErrorIs(t, err, ErrDaemonUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "连接系统总线失败")
}

// TestBackend_DaemonUnavailable 守护进程不可达时操作返回标记错误
func TestBackend_DaemonUnavailable(t *testing.T) {
	b, err := New()
	require.NoError(t, err)
	defer b.Close()

	if _, aerr := b.handle.Acquire(); aerr == nil {
		_ = b.handle.Release()
		t.Skip("本机 Avahi 守护进程可达")
	}

	_, err = b.Browse(context.Background(), "_http._tcp", "")
	assert.ErrorIs(t, err, ErrDaemonUnavailable)

	_, err = b.Register(context.Background(), types.Service{Service: "_http._tcp", Port: 80})
	assert.ErrorIs(t, err, ErrDaemonUnavailable)

	_, err = b.Lookup(context.Background(), "x", "_http._tcp", "")
	assert.ErrorIs(t, err, ErrDaemonUnavailable)
}

// TestBackend_Closed 测试关闭后的行为
func TestBackend_Closed(t *testing.T) {
	b, err := New()
	require.NoError(t, err)

	require.NoError(t, b.Close())
	// 幂等
	require.NoError(t, b.Close())

	assert.False(t, b.Available())
	assert.False(t, b.Stats().Running)

	ctx := context.Background()
	_, err = b.Browse(ctx, "_http._tcp", "")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = b.Register(ctx, types.Service{Service: "_http._tcp", Port: 80})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = b.Lookup(ctx, "x", "_http._tcp", "")
	assert.ErrorIs(t, err, ErrClosed)
}

// TestBackend_BrowseAndRegister 测试真实守护进程交互
func TestBackend_BrowseAndRegister(t *testing.T) {
	t.Skip("需要 Avahi 守护进程")

	b, err := New()
	require.NoError(t, err)
	defer b.Close()

	if !b.Available() {
		t.Skip("守护进程不可达")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reg, err := b.Register(ctx, types.Service{
		Instance: "test-instance",
		Service:  "_bonjourtest._tcp",
		Port:     12345,
	})
	require.NoError(t, err)
	defer reg.Cancel()

	events, err := b.Browse(ctx, "_bonjourtest._tcp", "")
	require.NoError(t, err)
	for ev := range events {
		if ev.Type == types.EventAdded && ev.Service.Instance == "test-instance" {
			return
		}
	}
	t.Fatal("未发现注册的服务")
}
