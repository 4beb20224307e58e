package bonjour

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-bonjour/config"
	pkgif "github.com/dep2p/go-bonjour/pkg/interfaces"
	"github.com/dep2p/go-bonjour/pkg/types"
)

// TestOptions_Apply 测试选项应用
func TestOptions_Apply(t *testing.T) {
	o := defaultOptions()
	require.NoError(t, o.apply(
		WithEmbeddedBackend(),
		WithDomain("example.org."),
		WithEventBuffer(42),
	))
	assert.Equal(t, config.BackendEmbedded, o.config.Backend)
	assert.Equal(t, "example.org.", o.config.Browse.Domain)
	assert.Equal(t, 42, o.config.Browse.EventBuffer)
}

// TestOptions_Invalid 测试非法选项
func TestOptions_Invalid(t *testing.T) {
	assert.ErrorIs(t, defaultOptions().apply(WithBackend("bogus")), ErrUnknownBackend)
	assert.Error(t, defaultOptions().apply(WithDomain("")))
	assert.Error(t, defaultOptions().apply(WithEventBuffer(-1)))
	assert.Error(t, defaultOptions().apply(WithConfig(nil)))
	assert.Error(t, defaultOptions().apply(WithWideAreaDomains()))
	assert.Error(t, defaultOptions().apply(WithRefreshInterval(0)))
}

// TestOptions_WideArea 测试广域选项切换后端
func TestOptions_WideArea(t *testing.T) {
	o := defaultOptions()
	require.NoError(t, o.apply(
		WithWideAreaDomains("dns-sd.example.org."),
		WithWideAreaResolver("10.0.0.1:53"),
		WithRefreshInterval(30*time.Second),
	))
	assert.Equal(t, config.BackendWideArea, o.config.Backend)
	assert.Equal(t, []string{"dns-sd.example.org."}, o.config.WideArea.Domains)
	assert.Equal(t, "10.0.0.1:53", o.config.WideArea.Resolver)
	assert.Equal(t, 30*time.Second, o.config.WideArea.RefreshInterval.Duration())
}

// TestOptions_WithConfig 测试整体配置叠加
func TestOptions_WithConfig(t *testing.T) {
	base := config.NewConfig()
	base.Browse.EventBuffer = 7

	o := defaultOptions()
	require.NoError(t, o.apply(WithConfig(base), WithDomain("example.org.")))
	assert.Equal(t, 7, o.config.Browse.EventBuffer)
	assert.Equal(t, "example.org.", o.config.Browse.Domain)
}

// TestResolveBackendKind 测试后端解析
func TestResolveBackendKind(t *testing.T) {
	// 显式选择不被改写
	cfg := config.NewConfig()
	cfg.Backend = config.BackendEmbedded
	assert.Equal(t, config.BackendEmbedded, resolveBackendKind(cfg))

	cfg.Backend = config.BackendWideArea
	assert.Equal(t, config.BackendWideArea, resolveBackendKind(cfg))

	// auto 解析为具体后端，结果取决于守护进程是否可达
	cfg.Backend = config.BackendAuto
	kind := resolveBackendKind(cfg)
	assert.Contains(t, []config.BackendKind{config.BackendPlatform, config.BackendEmbedded}, kind)
}

// TestNew_Embedded 测试内嵌后端装配
func TestNew_Embedded(t *testing.T) {
	b, err := New(WithEmbeddedBackend())
	require.NoError(t, err)

	assert.Equal(t, config.BackendEmbedded, b.Kind())
	assert.True(t, b.Stats().Running)

	require.NoError(t, b.Close())
	// 幂等
	require.NoError(t, b.Close())

	ctx := context.Background()
	_, err = b.Browse(ctx, "_http._tcp")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = b.Register(ctx, types.Service{Service: "_http._tcp", Port: 80})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = b.Lookup(ctx, "x", "_http._tcp")
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, b.Stats().Running)
}

// TestNew_InvalidConfig 测试配置验证前置
func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Backend = config.BackendWideArea // 缺少浏览域
	_, err := New(WithConfig(cfg))
	assert.Error(t, err)
}

// fakeRegistration 测试用注册句柄
type fakeRegistration struct {
	svc     types.Service
	cancels int
	err     error
}

func (f *fakeRegistration) Service() types.Service { return f.svc }
func (f *fakeRegistration) Cancel() error {
	f.cancels++
	return f.err
}

// TestTrackedRegistration 测试注册跟踪
func TestTrackedRegistration(t *testing.T) {
	owner := &Bonjour{regs: make(map[int64]pkgif.Registration)}
	inner := &fakeRegistration{svc: types.Service{Instance: "a"}, err: errors.New("boom")}

	owner.regs[1] = inner
	reg := &trackedRegistration{owner: owner, id: 1, inner: inner}

	assert.Equal(t, "a", reg.Service().Instance)

	// 首次撤销：调用内层并移出跟踪表
	assert.EqualError(t, reg.Cancel(), "boom")
	assert.Equal(t, 1, inner.cancels)
	assert.Empty(t, owner.regs)

	// 幂等：返回同一错误，不重复调用内层
	assert.EqualError(t, reg.Cancel(), "boom")
	assert.Equal(t, 1, inner.cancels)
}

// TestVersionInfo 测试版本信息
func TestVersionInfo(t *testing.T) {
	assert.Contains(t, VersionInfo(), Version)
}
