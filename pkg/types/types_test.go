package types

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNormalizeDomain 测试域名规范化
func TestNormalizeDomain(t *testing.T) {
	assert.Equal(t, "local.", NormalizeDomain(""))
	assert.Equal(t, "local.", NormalizeDomain("local"))
	assert.Equal(t, "local.", NormalizeDomain("local."))
	assert.Equal(t, "example.org.", NormalizeDomain("example.org"))
	// 幂等
	assert.Equal(t, NormalizeDomain("example.org."), NormalizeDomain(NormalizeDomain("example.org.")))
}

// TestNormalizeService 测试服务类型规范化
func TestNormalizeService(t *testing.T) {
	assert.Equal(t, "_http._tcp", NormalizeService("_http._tcp"))
	assert.Equal(t, "_http._tcp", NormalizeService("_http._tcp."))
	// 误带的域名后缀被剥掉
	assert.Equal(t, "_http._tcp", NormalizeService("_http._tcp.local."))
	assert.Equal(t, "_http._tcp", NormalizeService("_http._tcp.LOCAL"))
	// 幂等
	assert.Equal(t, NormalizeService("_http._tcp.local."), NormalizeService(NormalizeService("_http._tcp.local.")))
}

// TestService_Fullname 测试完整服务名
func TestService_Fullname(t *testing.T) {
	svc := Service{Instance: "My Printer", Service: "_ipp._tcp.local.", Domain: ""}
	assert.Equal(t, "My Printer._ipp._tcp.local.", svc.Fullname())
}

// TestService_Addrs 测试地址归类
func TestService_Addrs(t *testing.T) {
	var svc Service
	assert.False(t, svc.HasAddrs())
	assert.Empty(t, svc.Addrs())

	svc.AddAddress(nil)
	assert.False(t, svc.HasAddrs())

	svc.AddAddress(net.ParseIP("192.168.1.10"))
	svc.AddAddress(net.ParseIP("fe80::1"))
	require.True(t, svc.HasAddrs())
	assert.Len(t, svc.AddrIPv4, 1)
	assert.Len(t, svc.AddrIPv6, 1)

	// IPv4 在前
	addrs := svc.Addrs()
	require.Len(t, addrs, 2)
	assert.NotNil(t, addrs[0].To4())
}

// TestServiceBuilder 测试服务构建器
func TestServiceBuilder(t *testing.T) {
	svc, err := NewServiceBuilder("My Web App", "_http._tcp.local.").
		Domain("local").
		Host("web.local.").
		Port(8080).
		AddAddress(net.ParseIP("192.168.1.10")).
		SetText("path", "/").
		SetText("v", "1").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "My Web App", svc.Instance)
	assert.Equal(t, "_http._tcp", svc.Service)
	assert.Equal(t, "local.", svc.Domain)
	assert.Equal(t, "web.local.", svc.Host)
	assert.Equal(t, 8080, svc.Port)
	assert.Equal(t, "/", svc.Text["path"])
	assert.Len(t, svc.AddrIPv4, 1)
}

// TestServiceBuilder_Invalid 测试构建器校验
func TestServiceBuilder_Invalid(t *testing.T) {
	_, err := NewServiceBuilder("", "_http._tcp").Port(80).Build()
	assert.ErrorIs(t, err, ErrEmptyInstance)

	_, err = NewServiceBuilder("x", "").Port(80).Build()
	assert.ErrorIs(t, err, ErrEmptyService)

	_, err = NewServiceBuilder("x", "_http._tcp").Port(0).Build()
	assert.ErrorIs(t, err, ErrInvalidPort)

	_, err = NewServiceBuilder("x", "_http._tcp").Port(70000).Build()
	assert.ErrorIs(t, err, ErrInvalidPort)
}

// TestServiceBuilder_Copy 测试构建结果与构建器解耦
func TestServiceBuilder_Copy(t *testing.T) {
	b := NewServiceBuilder("x", "_http._tcp").Port(80).SetText("k", "v")
	svc, err := b.Build()
	require.NoError(t, err)

	// 继续改构建器不影响已构建的服务
	b.SetText("k", "changed")
	assert.Equal(t, "v", svc.Text["k"])
}

// TestEventType_String 测试事件类型
func TestEventType_String(t *testing.T) {
	assert.Equal(t, "added", EventAdded.String())
	assert.Equal(t, "removed", EventRemoved.String())
}

// TestTextCodec 测试 TXT 编解码
func TestTextCodec(t *testing.T) {
	in := map[string]string{"path": "/", "v": "1", "flag": ""}
	encoded := EncodeText(in)
	assert.Len(t, encoded, 3)
	// 空值编码为裸键
	assert.Contains(t, encoded, "flag")

	out := DecodeText(encoded)
	assert.Equal(t, in, out)
}

// TestTextCodec_EdgeCases 测试 TXT 边界
func TestTextCodec_EdgeCases(t *testing.T) {
	// 空键被跳过
	assert.Empty(t, EncodeText(map[string]string{"": "v"}))

	// 超长条目被跳过
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	assert.Empty(t, EncodeText(map[string]string{"k": string(long)}))

	// 值里的等号原样保留
	out := DecodeText([]string{"k=a=b"})
	assert.Equal(t, "a=b", out["k"])

	// 后出现的键覆盖先出现的
	out = DecodeText([]string{"k=1", "k=2"})
	assert.Equal(t, "2", out["k"])

	assert.Empty(t, DecodeText(nil))
}
