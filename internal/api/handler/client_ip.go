package handler

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const loopbackIPv4 = "127.0.0.1"

// ClientIPResolver 按代理头顺序识别客户端 IP
type ClientIPResolver struct {
	headers     []string
	devFallback bool
}

// NewClientIPResolver 创建 ClientIPResolver
// devFallback 为 true 时无法识别的请求回退到 127.0.0.1
func NewClientIPResolver(headers []string, devFallback bool) *ClientIPResolver {
	return &ClientIPResolver{headers: headers, devFallback: devFallback}
}

// Resolve 返回客户端 IP，无法识别时返回空串
func (r *ClientIPResolver) Resolve(c *gin.Context) string {
	for _, h := range r.headers {
		v := c.GetHeader(h)
		if v == "" {
			continue
		}
		// X-Forwarded-For 取第一跳
		if i := strings.IndexByte(v, ','); i >= 0 {
			v = v[:i]
		}
		if ip := normalizeIP(v); ip != "" {
			return ip
		}
	}

	if ip := normalizeIP(c.Request.RemoteAddr); ip != "" {
		return ip
	}
	if r.devFallback {
		return loopbackIPv4
	}
	return ""
}

// normalizeIP 去掉端口，回环地址统一为 127.0.0.1，IPv4 映射地址还原为 IPv4
func normalizeIP(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "unknown") {
		return ""
	}
	if host, _, err := net.SplitHostPort(raw); err == nil {
		raw = host
	}

	ip := net.ParseIP(raw)
	if ip == nil {
		return ""
	}
	if ip.IsLoopback() {
		return loopbackIPv4
	}
	if v4 := ip.To4(); v4 != nil {
		return v4.String()
	}
	return ip.String()
}
