package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/maamriaabderahmene/greve-ensta/pkg/jwt"
	"github.com/maamriaabderahmene/greve-ensta/pkg/response"
)

// MustGetAdminID 从 Gin 上下文中安全提取 admin_id。
// 如果 JWT 中间件未正确注入 admin_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetAdminID(c *gin.Context) (string, bool) {
	return mustGetString(c, "admin_id")
}

// MustGetAdminEmail 从 Gin 上下文中安全提取 admin_email，用作操作人标识。
func MustGetAdminEmail(c *gin.Context) (string, bool) {
	return mustGetString(c, "admin_email")
}

// MustGetClaims 从 Gin 上下文中提取完整 JWT 声明。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}
