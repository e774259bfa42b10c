package dto

// ── 认证模块 DTO ──

// LoginRequest 管理员登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse 登录成功响应
type TokenResponse struct {
	AccessToken string        `json:"access_token"`
	ExpiresIn   int           `json:"expires_in"` // 秒
	Admin       AdminResponse `json:"admin"`
}

// AdminResponse 管理员信息
type AdminResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
