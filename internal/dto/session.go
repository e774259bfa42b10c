package dto

// ── 时段模块 DTO ──

// CurrentSessionResponse 当前签到时段
type CurrentSessionResponse struct {
	Active    bool   `json:"active"`
	Session   string `json:"session,omitempty"`
	Label     string `json:"label,omitempty"`
	StartsAt  string `json:"starts_at,omitempty"`
	EndsAt    string `json:"ends_at,omitempty"`
	IsEnabled bool   `json:"is_enabled"`
	ServerNow string `json:"server_now"`
}

// CalendarRequest 日历导出参数
type CalendarRequest struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// SetSessionControlRequest 设置时段开关请求
type SetSessionControlRequest struct {
	Session   string `json:"session"   binding:"required,session_id"`
	IsEnabled *bool  `json:"isEnabled" binding:"required"`
}

// SessionControlResponse 时段开关状态
type SessionControlResponse struct {
	Session   string `json:"session"`
	Label     string `json:"label"`
	IsEnabled bool   `json:"isEnabled"`
	UpdatedBy string `json:"updatedBy,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}
