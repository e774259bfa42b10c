package dto

// ── 签到地点模块 DTO ──

// CreateLocationRequest 创建签到地点请求
type CreateLocationRequest struct {
	Name      string   `json:"name"      binding:"required,min=2,max=100"`
	Latitude  *float64 `json:"latitude"  binding:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"required,min=-180,max=180"`
	Radius    int      `json:"radius"    binding:"omitempty,min=10,max=1000"` // 缺省 100 米
	IsActive  *bool    `json:"is_active"`
}

// UpdateLocationRequest 更新签到地点请求
type UpdateLocationRequest struct {
	Name      *string  `json:"name"      binding:"omitempty,min=2,max=100"`
	Latitude  *float64 `json:"latitude"  binding:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	Radius    *int     `json:"radius"    binding:"omitempty,min=10,max=1000"`
	IsActive  *bool    `json:"is_active"`
}

// LocationListRequest 签到地点列表查询参数
type LocationListRequest struct {
	IncludeInactive bool `form:"include_inactive"`
}

// LocationResponse 签到地点响应
type LocationResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    int     `json:"radius"`
	IsActive  bool    `json:"is_active"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}
