package dto

// ── 学生模块 DTO ──

// StudentListRequest 学生列表查询参数
type StudentListRequest struct {
	PaginationRequest
}

// AttendanceRecordResponse 签到记录
type AttendanceRecordResponse struct {
	Date              string  `json:"date"`
	Session           string  `json:"session"`
	SessionLabel      string  `json:"session_label"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	Verified          bool    `json:"verified"`
	Distance          int     `json:"distance"`
	DeviceFingerprint string  `json:"device_fingerprint,omitempty"`
	AddedByAdmin      bool    `json:"added_by_admin"`
}

// StudentResponse 学生信息
type StudentResponse struct {
	ID              string                     `json:"id"`
	Email           string                     `json:"email"`
	Name            string                     `json:"name"`
	Specialty       string                     `json:"specialty"`
	Major           string                     `json:"major"`
	AttendanceCount int                        `json:"attendance_count"`
	Records         []AttendanceRecordResponse `json:"records,omitempty"`
	CreatedAt       string                     `json:"created_at"`
	UpdatedAt       string                     `json:"updated_at"`
}
