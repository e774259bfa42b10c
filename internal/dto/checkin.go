package dto

// ── 签到模块 DTO ──

// BrowserSignal 浏览器侧上报的环境信息与自检结果
type BrowserSignal struct {
	IsPrivate           bool    `json:"isPrivate"`
	UserAgent           string  `json:"userAgent"           binding:"omitempty,max=512"`
	Platform            string  `json:"platform"            binding:"omitempty,max=128"`
	Language            string  `json:"language"            binding:"omitempty,max=64"`
	HardwareConcurrency int     `json:"hardwareConcurrency" binding:"omitempty,min=0"`
	DeviceMemory        float64 `json:"deviceMemory"        binding:"omitempty,min=0"`

	// 存储能力自检（nil 表示未上报）
	StorageQuota         *int64 `json:"storageQuota,omitempty"`
	LocalStorageFailed   bool   `json:"localStorageFailed"`
	SessionStorageFailed bool   `json:"sessionStorageFailed"`
	IndexedDBFailed      bool   `json:"indexedDBFailed"`
	FileSystemAPIMissing bool   `json:"fileSystemAPIMissing"`
	CookiesDisabled      bool   `json:"cookiesDisabled"`

	// 网络与时区自检
	ICECandidateTypes []string `json:"iceCandidateTypes,omitempty" binding:"omitempty,max=16,dive,max=16"`
	Timezone          string   `json:"timezone"                    binding:"omitempty,max=64"`
	UTCOffsetMinutes  int      `json:"utcOffsetMinutes"`
}

// CheckInRequest 学生自助签到请求
// 必填项由签到流水线统一校验，以便返回明确的拒绝原因
type CheckInRequest struct {
	Name              string        `json:"name"              binding:"omitempty,max=100"`
	Email             string        `json:"email"             binding:"omitempty,max=255"`
	Specialty         string        `json:"specialty"         binding:"omitempty,max=50"`
	Major             string        `json:"major"             binding:"omitempty,max=50"`
	Latitude          *float64      `json:"latitude"          binding:"omitempty,min=-90,max=90"`
	Longitude         *float64      `json:"longitude"         binding:"omitempty,min=-180,max=180"`
	DeviceFingerprint string        `json:"deviceFingerprint" binding:"omitempty,max=512"`
	BrowserSignal     BrowserSignal `json:"browserSignal"`
	VPNSuspected      bool          `json:"vpnSuspected"`
}

// CheckInResponse 签到结果，通过与拒绝共用同一结构
type CheckInResponse struct {
	Accepted       bool     `json:"accepted"`
	ReasonCode     string   `json:"reasonCode,omitempty"`
	Message        string   `json:"message"`
	Session        string   `json:"session,omitempty"`
	SessionLabel   string   `json:"sessionLabel,omitempty"`
	DistanceMeters *int     `json:"distanceMeters,omitempty"`
	RadiusMeters   *int     `json:"radiusMeters,omitempty"`
	GeofenceName   string   `json:"geofenceName,omitempty"`
	UsedEmail      string   `json:"usedEmail,omitempty"`
	Indicators     []string `json:"indicators,omitempty"`
	Confidence     string   `json:"confidence,omitempty"`
	Verified       bool     `json:"verified"`
}

// ── 管理员手动补录 ──

// ManualAttendanceRequest 管理员手动补录请求
type ManualAttendanceRequest struct {
	Name      string `json:"name"      binding:"required,max=100"`
	Email     string `json:"email"     binding:"required,email,max=255"`
	Specialty string `json:"specialty" binding:"required,max=50"`
	Major     string `json:"major"     binding:"required,max=50"`
	Date      string `json:"date"      binding:"required"` // YYYY-MM-DD 或 RFC3339
	Session   string `json:"session"   binding:"required,session_id"`
}

// ── 反作弊检测 ──

// PrivateCheckResponse 服务端无痕模式检测结果
type PrivateCheckResponse struct {
	IsPrivate  bool     `json:"isPrivate"`
	Indicators []string `json:"indicators"`
	Confidence string   `json:"confidence"`
}
