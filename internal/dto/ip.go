package dto

// ── IP 登记模块 DTO ──

// ClientIPResponse 服务端识别到的客户端信息
type ClientIPResponse struct {
	IP        string `json:"ip"`
	UserAgent string `json:"userAgent"`
}

// IPRegisterResponse IP 登记结果
type IPRegisterResponse struct {
	IP         string `json:"ip"`
	FirstVisit bool   `json:"firstVisit"`
	VisitCount int    `json:"visitCount"`
	IsVerified bool   `json:"isVerified"`
}

// IPStatusResponse IP 登记状态
type IPStatusResponse struct {
	IP         string `json:"ip"`
	Registered bool   `json:"registered"`
	IsVerified bool   `json:"isVerified"`
	VisitCount int    `json:"visitCount"`
	FirstSeen  string `json:"firstSeen,omitempty"`
	LastSeen   string `json:"lastSeen,omitempty"`
}
