package model

import "time"

// IPRegistration IP 登记表，对应 ip_registrations
// 首次出现即标记为已验证，仅用于在场追踪
type IPRegistration struct {
	IPAddress  string    `gorm:"type:varchar(64);primaryKey"        json:"ip_address"`
	FirstSeen  time.Time `gorm:"not null"                           json:"first_seen"`
	LastSeen   time.Time `gorm:"not null"                           json:"last_seen"`
	VisitCount int       `gorm:"not null;default:1"                 json:"visit_count"`
	IsVerified bool      `gorm:"not null;default:true"              json:"is_verified"`
	UserAgent  string    `gorm:"type:text"                          json:"user_agent,omitempty"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName 指定表名
func (IPRegistration) TableName() string { return "ip_registrations" }
