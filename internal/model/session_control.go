package model

import "time"

// SessionControl 时段开关，对应 session_controls，每个时段一行
type SessionControl struct {
	Session   Session   `gorm:"type:varchar(16);primaryKey"        json:"session"`
	IsEnabled bool      `gorm:"not null"                           json:"is_enabled"`
	UpdatedBy string    `gorm:"type:varchar(255)"                  json:"updated_by,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName 指定表名
func (SessionControl) TableName() string { return "session_controls" }
