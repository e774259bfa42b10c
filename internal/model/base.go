package model

import (
	"time"

	"gorm.io/gorm"
)

// Timestamps 创建与更新时间
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// AdminAudit 由管理员维护的数据：记录操作人并支持软删除
type AdminAudit struct {
	Timestamps
	CreatedBy *string        `gorm:"type:uuid"  json:"created_by,omitempty"`
	UpdatedBy *string        `gorm:"type:uuid"  json:"updated_by,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index"      json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:uuid"  json:"deleted_by,omitempty"`
}
