package model

import "time"

// Admin 管理员，对应 admins
type Admin struct {
	AdminID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"admin_id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"         json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null"                     json:"-"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (Admin) TableName() string { return "admins" }
