package model

import "time"

// LedgerEntry 身份去重台账，对应 identity_ledger
// 每次通过的签到写一行；(ip, 设备, 时段, 日) 与 (邮箱, 时段, 日) 均为唯一键
type LedgerEntry struct {
	EntryID           string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"                json:"entry_id"`
	IPAddress         string    `gorm:"type:varchar(64);not null;uniqueIndex:uk_ledger_device_session_day,priority:1"  json:"ip_address"`
	DeviceFingerprint string    `gorm:"type:varchar(512);not null;uniqueIndex:uk_ledger_device_session_day,priority:2" json:"device_fingerprint"`
	Session           Session   `gorm:"type:varchar(16);not null;uniqueIndex:uk_ledger_device_session_day,priority:3;uniqueIndex:uk_ledger_email_session_day,priority:2" json:"session"`
	Day               time.Time `gorm:"type:date;not null;uniqueIndex:uk_ledger_device_session_day,priority:4;uniqueIndex:uk_ledger_email_session_day,priority:3"        json:"day"`
	Email             string    `gorm:"type:varchar(255);not null;uniqueIndex:uk_ledger_email_session_day,priority:1" json:"email"`
	CreatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                              json:"created_at"`
}

// TableName 指定表名
func (LedgerEntry) TableName() string { return "identity_ledger" }
