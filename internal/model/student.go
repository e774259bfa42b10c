package model

import (
	"time"

	"gorm.io/datatypes"
)

// Coordinates 经纬度
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AttendanceRecord 内嵌签到记录，追加后不再修改
type AttendanceRecord struct {
	Date              time.Time   `json:"date"`
	Session           Session     `json:"session,omitempty"`
	Location          Coordinates `json:"location"`
	Verified          bool        `json:"verified"`
	Distance          int         `json:"distance"`
	DeviceFingerprint string      `json:"device_fingerprint,omitempty"`
	AddedByAdmin      bool        `json:"added_by_admin"`
}

// EffectiveSession 历史记录无时段标记时归入 session0
func (r AttendanceRecord) EffectiveSession() Session {
	if r.Session == "" {
		return SessionLegacy
	}
	return r.Session
}

// Student 学生表，对应 students，以规范化邮箱唯一标识
type Student struct {
	StudentID         string                              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	Email             string                              `gorm:"type:varchar(255);uniqueIndex;not null"         json:"email"`
	Name              string                              `gorm:"type:varchar(100);not null"                     json:"name"`
	Specialty         string                              `gorm:"type:varchar(50);not null"                      json:"specialty"`
	Major             string                              `gorm:"type:varchar(50);not null"                      json:"major"`
	AttendanceRecords datatypes.JSONSlice[AttendanceRecord] `gorm:"type:jsonb;not null;default:'[]'"               json:"attendance_records"`
	Timestamps
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// HasRecordFor 是否已有同一天同一时段的记录（按 loc 时区比较日期）
func (s *Student) HasRecordFor(session Session, day time.Time, loc *time.Location) bool {
	y, m, d := day.In(loc).Date()
	for _, r := range s.AttendanceRecords {
		ry, rm, rd := r.Date.In(loc).Date()
		if ry == y && rm == m && rd == d && r.EffectiveSession() == session {
			return true
		}
	}
	return false
}
