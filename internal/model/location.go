package model

// AttendanceLocation 签到地点（圆形地理围栏），对应 attendance_locations
type AttendanceLocation struct {
	LocationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"location_id"`
	Name       string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Latitude   float64 `gorm:"not null"                                       json:"latitude"`
	Longitude  float64 `gorm:"not null"                                       json:"longitude"`
	Radius     int     `gorm:"not null;default:100"                           json:"radius"` // 米，[10,1000]
	IsActive   bool    `gorm:"not null;index"                                 json:"is_active"`
	AdminAudit
}

// TableName 指定表名
func (AttendanceLocation) TableName() string { return "attendance_locations" }

const (
	MinRadiusMeters     = 10
	MaxRadiusMeters     = 1000
	DefaultRadiusMeters = 100
)
