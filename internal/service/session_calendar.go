package service

import (
	"time"

	"github.com/maamriaabderahmene/greve-ensta/internal/model"
)

// SessionWindow 签到时段窗口，[Start, End) 为左闭右开的小数小时（9:30 = 9.5）
type SessionWindow struct {
	Session model.Session
	Start   float64
	End     float64
	Label   string
}

// sessionWindows session1..session4 连续覆盖 [8:00, 24:00)
var sessionWindows = []SessionWindow{
	{Session: model.Session1, Start: 8, End: 9.5, Label: "8:00 AM - 9:30 AM"},
	{Session: model.Session2, Start: 9.5, End: 11, Label: "9:30 AM - 11:00 AM"},
	{Session: model.Session3, Start: 11, End: 12.5, Label: "11:00 AM - 12:30 PM"},
	{Session: model.Session4, Start: 12.5, End: 24, Label: "12:30 PM - End of Day"},
}

// legacyWindow session0 仅用于标注，不参与实时判定
var legacyWindow = SessionWindow{Session: model.SessionLegacy, Start: 0, End: 8, Label: "12:00 AM - 8:00 AM"}

// SessionCalendar 将墙上时间映射为签到时段，除时区外无状态
type SessionCalendar struct {
	loc *time.Location
}

// NewSessionCalendar 创建日历，loc 为 nil 时使用服务器本地时区
func NewSessionCalendar(loc *time.Location) *SessionCalendar {
	if loc == nil {
		loc = time.Local
	}
	return &SessionCalendar{loc: loc}
}

// Location 日历所用时区
func (c *SessionCalendar) Location() *time.Location { return c.loc }

// SessionFor 返回 now 所在的签到时段；不在任何时段内（8:00 之前）返回 false
func (c *SessionCalendar) SessionFor(now time.Time) (model.Session, bool) {
	h := fractionalHour(now.In(c.loc))
	for _, w := range sessionWindows {
		if h >= w.Start && h < w.End {
			return w.Session, true
		}
	}
	return "", false
}

// WithinAttendanceHours 当前是否处于任一签到时段
func (c *SessionCalendar) WithinAttendanceHours(now time.Time) bool {
	_, ok := c.SessionFor(now)
	return ok
}

// DayOf 返回 t 在日历时区下的当天零点
func (c *SessionCalendar) DayOf(t time.Time) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
}

// Bounds 返回时段在 day 当天的起止时刻
func (c *SessionCalendar) Bounds(day time.Time, w SessionWindow) (time.Time, time.Time) {
	midnight := c.DayOf(day)
	return midnight.Add(hoursToDuration(w.Start)), midnight.Add(hoursToDuration(w.End))
}

// Windows 返回 session1..session4 的窗口定义
func (c *SessionCalendar) Windows() []SessionWindow {
	out := make([]SessionWindow, len(sessionWindows))
	copy(out, sessionWindows)
	return out
}

// WindowOf 查找时段定义，session0 返回其标注窗口
func WindowOf(s model.Session) (SessionWindow, bool) {
	if s == model.SessionLegacy {
		return legacyWindow, true
	}
	for _, w := range sessionWindows {
		if w.Session == s {
			return w, true
		}
	}
	return SessionWindow{}, false
}

// SessionLabel 时段的展示文案
func SessionLabel(s model.Session) string {
	if w, ok := WindowOf(s); ok {
		return w.Label
	}
	return string(s)
}

func fractionalHour(t time.Time) float64 {
	return float64(t.Hour()) +
		float64(t.Minute())/60 +
		float64(t.Second())/3600 +
		float64(t.Nanosecond())/3.6e12
}

func hoursToDuration(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
