package model

// Session 签到时段标识
type Session string

const (
	// SessionLegacy 0:00-8:00，不开放签到，仅用于归类无时段标记的历史记录
	SessionLegacy Session = "session0"
	Session1      Session = "session1"
	Session2      Session = "session2"
	Session3      Session = "session3"
	Session4      Session = "session4"
)

// AllSessions 全部时段（含 session0），顺序固定
var AllSessions = []Session{SessionLegacy, Session1, Session2, Session3, Session4}

// Valid 是否为已知时段
func (s Session) Valid() bool {
	for _, v := range AllSessions {
		if s == v {
			return true
		}
	}
	return false
}

func (s Session) String() string { return string(s) }
