package handler

import (
	"github.com/maamriaabderahmene/greve-ensta/config"
	"github.com/maamriaabderahmene/greve-ensta/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	CheckIn     *CheckInHandler
	SessionGate *SessionGateHandler
	Session     *SessionHandler
	IP          *IPHandler
	AntiFraud   *AntiFraudHandler
	Location    *LocationHandler
	Student     *StudentHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	ips := NewClientIPResolver(
		cfg.Server.IPHeaders,
		cfg.Server.IsDevelopment() && cfg.Attendance.DevIPFallback,
	)

	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		CheckIn:     NewCheckInHandler(svc.CheckIn, svc.ManualAttendance, ips),
		SessionGate: NewSessionGateHandler(svc.SessionGate),
		Session:     NewSessionHandler(svc.Session),
		IP:          NewIPHandler(svc.IPRegistration, ips),
		AntiFraud:   NewAntiFraudHandler(svc.AntiFraud),
		Location:    NewLocationHandler(svc.Location),
		Student:     NewStudentHandler(svc.Student),
	}
}
