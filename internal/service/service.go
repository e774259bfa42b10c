package service

import (
	"go.uber.org/zap"

	"github.com/maamriaabderahmene/greve-ensta/config"
	"github.com/maamriaabderahmene/greve-ensta/internal/repository"
	"github.com/maamriaabderahmene/greve-ensta/pkg/jwt"
	"github.com/maamriaabderahmene/greve-ensta/pkg/metrics"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth             AuthService
	CheckIn          CheckInService
	ManualAttendance ManualAttendanceService
	SessionGate      SessionGateService
	Session          SessionService
	IPRegistration   IPRegistrationService
	AntiFraud        AntiFraudService
	Location         LocationService
	Student          StudentService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	recorder *metrics.Recorder,
	logger *zap.Logger,
) (*Service, error) {
	loc, err := cfg.Attendance.Location()
	if err != nil {
		return nil, err
	}
	calendar := NewSessionCalendar(loc)

	gate := NewSessionGateService(repo, SessionGatePolicy{
		FailOpen:          cfg.SessionGate.FailOpen,
		MaterializeOnRead: cfg.SessionGate.MaterializeOnRead,
		StoreTimeout:      cfg.Attendance.StoreTimeout,
	}, recorder, logger)

	admission := AdmissionPolicy{
		PrivateThreshold:  cfg.AntiFraud.PrivateThreshold,
		BlockConfidence:   Confidence(cfg.AntiFraud.PrivateBlockConfidence),
		StorageQuotaBytes: cfg.AntiFraud.StorageQuotaBytes,
		StoreTimeout:      cfg.Attendance.StoreTimeout,
	}

	return &Service{
		Auth:             NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		CheckIn:          NewCheckInService(repo, calendar, gate, admission, recorder, logger),
		ManualAttendance: NewManualAttendanceService(repo, calendar, cfg.Attendance.StoreTimeout, recorder, logger),
		SessionGate:      gate,
		Session:          NewSessionService(calendar, gate, logger),
		IPRegistration:   NewIPRegistrationService(repo, cfg.Attendance.StoreTimeout, logger),
		AntiFraud:        NewAntiFraudService(cfg.AntiFraud.PrivateThreshold),
		Location:         NewLocationService(repo, logger),
		Student:          NewStudentService(repo, logger),
	}, nil
}
