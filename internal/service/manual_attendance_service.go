package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/maamriaabderahmene/greve-ensta/internal/dto"
	"github.com/maamriaabderahmene/greve-ensta/internal/model"
	"github.com/maamriaabderahmene/greve-ensta/internal/repository"
	"github.com/maamriaabderahmene/greve-ensta/pkg/metrics"
)

// adminFingerprint 管理员补录记录的设备指纹占位
const adminFingerprint = "admin-added"

// ManualAttendanceService 管理员手动补录业务接口
//
// 管理员为可信操作者：跳过围栏、反作弊、IP 与时段开关检查，
// 不查询也不写入身份台账，允许重复补录。
type ManualAttendanceService interface {
	Add(ctx context.Context, req *dto.ManualAttendanceRequest, actor string) (*dto.CheckInResponse, error)
}

type manualAttendanceService struct {
	repo         *repository.Repository
	calendar     *SessionCalendar
	storeTimeout time.Duration
	metrics      *metrics.Recorder
	logger       *zap.Logger
}

// NewManualAttendanceService 创建 ManualAttendanceService 实例
func NewManualAttendanceService(
	repo *repository.Repository,
	calendar *SessionCalendar,
	storeTimeout time.Duration,
	recorder *metrics.Recorder,
	logger *zap.Logger,
) ManualAttendanceService {
	return &manualAttendanceService{
		repo:         repo,
		calendar:     calendar,
		storeTimeout: storeTimeout,
		metrics:      recorder,
		logger:       logger,
	}
}

// ────────────────────── Add ──────────────────────

func (s *manualAttendanceService) Add(ctx context.Context, req *dto.ManualAttendanceRequest, actor string) (*dto.CheckInResponse, error) {
	start := time.Now()

	email := NormalizeEmail(req.Email)
	if strings.TrimSpace(req.Name) == "" || email == "" ||
		strings.TrimSpace(req.Specialty) == "" || strings.TrimSpace(req.Major) == "" ||
		strings.TrimSpace(req.Date) == "" || req.Session == "" {
		s.metrics.ObserveDecision("manual", "rejected", ReasonMissingFields, time.Since(start))
		return nil, inputRejection(ReasonMissingFields, "所有字段均为必填项")
	}
	if !validText(req.Name, req.Email, req.Specialty, req.Major) {
		s.metrics.ObserveDecision("manual", "rejected", ReasonInvalidInput, time.Since(start))
		return nil, inputRejection(ReasonInvalidInput, "姓名、邮箱、专业或方向包含非法字符")
	}

	session := model.Session(req.Session)
	if !session.Valid() {
		s.metrics.ObserveDecision("manual", "rejected", ReasonInvalidSession, time.Since(start))
		return nil, inputRejection(ReasonInvalidSession, "无效的签到时段")
	}

	day, err := s.parseDay(req.Date)
	if err != nil {
		s.metrics.ObserveDecision("manual", "rejected", ReasonInvalidDate, time.Since(start))
		return nil, inputRejection(ReasonInvalidDate, "日期格式应为 YYYY-MM-DD")
	}

	profile := &model.Student{
		Email:     email,
		Name:      strings.TrimSpace(req.Name),
		Specialty: strings.TrimSpace(req.Specialty),
		Major:     strings.TrimSpace(req.Major),
	}
	record := model.AttendanceRecord{
		Date:              day,
		Session:           session,
		Location:          model.Coordinates{Lat: 0, Lng: 0},
		Verified:          true,
		Distance:          0,
		DeviceFingerprint: adminFingerprint,
		AddedByAdmin:      true,
	}

	err = withStoreTimeout(ctx, s.storeTimeout, func(ctx context.Context) error {
		_, err := s.repo.Student.UpsertAppend(ctx, profile, record)
		return err
	})
	if err != nil {
		s.logger.Error("管理员补录签到失败", zap.String("email", email), zap.Error(err))
		s.metrics.ObserveDecision("manual", "dependency_error", "", time.Since(start))
		return nil, dependencyError("补录签到记录", err)
	}

	s.logger.Info("管理员补录签到",
		zap.String("actor", actor),
		zap.String("email", email),
		zap.String("session", session.String()),
		zap.String("date", day.Format("2006-01-02")),
	)
	s.metrics.ObserveDecision("manual", "accepted", "", time.Since(start))

	return &dto.CheckInResponse{
		Accepted:       true,
		Message:        fmt.Sprintf("已为 %s 补录 %s 的签到", email, SessionLabel(session)),
		Session:        session.String(),
		SessionLabel:   SessionLabel(session),
		DistanceMeters: intPtr(0),
		Verified:       true,
	}, nil
}

// parseDay 接受 YYYY-MM-DD 或 RFC3339，统一为日历时区的当天零点
func (s *manualAttendanceService) parseDay(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	loc := s.calendar.Location()
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return s.calendar.DayOf(t), nil
}
