package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/maamriaabderahmene/greve-ensta/internal/dto"
	"github.com/maamriaabderahmene/greve-ensta/internal/model"
	"github.com/maamriaabderahmene/greve-ensta/internal/repository"
	pkgerrors "github.com/maamriaabderahmene/greve-ensta/pkg/errors"
	"github.com/maamriaabderahmene/greve-ensta/pkg/logger"
	"github.com/maamriaabderahmene/greve-ensta/pkg/metrics"
)

// AdmissionPolicy 签到流水线的可调参数
type AdmissionPolicy struct {
	// PrivateThreshold 无痕模式判定所需阳性探针数
	PrivateThreshold int
	// BlockConfidence 为 high 时仅在高置信度下拦截无痕模式
	BlockConfidence Confidence
	// StorageQuotaBytes 浏览器存储配额低于该值视为阳性
	StorageQuotaBytes int64
	// StoreTimeout 单次存储往返超时
	StoreTimeout time.Duration
}

// RequestMeta 传输层提取的请求元数据
type RequestMeta struct {
	ClientIP string // 无法识别时为空
	Headers  RequestHeaders
}

// CheckInService 学生自助签到（准入控制）业务接口
type CheckInService interface {
	CheckIn(ctx context.Context, req *dto.CheckInRequest, meta RequestMeta) (*dto.CheckInResponse, error)
}

type checkInService struct {
	repo     *repository.Repository
	calendar *SessionCalendar
	gate     SessionGateService
	policy   AdmissionPolicy
	metrics  *metrics.Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewCheckInService 创建 CheckInService 实例
func NewCheckInService(
	repo *repository.Repository,
	calendar *SessionCalendar,
	gate SessionGateService,
	policy AdmissionPolicy,
	recorder *metrics.Recorder,
	logger *zap.Logger,
) CheckInService {
	return &checkInService{
		repo:     repo,
		calendar: calendar,
		gate:     gate,
		policy:   policy,
		metrics:  recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// checkIn 单次签到的中间状态
type checkIn struct {
	req     *dto.CheckInRequest
	meta    RequestMeta
	email   string
	point   model.Coordinates
	now     time.Time
	session model.Session
	geo     GeofenceResult
}

// ────────────────────── CheckIn ──────────────────────

// CheckIn 依次执行各项检查，任一步失败即终止；全部通过后写入台账与签到记录
func (s *checkInService) CheckIn(ctx context.Context, req *dto.CheckInRequest, meta RequestMeta) (*dto.CheckInResponse, error) {
	start := time.Now()
	log := logger.FromContext(ctx, s.logger)
	st := &checkIn{req: req, meta: meta, now: s.now()}

	steps := []struct {
		name string
		fn   func(context.Context, *checkIn) error
	}{
		{"validate_input", s.validateInput},
		{"check_hours", s.checkHours},
		{"check_session", s.checkSession},
		{"check_session_gate", s.checkSessionGate},
		{"check_vpn", s.checkVPN},
		{"check_private_browsing", s.checkPrivateBrowsing},
		{"check_ip_registration", s.checkIPRegistration},
		{"check_fingerprint", s.checkFingerprint},
		{"dedup_device", s.dedupDevice},
		{"dedup_email", s.dedupEmail},
		{"check_geofence", s.checkGeofence},
		{"check_own_record", s.checkOwnRecord},
		{"commit", s.commit},
	}

	for _, step := range steps {
		// 调用方断开后放弃剩余步骤，已提交的写入不回滚
		if err := ctx.Err(); err != nil {
			s.metrics.ObserveDecision("checkin", "aborted", step.name, time.Since(start))
			return nil, err
		}
		if err := step.fn(ctx, st); err != nil {
			if rej, ok := AsRejection(err); ok {
				log.Info("签到被拒绝",
					zap.String("step", step.name),
					zap.String("reason", rej.Reason),
					zap.String("session", st.session.String()),
					zap.String("email", st.email),
					zap.String("ip", meta.ClientIP),
				)
				s.metrics.ObserveDecision("checkin", "rejected", rej.Reason, time.Since(start))
				return nil, rej
			}
			outcome := "dependency_error"
			if errors.Is(err, pkgerrors.ErrIntegrity) {
				outcome = "integrity_error"
			}
			s.metrics.ObserveDecision("checkin", outcome, step.name, time.Since(start))
			return nil, err
		}
	}

	s.metrics.ObserveDecision("checkin", "accepted", "", time.Since(start))

	resp := &dto.CheckInResponse{
		Accepted:       true,
		Session:        st.session.String(),
		SessionLabel:   SessionLabel(st.session),
		DistanceMeters: intPtr(st.geo.DistanceMeters),
		Verified:       true,
	}
	if st.geo.Nearest != nil {
		resp.GeofenceName = st.geo.Nearest.Name
	}
	resp.Message = fmt.Sprintf("签到成功！距离 %s %d 米", resp.GeofenceName, st.geo.DistanceMeters)

	log.Info("签到成功",
		zap.String("email", st.email),
		zap.String("session", st.session.String()),
		zap.Int("distance", st.geo.DistanceMeters),
		zap.String("location", resp.GeofenceName),
	)
	return resp, nil
}

// ── 各步骤 ──

func (s *checkInService) validateInput(_ context.Context, st *checkIn) error {
	r := st.req
	st.email = NormalizeEmail(r.Email)
	if strings.TrimSpace(r.Name) == "" || st.email == "" ||
		strings.TrimSpace(r.Specialty) == "" || strings.TrimSpace(r.Major) == "" ||
		r.Latitude == nil || r.Longitude == nil {
		return inputRejection(ReasonMissingFields, "姓名、邮箱、专业、方向与定位均为必填项")
	}
	if !validText(r.Name, r.Email, r.Specialty, r.Major, r.DeviceFingerprint) {
		return inputRejection(ReasonInvalidInput, "姓名、邮箱、专业或方向包含非法字符")
	}
	st.point = model.Coordinates{Lat: *r.Latitude, Lng: *r.Longitude}
	return nil
}

func (s *checkInService) checkHours(_ context.Context, st *checkIn) error {
	if !s.calendar.WithinAttendanceHours(st.now) {
		return policyRejection(ReasonOutsideHours, "仅可在签到时段内签到（8:00 AM 起至当天结束）")
	}
	return nil
}

func (s *checkInService) checkSession(_ context.Context, st *checkIn) error {
	session, ok := s.calendar.SessionFor(st.now)
	if !ok {
		return policyRejection(ReasonNoActiveSession, "当前没有进行中的签到时段")
	}
	st.session = session
	return nil
}

func (s *checkInService) checkSessionGate(ctx context.Context, st *checkIn) error {
	var enabled bool
	err := s.withStore(ctx, func(ctx context.Context) error {
		var err error
		enabled, err = s.gate.IsEnabled(ctx, st.session)
		return err
	})
	if err != nil {
		return dependencyError("读取时段开关", err)
	}
	if !enabled {
		return policyRejection(ReasonSessionDisabled, "管理员已关闭本时段的签到")
	}
	return nil
}

func (s *checkInService) checkVPN(_ context.Context, st *checkIn) error {
	sig := st.req.BrowserSignal
	ua := sig.UserAgent
	if ua == "" {
		ua = st.meta.Headers.UserAgent
	}
	verdict := EvaluateVPN(VPNProbes(NetworkReport{
		ICECandidateTypes: sig.ICECandidateTypes,
		Timezone:          sig.Timezone,
		UTCOffsetMinutes:  sig.UTCOffsetMinutes,
		VPNSuspected:      st.req.VPNSuspected,
	}, ua))
	if verdict.Suspected {
		rej := policyRejection(ReasonVPNDetected, "检测到 VPN，请关闭后再签到")
		rej.Indicators = verdict.Indicators
		return rej
	}
	return nil
}

func (s *checkInService) checkPrivateBrowsing(_ context.Context, st *checkIn) error {
	sig := st.req.BrowserSignal

	// 浏览器侧自身的无痕判定直接生效
	if sig.IsPrivate {
		rej := policyRejection(ReasonPrivateBrowsing, "不允许使用无痕/隐私浏览模式，请切换到普通模式")
		rej.Indicators = []string{"client-private-verdict"}
		return rej
	}

	probes := HeaderProbes(st.meta.Headers)
	probes = append(probes, ClientPrivateProbes(ClientStorageReport{
		StorageQuotaBytes:    sig.StorageQuota,
		LocalStorageFailed:   sig.LocalStorageFailed,
		SessionStorageFailed: sig.SessionStorageFailed,
		IndexedDBFailed:      sig.IndexedDBFailed,
		FileSystemAPIMissing: sig.FileSystemAPIMissing,
		CookiesDisabled:      sig.CookiesDisabled,
	}, s.policy.StorageQuotaBytes)...)

	verdict := EvaluatePrivateBrowsing(probes, s.policy.PrivateThreshold)
	if !verdict.Suspected {
		return nil
	}
	if s.policy.BlockConfidence == ConfidenceHigh && verdict.Confidence != ConfidenceHigh {
		return nil
	}

	rej := policyRejection(ReasonPrivateBrowsing, "服务端检测到隐私浏览模式，请切换到普通模式")
	rej.Indicators = verdict.Indicators
	rej.Confidence = string(verdict.Confidence)
	return rej
}

func (s *checkInService) checkIPRegistration(ctx context.Context, st *checkIn) error {
	if st.meta.ClientIP == "" {
		return inputRejection(ReasonIPUnavailable, "无法识别 IP 地址，请关闭隐私浏览后重试")
	}

	var reg *model.IPRegistration
	err := s.withStore(ctx, func(ctx context.Context) error {
		var err error
		reg, err = s.repo.IPRegistration.Get(ctx, st.meta.ClientIP)
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return policyRejection(ReasonIPNotRegistered, "IP 地址未登记，请刷新页面完成登记")
	}
	if err != nil {
		return dependencyError("查询 IP 登记", err)
	}
	if !reg.IsVerified {
		return policyRejection(ReasonIPNotVerified, "IP 地址未通过验证，请联系管理员")
	}
	return nil
}

func (s *checkInService) checkFingerprint(_ context.Context, st *checkIn) error {
	if strings.TrimSpace(st.req.DeviceFingerprint) == "" {
		return inputRejection(ReasonMissingFingerprint, "缺少设备指纹，请刷新页面")
	}
	return nil
}

func (s *checkInService) dedupDevice(ctx context.Context, st *checkIn) error {
	var entry *model.LedgerEntry
	err := s.withStore(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.repo.Ledger.FindByDevice(ctx, st.meta.ClientIP, st.req.DeviceFingerprint, st.session, s.ledgerDay(st.now))
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return dependencyError("查询设备台账", err)
	}

	rej := policyRejection(ReasonDeviceAlreadyUsed,
		fmt.Sprintf("该设备本时段已使用邮箱 %s 签到", entry.Email))
	rej.UsedEmail = entry.Email
	return rej
}

func (s *checkInService) dedupEmail(ctx context.Context, st *checkIn) error {
	var exists bool
	err := s.withStore(ctx, func(ctx context.Context) error {
		var err error
		exists, err = s.repo.Ledger.ExistsByEmail(ctx, st.email, st.session, s.ledgerDay(st.now))
		return err
	})
	if err != nil {
		return dependencyError("查询邮箱台账", err)
	}
	if exists {
		return policyRejection(ReasonEmailAlreadyUsed, "该邮箱本时段已签到")
	}
	return nil
}

func (s *checkInService) checkGeofence(ctx context.Context, st *checkIn) error {
	var fences []model.AttendanceLocation
	err := s.withStore(ctx, func(ctx context.Context) error {
		var err error
		fences, err = s.repo.Location.List(ctx, false)
		return err
	})
	if err != nil {
		return dependencyError("查询签到地点", err)
	}

	res, err := EvaluateGeofence(st.point, fences)
	if errors.Is(err, ErrNoActiveGeofence) {
		return policyRejection(ReasonNoActiveLocations, "当前没有可用的签到地点")
	}
	if !res.Admitted {
		radius := 0
		if res.Nearest != nil {
			radius = res.Nearest.Radius
		}
		rej := policyRejection(ReasonOutOfRange,
			fmt.Sprintf("您距离最近的签到地点 %d 米，需在 %d 米范围内", res.DistanceMeters, radius))
		rej.DistanceMeters = intPtr(res.DistanceMeters)
		rej.RadiusMeters = intPtr(radius)
		return rej
	}
	st.geo = res
	return nil
}

func (s *checkInService) checkOwnRecord(ctx context.Context, st *checkIn) error {
	var student *model.Student
	err := s.withStore(ctx, func(ctx context.Context) error {
		var err error
		student, err = s.repo.Student.GetByEmail(ctx, st.email)
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return dependencyError("查询学生记录", err)
	}
	if student.HasRecordFor(st.session, st.now, s.calendar.Location()) {
		return policyRejection(ReasonAlreadyMarked, "您本时段今天已签到")
	}
	return nil
}

// commit 先写台账再追加记录：台账唯一键充当占位，并发重复请求在此变为冲突
// 两次写入视为一步，调用方断开不打断提交，仅受存储超时约束
func (s *checkInService) commit(ctx context.Context, st *checkIn) error {
	ctx = context.WithoutCancel(ctx)
	entry := &model.LedgerEntry{
		IPAddress:         st.meta.ClientIP,
		DeviceFingerprint: st.req.DeviceFingerprint,
		Session:           st.session,
		Day:               s.ledgerDay(st.now),
		Email:             st.email,
	}
	err := s.withStore(ctx, func(ctx context.Context) error {
		return s.repo.Ledger.Create(ctx, entry)
	})
	if errors.Is(err, pkgerrors.ErrDuplicate) {
		return policyRejection(ReasonAlreadyMarked, "您本时段今天已签到")
	}
	if err != nil {
		return dependencyError("写入身份台账", err)
	}

	profile := &model.Student{
		Email:     st.email,
		Name:      strings.TrimSpace(st.req.Name),
		Specialty: strings.TrimSpace(st.req.Specialty),
		Major:     strings.TrimSpace(st.req.Major),
	}
	record := model.AttendanceRecord{
		Date:              st.now.UTC(),
		Session:           st.session,
		Location:          st.point,
		Verified:          true,
		Distance:          st.geo.DistanceMeters,
		DeviceFingerprint: st.req.DeviceFingerprint,
		AddedByAdmin:      false,
	}
	err = s.withStore(ctx, func(ctx context.Context) error {
		_, err := s.repo.Student.UpsertAppend(ctx, profile, record)
		return err
	})
	if err != nil {
		// 台账已写入但记录追加失败，需人工核对，不做补偿
		logger.FromContext(ctx, s.logger).Error("台账已写入但签到记录追加失败",
			zap.String("email", st.email),
			zap.String("session", st.session.String()),
			zap.String("ip", st.meta.ClientIP),
			zap.Error(err),
		)
		return fmt.Errorf("%w: 追加签到记录: %v", pkgerrors.ErrIntegrity, err)
	}
	return nil
}

// ── 内部辅助方法 ──

// withStore 为单次存储往返加超时
func (s *checkInService) withStore(ctx context.Context, fn func(context.Context) error) error {
	return withStoreTimeout(ctx, s.policy.StoreTimeout, fn)
}

// ledgerDay 日历时区下的日期，以 UTC 零点表示以便写入 DATE 列
func (s *checkInService) ledgerDay(t time.Time) time.Time {
	y, m, d := t.In(s.calendar.Location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dependencyError 存储失败一律拒绝签到（fail closed）
func dependencyError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", pkgerrors.ErrDependency, op, err)
}

// NormalizeEmail 邮箱去空白并转小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
