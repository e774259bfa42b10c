package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/maamriaabderahmene/greve-ensta/internal/dto"
	"github.com/maamriaabderahmene/greve-ensta/internal/model"
	"github.com/maamriaabderahmene/greve-ensta/internal/repository"
)

// ── IP 登记业务错误 ──

var (
	ErrIPUnavailable = errors.New("无法识别 IP 地址")
)

// maxUserAgentLen 登记时保留的 UA 最大长度
const maxUserAgentLen = 512

// IPRegistrationService IP 登记业务接口
type IPRegistrationService interface {
	Register(ctx context.Context, ip, userAgent string) (*dto.IPRegisterResponse, error)
	Status(ctx context.Context, ip string) (*dto.IPStatusResponse, error)
}

type ipRegistrationService struct {
	repo         *repository.Repository
	storeTimeout time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewIPRegistrationService 创建 IPRegistrationService 实例
func NewIPRegistrationService(repo *repository.Repository, storeTimeout time.Duration, logger *zap.Logger) IPRegistrationService {
	return &ipRegistrationService{repo: repo, storeTimeout: storeTimeout, logger: logger, now: time.Now}
}

// ────────────────────── Register ──────────────────────

func (s *ipRegistrationService) Register(ctx context.Context, ip, userAgent string) (*dto.IPRegisterResponse, error) {
	if ip == "" {
		return nil, ErrIPUnavailable
	}
	userAgent = truncateUTF8(userAgent, maxUserAgentLen)

	var reg *model.IPRegistration
	err := withStoreTimeout(ctx, s.storeTimeout, func(ctx context.Context) error {
		var err error
		reg, err = s.repo.IPRegistration.Touch(ctx, ip, userAgent, s.now())
		return err
	})
	if err != nil {
		s.logger.Error("登记 IP 失败", zap.String("ip", ip), zap.Error(err))
		return nil, dependencyError("登记 IP", err)
	}

	firstVisit := reg.VisitCount == 1
	if firstVisit {
		s.logger.Info("新 IP 登记", zap.String("ip", ip))
	}

	return &dto.IPRegisterResponse{
		IP:         reg.IPAddress,
		FirstVisit: firstVisit,
		VisitCount: reg.VisitCount,
		IsVerified: reg.IsVerified,
	}, nil
}

// ────────────────────── Status ──────────────────────

func (s *ipRegistrationService) Status(ctx context.Context, ip string) (*dto.IPStatusResponse, error) {
	if ip == "" {
		return nil, ErrIPUnavailable
	}

	var reg *model.IPRegistration
	err := withStoreTimeout(ctx, s.storeTimeout, func(ctx context.Context) error {
		var err error
		reg, err = s.repo.IPRegistration.Get(ctx, ip)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.IPStatusResponse{IP: ip}, nil
		}
		s.logger.Error("查询 IP 登记失败", zap.String("ip", ip), zap.Error(err))
		return nil, dependencyError("查询 IP 登记", err)
	}

	return &dto.IPStatusResponse{
		IP:         reg.IPAddress,
		Registered: true,
		IsVerified: reg.IsVerified,
		VisitCount: reg.VisitCount,
		FirstSeen:  reg.FirstSeen.Format(time.RFC3339),
		LastSeen:   reg.LastSeen.Format(time.RFC3339),
	}, nil
}
