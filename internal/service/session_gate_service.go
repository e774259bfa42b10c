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
	pkgerrors "github.com/maamriaabderahmene/greve-ensta/pkg/errors"
	"github.com/maamriaabderahmene/greve-ensta/pkg/metrics"
)

// ── 时段开关业务错误 ──

var (
	ErrInvalidSession = errors.New("无效的签到时段")
)

// gateSystemActor 自动初始化记录的操作者
const gateSystemActor = "system"

// SessionGatePolicy 时段开关的缺省策略
type SessionGatePolicy struct {
	// FailOpen 无记录时视为开启
	FailOpen bool
	// MaterializeOnRead 读到缺失记录时补建一条显式记录
	MaterializeOnRead bool
	// StoreTimeout 单次存储往返超时
	StoreTimeout time.Duration
}

// SessionGateService 时段开关业务接口
type SessionGateService interface {
	IsEnabled(ctx context.Context, session model.Session) (bool, error)
	List(ctx context.Context) ([]dto.SessionControlResponse, error)
	SetEnabled(ctx context.Context, session model.Session, enabled bool, actor string) (*dto.SessionControlResponse, error)
}

type sessionGateService struct {
	repo    *repository.Repository
	policy  SessionGatePolicy
	metrics *metrics.Recorder
	logger  *zap.Logger
}

// NewSessionGateService 创建 SessionGateService 实例
func NewSessionGateService(
	repo *repository.Repository,
	policy SessionGatePolicy,
	recorder *metrics.Recorder,
	logger *zap.Logger,
) SessionGateService {
	return &sessionGateService{
		repo:    repo,
		policy:  policy,
		metrics: recorder,
		logger:  logger,
	}
}

// ────────────────────── IsEnabled ──────────────────────

func (s *sessionGateService) IsEnabled(ctx context.Context, session model.Session) (bool, error) {
	var sc *model.SessionControl
	err := s.withStore(ctx, func(ctx context.Context) error {
		var err error
		sc, err = s.repo.SessionControl.Get(ctx, session)
		return err
	})
	if err == nil {
		s.metrics.ObserveGateRead("stored")
		return sc.IsEnabled, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询时段开关失败", zap.String("session", session.String()), zap.Error(err))
		return false, err
	}

	s.metrics.ObserveGateRead("default")
	s.materialize(ctx, session)
	return s.policy.FailOpen, nil
}

// ────────────────────── List ──────────────────────

func (s *sessionGateService) List(ctx context.Context) ([]dto.SessionControlResponse, error) {
	var stored []model.SessionControl
	err := s.withStore(ctx, func(ctx context.Context) error {
		var err error
		stored, err = s.repo.SessionControl.List(ctx)
		return err
	})
	if err != nil {
		s.logger.Error("列出时段开关失败", zap.Error(err))
		return nil, dependencyError("列出时段开关", err)
	}

	bySession := make(map[model.Session]*model.SessionControl, len(stored))
	for i := range stored {
		bySession[stored[i].Session] = &stored[i]
	}

	result := make([]dto.SessionControlResponse, 0, len(model.AllSessions))
	for _, session := range model.AllSessions {
		if sc, ok := bySession[session]; ok {
			result = append(result, toSessionControlResponse(sc))
			continue
		}
		sc := s.materialize(ctx, session)
		if sc == nil {
			sc = &model.SessionControl{Session: session, IsEnabled: s.policy.FailOpen}
		}
		result = append(result, toSessionControlResponse(sc))
	}

	return result, nil
}

// ────────────────────── SetEnabled ──────────────────────

func (s *sessionGateService) SetEnabled(ctx context.Context, session model.Session, enabled bool, actor string) (*dto.SessionControlResponse, error) {
	if !session.Valid() {
		return nil, ErrInvalidSession
	}

	sc := &model.SessionControl{
		Session:   session,
		IsEnabled: enabled,
		UpdatedBy: actor,
		UpdatedAt: time.Now(),
	}
	err := s.withStore(ctx, func(ctx context.Context) error {
		return s.repo.SessionControl.Upsert(ctx, sc)
	})
	if err != nil {
		s.logger.Error("更新时段开关失败", zap.String("session", session.String()), zap.Error(err))
		return nil, dependencyError("更新时段开关", err)
	}

	s.logger.Info("时段开关已更新",
		zap.String("session", session.String()),
		zap.Bool("enabled", enabled),
		zap.String("actor", actor),
	)

	resp := toSessionControlResponse(sc)
	return &resp, nil
}

// ── 内部辅助方法 ──

// materialize 按策略补建缺省记录；并发补建产生的唯一键冲突直接忽略
func (s *sessionGateService) materialize(ctx context.Context, session model.Session) *model.SessionControl {
	if !s.policy.MaterializeOnRead {
		return nil
	}

	sc := &model.SessionControl{
		Session:   session,
		IsEnabled: s.policy.FailOpen,
		UpdatedBy: gateSystemActor,
	}
	err := s.withStore(ctx, func(ctx context.Context) error {
		return s.repo.SessionControl.Create(ctx, sc)
	})
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrDuplicate) {
			s.logger.Warn("补建时段开关记录失败", zap.String("session", session.String()), zap.Error(err))
		}
		return nil
	}
	return sc
}

func (s *sessionGateService) withStore(ctx context.Context, fn func(context.Context) error) error {
	return withStoreTimeout(ctx, s.policy.StoreTimeout, fn)
}

func toSessionControlResponse(sc *model.SessionControl) dto.SessionControlResponse {
	resp := dto.SessionControlResponse{
		Session:   sc.Session.String(),
		Label:     SessionLabel(sc.Session),
		IsEnabled: sc.IsEnabled,
		UpdatedBy: sc.UpdatedBy,
	}
	if !sc.UpdatedAt.IsZero() {
		resp.UpdatedAt = sc.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}
