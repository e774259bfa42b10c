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

// ── 签到地点模块业务错误 ──

var (
	ErrLocationNotFound   = errors.New("签到地点不存在")
	ErrInvalidRadius      = errors.New("半径必须在 10 到 1000 米之间")
	ErrInvalidCoordinates = errors.New("经纬度超出范围")
)

// LocationService 签到地点业务接口
type LocationService interface {
	Create(ctx context.Context, req *dto.CreateLocationRequest, callerID string) (*dto.LocationResponse, error)
	GetByID(ctx context.Context, id string) (*dto.LocationResponse, error)
	List(ctx context.Context, req *dto.LocationListRequest) ([]dto.LocationResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateLocationRequest, callerID string) (*dto.LocationResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type locationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLocationService 创建 LocationService 实例
func NewLocationService(repo *repository.Repository, logger *zap.Logger) LocationService {
	return &locationService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *locationService) Create(ctx context.Context, req *dto.CreateLocationRequest, callerID string) (*dto.LocationResponse, error) {
	if req.Latitude == nil || req.Longitude == nil {
		return nil, ErrInvalidCoordinates
	}

	radius := req.Radius
	if radius == 0 {
		radius = model.DefaultRadiusMeters
	}

	loc := &model.AttendanceLocation{
		Name:      req.Name,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Radius:    radius,
		IsActive:  true,
	}
	if req.IsActive != nil {
		loc.IsActive = *req.IsActive
	}
	if err := validateLocation(loc); err != nil {
		return nil, err
	}
	loc.CreatedBy = optionalID(callerID)
	loc.UpdatedBy = optionalID(callerID)

	if err := s.repo.Location.Create(ctx, loc); err != nil {
		s.logger.Error("创建签到地点失败", zap.Error(err))
		return nil, err
	}

	return s.toLocationResponse(loc), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *locationService) GetByID(ctx context.Context, id string) (*dto.LocationResponse, error) {
	loc, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toLocationResponse(loc), nil
}

// ────────────────────── List ──────────────────────

func (s *locationService) List(ctx context.Context, req *dto.LocationListRequest) ([]dto.LocationResponse, error) {
	locations, err := s.repo.Location.List(ctx, req.IncludeInactive)
	if err != nil {
		s.logger.Error("列出签到地点失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.LocationResponse, 0, len(locations))
	for i := range locations {
		result = append(result, *s.toLocationResponse(&locations[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *locationService) Update(ctx context.Context, id string, req *dto.UpdateLocationRequest, callerID string) (*dto.LocationResponse, error) {
	loc, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		loc.Name = *req.Name
	}
	if req.Latitude != nil {
		loc.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		loc.Longitude = *req.Longitude
	}
	if req.Radius != nil {
		loc.Radius = *req.Radius
	}
	if req.IsActive != nil {
		loc.IsActive = *req.IsActive
	}
	if err := validateLocation(loc); err != nil {
		return nil, err
	}

	loc.UpdatedBy = optionalID(callerID)

	if err := s.repo.Location.Update(ctx, loc); err != nil {
		s.logger.Error("更新签到地点失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toLocationResponse(loc), nil
}

// ────────────────────── Delete ──────────────────────

func (s *locationService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Location.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除签到地点失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("签到地点已删除", zap.String("id", id), zap.String("by", callerID))
	return nil
}

// ── 内部辅助方法 ──

func (s *locationService) get(ctx context.Context, id string) (*model.AttendanceLocation, error) {
	loc, err := s.repo.Location.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		s.logger.Error("查询签到地点失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return loc, nil
}

func validateLocation(loc *model.AttendanceLocation) error {
	if loc.Radius < model.MinRadiusMeters || loc.Radius > model.MaxRadiusMeters {
		return ErrInvalidRadius
	}
	if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func (s *locationService) toLocationResponse(loc *model.AttendanceLocation) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:        loc.LocationID,
		Name:      loc.Name,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Radius:    loc.Radius,
		IsActive:  loc.IsActive,
		CreatedAt: loc.CreatedAt.Format(time.RFC3339),
		UpdatedAt: loc.UpdatedAt.Format(time.RFC3339),
	}
}
