package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maamriaabderahmene/greve-ensta/internal/model"
)

// LocationRepository 签到地点数据访问接口
type LocationRepository interface {
	Create(ctx context.Context, loc *model.AttendanceLocation) error
	GetByID(ctx context.Context, id string) (*model.AttendanceLocation, error)
	// List 按创建顺序返回，围栏判定依赖该顺序
	List(ctx context.Context, includeInactive bool) ([]model.AttendanceLocation, error)
	Update(ctx context.Context, loc *model.AttendanceLocation) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type locationRepo struct {
	db *gorm.DB
}

// NewLocationRepo 创建 LocationRepository 实例
func NewLocationRepo(db *gorm.DB) LocationRepository {
	return &locationRepo{db: db}
}

func (r *locationRepo) Create(ctx context.Context, loc *model.AttendanceLocation) error {
	return r.db.WithContext(ctx).Create(loc).Error
}

func (r *locationRepo) GetByID(ctx context.Context, id string) (*model.AttendanceLocation, error) {
	// 非 UUID 的 ID 不可能存在，避免 uuid 列的类型转换错误
	if _, err := uuid.Parse(id); err != nil {
		return nil, gorm.ErrRecordNotFound
	}

	var loc model.AttendanceLocation
	err := r.db.WithContext(ctx).
		Where("location_id = ?", id).
		First(&loc).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *locationRepo) List(ctx context.Context, includeInactive bool) ([]model.AttendanceLocation, error) {
	var locations []model.AttendanceLocation
	db := r.db.WithContext(ctx)

	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}

	err := db.Order("created_at ASC, location_id ASC").Find(&locations).Error
	return locations, err
}

func (r *locationRepo) Update(ctx context.Context, loc *model.AttendanceLocation) error {
	return r.db.WithContext(ctx).Save(loc).Error
}

func (r *locationRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.AttendanceLocation{}).
		Where("location_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": nullableUUID(deletedBy),
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// nullableUUID 空字符串写入 NULL，避免 uuid 列解析失败
func nullableUUID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
