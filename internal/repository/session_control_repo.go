package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/maamriaabderahmene/greve-ensta/internal/model"
)

// SessionControlRepository 时段开关数据访问接口
type SessionControlRepository interface {
	Get(ctx context.Context, session model.Session) (*model.SessionControl, error)
	List(ctx context.Context) ([]model.SessionControl, error)
	// Create 已存在时返回 pkgerrors.ErrDuplicate
	Create(ctx context.Context, sc *model.SessionControl) error
	Upsert(ctx context.Context, sc *model.SessionControl) error
}

type sessionControlRepo struct {
	db *gorm.DB
}

// NewSessionControlRepo 创建 SessionControlRepository 实例
func NewSessionControlRepo(db *gorm.DB) SessionControlRepository {
	return &sessionControlRepo{db: db}
}

func (r *sessionControlRepo) Get(ctx context.Context, session model.Session) (*model.SessionControl, error) {
	var sc model.SessionControl
	err := r.db.WithContext(ctx).
		Where("session = ?", session).
		First(&sc).Error
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (r *sessionControlRepo) List(ctx context.Context) ([]model.SessionControl, error) {
	var list []model.SessionControl
	err := r.db.WithContext(ctx).Order("session ASC").Find(&list).Error
	return list, err
}

func (r *sessionControlRepo) Create(ctx context.Context, sc *model.SessionControl) error {
	return translateError(r.db.WithContext(ctx).Create(sc).Error)
}

func (r *sessionControlRepo) Upsert(ctx context.Context, sc *model.SessionControl) error {
	return r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "session"}},
				DoUpdates: clause.AssignmentColumns([]string{"is_enabled", "updated_by", "updated_at"}),
			},
			clause.Returning{},
		).
		Create(sc).Error
}
