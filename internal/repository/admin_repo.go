package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/maamriaabderahmene/greve-ensta/internal/model"
)

// AdminRepository 管理员数据访问接口
type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	Create(ctx context.Context, admin *model.Admin) error
}

type adminRepo struct {
	db *gorm.DB
}

// NewAdminRepo 创建 AdminRepository 实例
func NewAdminRepo(db *gorm.DB) AdminRepository {
	return &adminRepo{db: db}
}

func (r *adminRepo) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var a model.Admin
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *adminRepo) Create(ctx context.Context, admin *model.Admin) error {
	return translateError(r.db.WithContext(ctx).Create(admin).Error)
}
