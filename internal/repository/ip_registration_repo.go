package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/maamriaabderahmene/greve-ensta/internal/model"
)

// IPRegistrationRepository IP 登记数据访问接口
type IPRegistrationRepository interface {
	Get(ctx context.Context, ip string) (*model.IPRegistration, error)
	// Touch 首次出现时创建已验证记录，否则刷新 last_seen 并累加访问次数
	Touch(ctx context.Context, ip, userAgent string, now time.Time) (*model.IPRegistration, error)
}

type ipRegistrationRepo struct {
	db *gorm.DB
}

// NewIPRegistrationRepo 创建 IPRegistrationRepository 实例
func NewIPRegistrationRepo(db *gorm.DB) IPRegistrationRepository {
	return &ipRegistrationRepo{db: db}
}

func (r *ipRegistrationRepo) Get(ctx context.Context, ip string) (*model.IPRegistration, error) {
	var reg model.IPRegistration
	err := r.db.WithContext(ctx).
		Where("ip_address = ?", ip).
		First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *ipRegistrationRepo) Touch(ctx context.Context, ip, userAgent string, now time.Time) (*model.IPRegistration, error) {
	reg := &model.IPRegistration{
		IPAddress:  ip,
		FirstSeen:  now,
		LastSeen:   now,
		VisitCount: 1,
		IsVerified: true,
		UserAgent:  userAgent,
	}

	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "ip_address"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"last_seen":   gorm.Expr("EXCLUDED.last_seen"),
					"visit_count": gorm.Expr("ip_registrations.visit_count + 1"),
					"user_agent":  gorm.Expr("COALESCE(NULLIF(EXCLUDED.user_agent, ''), ip_registrations.user_agent)"),
					"updated_at":  gorm.Expr("NOW()"),
				}),
			},
			clause.Returning{},
		).
		Create(reg).Error
	if err != nil {
		return nil, err
	}
	return reg, nil
}
