package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/maamriaabderahmene/greve-ensta/internal/model"
)

// LedgerRepository 身份去重台账数据访问接口
type LedgerRepository interface {
	// FindByDevice 查找同一 (IP, 设备, 时段, 日) 的记录，不存在返回 gorm.ErrRecordNotFound
	FindByDevice(ctx context.Context, ip, device string, session model.Session, day time.Time) (*model.LedgerEntry, error)
	ExistsByEmail(ctx context.Context, email string, session model.Session, day time.Time) (bool, error)
	// Create 唯一键冲突时返回 pkgerrors.ErrDuplicate
	Create(ctx context.Context, entry *model.LedgerEntry) error
}

type ledgerRepo struct {
	db *gorm.DB
}

// NewLedgerRepo 创建 LedgerRepository 实例
func NewLedgerRepo(db *gorm.DB) LedgerRepository {
	return &ledgerRepo{db: db}
}

func (r *ledgerRepo) FindByDevice(ctx context.Context, ip, device string, session model.Session, day time.Time) (*model.LedgerEntry, error) {
	var e model.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("ip_address = ? AND device_fingerprint = ? AND session = ? AND day = ?", ip, device, session, day).
		Take(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ledgerRepo) ExistsByEmail(ctx context.Context, email string, session model.Session, day time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.LedgerEntry{}).
		Where("email = ? AND session = ? AND day = ?", email, session, day).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

func (r *ledgerRepo) Create(ctx context.Context, entry *model.LedgerEntry) error {
	return translateError(r.db.WithContext(ctx).Create(entry).Error)
}
