package repository

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/maamriaabderahmene/greve-ensta/internal/model"
)

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	GetByEmail(ctx context.Context, email string) (*model.Student, error)
	// UpsertAppend 按邮箱查找或创建学生，刷新资料并原子追加一条签到记录
	UpsertAppend(ctx context.Context, profile *model.Student, record model.AttendanceRecord) (*model.Student, error)
	List(ctx context.Context, offset, limit int) ([]model.Student, int64, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) GetByEmail(ctx context.Context, email string) (*model.Student, error) {
	var s model.Student
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertAppend 单条 INSERT ... ON CONFLICT 语句完成，避免并发追加相互覆盖
func (r *studentRepo) UpsertAppend(ctx context.Context, profile *model.Student, record model.AttendanceRecord) (*model.Student, error) {
	s := &model.Student{
		Email:             profile.Email,
		Name:              profile.Name,
		Specialty:         profile.Specialty,
		Major:             profile.Major,
		AttendanceRecords: datatypes.JSONSlice[model.AttendanceRecord]{record},
	}

	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "email"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"name":               gorm.Expr("EXCLUDED.name"),
					"specialty":          gorm.Expr("EXCLUDED.specialty"),
					"major":              gorm.Expr("EXCLUDED.major"),
					"attendance_records": gorm.Expr("students.attendance_records || EXCLUDED.attendance_records"),
					"updated_at":         gorm.Expr("NOW()"),
				}),
			},
			clause.Returning{},
		).
		Create(s).Error
	if err != nil {
		return nil, translateError(err)
	}
	return s, nil
}

func (r *studentRepo) List(ctx context.Context, offset, limit int) ([]model.Student, int64, error) {
	var (
		students []model.Student
		total    int64
	)

	db := r.db.WithContext(ctx).Model(&model.Student{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&students).Error
	return students, total, err
}
