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

var (
	ErrStudentNotFound = errors.New("学生不存在")
)

// StudentService 学生查询业务接口
type StudentService interface {
	List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error)
	GetByEmail(ctx context.Context, email string) (*dto.StudentResponse, error)
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *studentService) List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error) {
	students, total, err := s.repo.Student.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出学生失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, toStudentResponse(&students[i], false))
	}
	return result, total, nil
}

// ────────────────────── GetByEmail ──────────────────────

func (s *studentService) GetByEmail(ctx context.Context, email string) (*dto.StudentResponse, error) {
	st, err := s.repo.Student.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	resp := toStudentResponse(st, true)
	return &resp, nil
}

// ── 内部辅助方法 ──

func toStudentResponse(st *model.Student, withRecords bool) dto.StudentResponse {
	resp := dto.StudentResponse{
		ID:              st.StudentID,
		Email:           st.Email,
		Name:            st.Name,
		Specialty:       st.Specialty,
		Major:           st.Major,
		AttendanceCount: len(st.AttendanceRecords),
		CreatedAt:       st.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       st.UpdatedAt.Format(time.RFC3339),
	}
	if !withRecords {
		return resp
	}

	resp.Records = make([]dto.AttendanceRecordResponse, 0, len(st.AttendanceRecords))
	for _, r := range st.AttendanceRecords {
		session := r.EffectiveSession()
		resp.Records = append(resp.Records, dto.AttendanceRecordResponse{
			Date:              r.Date.Format(time.RFC3339),
			Session:           session.String(),
			SessionLabel:      SessionLabel(session),
			Latitude:          r.Location.Lat,
			Longitude:         r.Location.Lng,
			Verified:          r.Verified,
			Distance:          r.Distance,
			DeviceFingerprint: r.DeviceFingerprint,
			AddedByAdmin:      r.AddedByAdmin,
		})
	}
	return resp
}
