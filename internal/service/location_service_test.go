package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/maamriaabderahmene/greve-ensta/internal/dto"
	"github.com/maamriaabderahmene/greve-ensta/internal/model"
)

// ── 测试辅助 ──

func setupTestLocationService() (LocationService, *mockLocationRepo) {
	repo, m := newMockRepos()
	return NewLocationService(repo, zap.NewNop()), m.location
}

func f64(v float64) *float64 { return &v }

// ── Create 测试 ──

func TestLocationService_Create_DefaultRadius(t *testing.T) {
	svc, _ := setupTestLocationService()

	req := &dto.CreateLocationRequest{
		Name:      "Amphi B",
		Latitude:  f64(36.7121),
		Longitude: f64(3.1805),
	}

	result, err := svc.Create(context.Background(), req, "")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Radius != model.DefaultRadiusMeters {
		t.Errorf("期望默认半径 %d，实际 %d", model.DefaultRadiusMeters, result.Radius)
	}
	if !result.IsActive {
		t.Error("新建地点默认启用")
	}
}

func TestLocationService_Create_InvalidRadius(t *testing.T) {
	svc, _ := setupTestLocationService()

	for _, r := range []int{5, 1001} {
		req := &dto.CreateLocationRequest{Name: "X", Latitude: f64(0), Longitude: f64(0), Radius: r}
		if _, err := svc.Create(context.Background(), req, ""); !errors.Is(err, ErrInvalidRadius) {
			t.Errorf("半径 %d 期望 ErrInvalidRadius，实际 %v", r, err)
		}
	}
}

func TestLocationService_Create_InvalidCoordinates(t *testing.T) {
	svc, _ := setupTestLocationService()

	req := &dto.CreateLocationRequest{Name: "X", Latitude: f64(91), Longitude: f64(0)}
	if _, err := svc.Create(context.Background(), req, ""); !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("期望 ErrInvalidCoordinates，实际 %v", err)
	}
}

// ── GetByID 测试 ──

func TestLocationService_GetByID_NotFound(t *testing.T) {
	svc, _ := setupTestLocationService()

	_, err := svc.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("期望 ErrLocationNotFound，实际: %v", err)
	}
}

// ── List 测试 ──

func TestLocationService_List_ActiveOnly(t *testing.T) {
	svc, locRepo := setupTestLocationService()
	_ = locRepo.Create(context.Background(), &model.AttendanceLocation{Name: "活跃地点", Radius: 50, IsActive: true})
	_ = locRepo.Create(context.Background(), &model.AttendanceLocation{Name: "停用地点", Radius: 50, IsActive: false})

	locations, err := svc.List(context.Background(), &dto.LocationListRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(locations) != 1 || locations[0].Name != "活跃地点" {
		t.Errorf("应只返回启用地点，实际 %+v", locations)
	}

	all, _ := svc.List(context.Background(), &dto.LocationListRequest{IncludeInactive: true})
	if len(all) != 2 {
		t.Errorf("IncludeInactive 应返回全部，实际 %d", len(all))
	}
}

// ── Update / Delete 测试 ──

func TestLocationService_Update(t *testing.T) {
	svc, locRepo := setupTestLocationService()
	_ = locRepo.Create(context.Background(), &model.AttendanceLocation{LocationID: "loc-1", Name: "旧名称", Radius: 100, IsActive: true})

	radius := 250
	inactive := false
	result, err := svc.Update(context.Background(), "loc-1", &dto.UpdateLocationRequest{Radius: &radius, IsActive: &inactive}, "")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.Radius != 250 || result.IsActive {
		t.Errorf("更新结果错误: %+v", result)
	}

	bad := 2000
	if _, err := svc.Update(context.Background(), "loc-1", &dto.UpdateLocationRequest{Radius: &bad}, ""); !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("期望 ErrInvalidRadius，实际 %v", err)
	}
}

func TestLocationService_Delete(t *testing.T) {
	svc, locRepo := setupTestLocationService()
	_ = locRepo.Create(context.Background(), &model.AttendanceLocation{LocationID: "loc-1", Name: "A", Radius: 100, IsActive: true})

	if err := svc.Delete(context.Background(), "loc-1", ""); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if err := svc.Delete(context.Background(), "loc-1", ""); !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("重复删除期望 ErrLocationNotFound，实际 %v", err)
	}
}
