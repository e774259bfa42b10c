package service

import (
	"errors"
	"math"
	"testing"

	"github.com/maamriaabderahmene/greve-ensta/internal/model"
)

// metersPerDegreeLat 赤道经线上 1° 纬度对应的距离
const metersPerDegreeLat = EarthRadiusMeters * math.Pi / 180

func fenceNorthOf(name string, meters float64, radius int) model.AttendanceLocation {
	return model.AttendanceLocation{
		LocationID: "loc-" + name,
		Name:       name,
		Latitude:   meters / metersPerDegreeLat,
		Longitude:  0,
		Radius:     radius,
		IsActive:   true,
	}
}

var origin = model.Coordinates{Lat: 0, Lng: 0}

func TestHaversine_ZeroAndSymmetric(t *testing.T) {
	p := model.Coordinates{Lat: 36.7538, Lng: 3.0588}
	q := model.Coordinates{Lat: 36.7600, Lng: 3.0500}

	if d := HaversineMeters(p, p); d != 0 {
		t.Errorf("同一点距离应为 0，实际 %f", d)
	}
	if d1, d2 := HaversineMeters(p, q), HaversineMeters(q, p); math.Abs(d1-d2) > 1e-9 {
		t.Errorf("距离应对称: %f vs %f", d1, d2)
	}

	if d := HaversineMeters(origin, model.Coordinates{Lat: 1, Lng: 0}); math.Abs(d-metersPerDegreeLat) > 0.01 {
		t.Errorf("1° 纬度期望 %.2f 米，实际 %.2f", metersPerDegreeLat, d)
	}
}

func TestEvaluateGeofence_SamePoint(t *testing.T) {
	fences := []model.AttendanceLocation{{Name: "P", Latitude: 36.75, Longitude: 3.05, Radius: 10}}

	res, err := EvaluateGeofence(model.Coordinates{Lat: 36.75, Lng: 3.05}, fences)
	if err != nil {
		t.Fatalf("不应返回错误: %v", err)
	}
	if !res.Admitted || res.DistanceMeters != 0 {
		t.Errorf("期望 admitted=true distance=0，实际 %+v", res)
	}
}

func TestEvaluateGeofence_NoFences(t *testing.T) {
	_, err := EvaluateGeofence(origin, nil)
	if !errors.Is(err, ErrNoActiveGeofence) {
		t.Errorf("期望 ErrNoActiveGeofence，实际 %v", err)
	}
}

// A 距 80 米半径 50，B 距 90 米半径 100：由 B 放行，最近地点为先遍历到的 A
func TestEvaluateGeofence_AdmitsViaLaterFenceReportsEarlierNearest(t *testing.T) {
	a := fenceNorthOf("A", 80, 50)
	b := fenceNorthOf("B", 90, 100)

	res, err := EvaluateGeofence(origin, []model.AttendanceLocation{a, b})
	if err != nil {
		t.Fatalf("不应返回错误: %v", err)
	}
	if !res.Admitted {
		t.Fatal("期望经 B 放行")
	}
	if res.Nearest == nil || res.Nearest.Name != "A" {
		t.Errorf("期望最近地点为 A，实际 %+v", res.Nearest)
	}
	if res.DistanceMeters != 80 {
		t.Errorf("期望距离 80，实际 %d", res.DistanceMeters)
	}
}

// 顺序反过来：B 首先被遍历并立即放行，A 未被检查
func TestEvaluateGeofence_ReversedOrderStopsAtFirst(t *testing.T) {
	a := fenceNorthOf("A", 80, 50)
	b := fenceNorthOf("B", 90, 100)

	res, err := EvaluateGeofence(origin, []model.AttendanceLocation{b, a})
	if err != nil {
		t.Fatalf("不应返回错误: %v", err)
	}
	if !res.Admitted {
		t.Fatal("期望经 B 放行")
	}
	if res.Nearest == nil || res.Nearest.Name != "B" {
		t.Errorf("期望最近地点为 B，实际 %+v", res.Nearest)
	}
	if res.DistanceMeters != 90 {
		t.Errorf("期望距离 90，实际 %d", res.DistanceMeters)
	}
}

func TestEvaluateGeofence_OutOfRangeReportsGlobalMinimum(t *testing.T) {
	fences := []model.AttendanceLocation{
		fenceNorthOf("far", 900, 100),
		fenceNorthOf("closest", 250, 100),
		fenceNorthOf("mid", 400, 100),
	}

	res, err := EvaluateGeofence(origin, fences)
	if err != nil {
		t.Fatalf("不应返回错误: %v", err)
	}
	if res.Admitted {
		t.Fatal("不应放行")
	}
	if res.Nearest == nil || res.Nearest.Name != "closest" {
		t.Errorf("期望最近地点为 closest，实际 %+v", res.Nearest)
	}
	if res.DistanceMeters != 250 {
		t.Errorf("期望距离 250，实际 %d", res.DistanceMeters)
	}
}

func TestEvaluateGeofence_EqualDistanceKeepsFirst(t *testing.T) {
	fences := []model.AttendanceLocation{
		fenceNorthOf("first", 300, 50),
		fenceNorthOf("second", 300, 50),
	}
	res, _ := EvaluateGeofence(origin, fences)
	if res.Nearest == nil || res.Nearest.Name != "first" {
		t.Errorf("距离相等时应保留先遍历到的地点，实际 %+v", res.Nearest)
	}
}
