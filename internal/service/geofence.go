package service

import (
	"errors"
	"math"

	"github.com/maamriaabderahmene/greve-ensta/internal/model"
)

// EarthRadiusMeters 地球平均半径（米）
const EarthRadiusMeters = 6371000.0

// ErrNoActiveGeofence 没有任何启用的签到地点，区别于“超出范围”
var ErrNoActiveGeofence = errors.New("没有可用的签到地点")

// GeofenceResult 围栏判定结果
// Nearest 为判定结束时记录到的最近地点，不一定是放行的那个
type GeofenceResult struct {
	Admitted       bool
	DistanceMeters int
	Nearest        *model.AttendanceLocation
}

// HaversineMeters 大圆距离（米）
func HaversineMeters(a, b model.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// EvaluateGeofence 按给定顺序遍历地点：
// 距离严格更小时刷新最近地点；遇到第一个落在自身半径内的地点立即放行。
// 全部不满足时返回全局最近距离与地点。
func EvaluateGeofence(point model.Coordinates, fences []model.AttendanceLocation) (GeofenceResult, error) {
	if len(fences) == 0 {
		return GeofenceResult{}, ErrNoActiveGeofence
	}

	minDistance := math.Inf(1)
	var nearest *model.AttendanceLocation
	admitted := false

	for i := range fences {
		f := &fences[i]
		d := HaversineMeters(point, model.Coordinates{Lat: f.Latitude, Lng: f.Longitude})

		if d < minDistance {
			minDistance = d
			nearest = f
		}
		if d <= float64(f.Radius) {
			admitted = true
			break
		}
	}

	return GeofenceResult{
		Admitted:       admitted,
		DistanceMeters: int(math.Round(minDistance)),
		Nearest:        nearest,
	}, nil
}
