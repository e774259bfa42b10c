package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/maamriaabderahmene/greve-ensta/internal/dto"
	"github.com/maamriaabderahmene/greve-ensta/internal/service"
	"github.com/maamriaabderahmene/greve-ensta/pkg/response"
)

// LocationHandler 签到地点（地理围栏）管理 HTTP 处理器
// 停用或删除的地点不再参与签到范围判定
type LocationHandler struct {
	locationSvc service.LocationService
}

// NewLocationHandler 创建 LocationHandler
func NewLocationHandler(locationSvc service.LocationService) *LocationHandler {
	return &LocationHandler{locationSvc: locationSvc}
}

// ListLocations GET /api/v1/admin/locations?include_inactive=true
func (h *LocationHandler) ListLocations(c *gin.Context) {
	var req dto.LocationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.locationSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetLocation GET /api/v1/admin/locations/:id
func (h *LocationHandler) GetLocation(c *gin.Context) {
	loc, err := h.locationSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleLocationError(c, err)
		return
	}

	response.OK(c, loc)
}

// CreateLocation POST /api/v1/admin/locations
func (h *LocationHandler) CreateLocation(c *gin.Context) {
	adminID, ok := MustGetAdminID(c)
	if !ok {
		return
	}

	var req dto.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	loc, err := h.locationSvc.Create(c.Request.Context(), &req, adminID)
	if err != nil {
		h.handleLocationError(c, err)
		return
	}

	response.Created(c, loc)
}

// UpdateLocation PUT /api/v1/admin/locations/:id（部分字段更新）
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	adminID, ok := MustGetAdminID(c)
	if !ok {
		return
	}

	var req dto.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	loc, err := h.locationSvc.Update(c.Request.Context(), c.Param("id"), &req, adminID)
	if err != nil {
		h.handleLocationError(c, err)
		return
	}

	response.OK(c, loc)
}

// DeleteLocation DELETE /api/v1/admin/locations/:id（软删除）
func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	adminID, ok := MustGetAdminID(c)
	if !ok {
		return
	}

	if err := h.locationSvc.Delete(c.Request.Context(), c.Param("id"), adminID); err != nil {
		h.handleLocationError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleLocationError 统一处理地点模块业务错误
func (h *LocationHandler) handleLocationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLocationNotFound):
		response.NotFound(c, 16001, "签到地点不存在")
	case errors.Is(err, service.ErrInvalidRadius):
		response.BadRequest(c, 16002, err.Error())
	case errors.Is(err, service.ErrInvalidCoordinates):
		response.BadRequest(c, 16003, err.Error())
	default:
		response.InternalError(c)
	}
}
