package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maamriaabderahmene/greve-ensta/internal/dto"
	"github.com/maamriaabderahmene/greve-ensta/internal/model"
	"github.com/maamriaabderahmene/greve-ensta/internal/service"
	pkgerrors "github.com/maamriaabderahmene/greve-ensta/pkg/errors"
	"github.com/maamriaabderahmene/greve-ensta/pkg/response"
)

// ── 时段查询 ──

// SessionHandler 时段查询 HTTP 处理器
type SessionHandler struct {
	sessionSvc service.SessionService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(sessionSvc service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// Current 当前签到时段
// GET /api/v1/sessions/current
func (h *SessionHandler) Current(c *gin.Context) {
	result, err := h.sessionSvc.Current(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// CalendarICS 导出当天签到时段日历
// GET /api/v1/sessions/calendar.ics?date=YYYY-MM-DD
func (h *SessionHandler) CalendarICS(c *gin.Context) {
	var req dto.CalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	body, err := h.sessionSvc.CalendarICS(c.Request.Context(), req.Date)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCalendarDate) {
			response.BadRequest(c, 22002, err.Error())
			return
		}
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", `inline; filename="sessions.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

// ── 时段开关 ──

// SessionGateHandler 时段开关 HTTP 处理器
type SessionGateHandler struct {
	gateSvc service.SessionGateService
}

// NewSessionGateHandler 创建 SessionGateHandler
func NewSessionGateHandler(gateSvc service.SessionGateService) *SessionGateHandler {
	return &SessionGateHandler{gateSvc: gateSvc}
}

// List 全部时段开关状态
// GET /api/v1/admin/session-control
func (h *SessionGateHandler) List(c *gin.Context) {
	list, err := h.gateSvc.List(c.Request.Context())
	if err != nil {
		h.handleGateError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Set 设置时段开关
// POST /api/v1/admin/session-control
func (h *SessionGateHandler) Set(c *gin.Context) {
	var req dto.SetSessionControlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return
	}

	actor, ok := MustGetAdminEmail(c)
	if !ok {
		return
	}

	result, err := h.gateSvc.SetEnabled(c.Request.Context(), model.Session(req.Session), *req.IsEnabled, actor)
	if err != nil {
		h.handleGateError(c, err)
		return
	}

	response.OK(c, result)
}

// handleGateError 统一处理时段开关业务错误
func (h *SessionGateHandler) handleGateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSession):
		response.BadRequest(c, 22001, "无效的时段")
	case errors.Is(err, pkgerrors.ErrDependency):
		response.ServiceUnavailable(c, 10007, "服务暂时不可用，请稍后重试")
	default:
		response.InternalError(c)
	}
}
