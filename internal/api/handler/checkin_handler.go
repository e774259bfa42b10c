package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maamriaabderahmene/greve-ensta/internal/dto"
	"github.com/maamriaabderahmene/greve-ensta/internal/service"
	pkgerrors "github.com/maamriaabderahmene/greve-ensta/pkg/errors"
	"github.com/maamriaabderahmene/greve-ensta/pkg/response"
)

// rejectionCodes 拒绝原因码 → 业务码（2xxxx 自助签到，21xxx 手动补录）
var rejectionCodes = map[string]int{
	service.ReasonMissingFields:      20001,
	service.ReasonInvalidInput:       20016,
	service.ReasonOutsideHours:       20002,
	service.ReasonNoActiveSession:    20003,
	service.ReasonSessionDisabled:    20004,
	service.ReasonVPNDetected:        20005,
	service.ReasonPrivateBrowsing:    20006,
	service.ReasonIPUnavailable:      20007,
	service.ReasonIPNotRegistered:    20008,
	service.ReasonIPNotVerified:      20009,
	service.ReasonMissingFingerprint: 20010,
	service.ReasonDeviceAlreadyUsed:  20011,
	service.ReasonEmailAlreadyUsed:   20012,
	service.ReasonNoActiveLocations:  20013,
	service.ReasonOutOfRange:         20014,
	service.ReasonAlreadyMarked:      20015,
	service.ReasonInvalidSession:     21001,
	service.ReasonInvalidDate:        21002,
}

// CheckInHandler 签到模块 HTTP 处理器
type CheckInHandler struct {
	checkInSvc service.CheckInService
	manualSvc  service.ManualAttendanceService
	ips        *ClientIPResolver
}

// NewCheckInHandler 创建 CheckInHandler
func NewCheckInHandler(checkInSvc service.CheckInService, manualSvc service.ManualAttendanceService, ips *ClientIPResolver) *CheckInHandler {
	return &CheckInHandler{checkInSvc: checkInSvc, manualSvc: manualSvc, ips: ips}
}

// CheckIn 学生自助签到
// POST /api/v1/attendance/mark
func (h *CheckInHandler) CheckIn(c *gin.Context) {
	var req dto.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAdmissionError(c, &service.Rejection{
			Kind:    service.RejectInput,
			Reason:  service.ReasonInvalidInput,
			Message: "参数校验失败，请检查填写内容与定位",
		})
		return
	}

	meta := service.RequestMeta{
		ClientIP: h.ips.Resolve(c),
		Headers:  requestHeaders(c),
	}

	result, err := h.checkInSvc.CheckIn(c.Request.Context(), &req, meta)
	if err != nil {
		writeAdmissionError(c, err)
		return
	}

	response.OK(c, result)
}

// AddManual 管理员手动补录
// POST /api/v1/admin/attendance
func (h *CheckInHandler) AddManual(c *gin.Context) {
	var req dto.ManualAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return
	}

	actor, ok := MustGetAdminEmail(c)
	if !ok {
		return
	}

	result, err := h.manualSvc.Add(c.Request.Context(), &req, actor)
	if err != nil {
		writeAdmissionError(c, err)
		return
	}

	response.Created(c, result)
}

// ── 内部辅助方法 ──

func requestHeaders(c *gin.Context) service.RequestHeaders {
	return service.RequestHeaders{
		UserAgent:      c.GetHeader("User-Agent"),
		AcceptLanguage: c.GetHeader("Accept-Language"),
		DNT:            c.GetHeader("DNT"),
		CacheControl:   c.GetHeader("Cache-Control"),
	}
}

// writeAdmissionError 统一处理签到与补录的错误
func writeAdmissionError(c *gin.Context, err error) {
	if rej, ok := service.AsRejection(err); ok {
		status := http.StatusForbidden
		if rej.Kind == service.RejectInput {
			status = http.StatusBadRequest
		}
		code, ok := rejectionCodes[rej.Reason]
		if !ok {
			code = 20000
		}
		response.ErrorWithData(c, status, code, rej.Message, rejectionResponse(rej))
		return
	}

	switch {
	case errors.Is(err, context.Canceled):
		response.ServiceUnavailable(c, 10006, "请求已取消")
	case errors.Is(err, pkgerrors.ErrDependency), errors.Is(err, context.DeadlineExceeded):
		response.ServiceUnavailable(c, 10007, "服务暂时不可用，请稍后重试")
	case errors.Is(err, pkgerrors.ErrIntegrity):
		response.Error(c, http.StatusInternalServerError, 20099, "签到记录写入异常，请联系管理员")
	default:
		response.InternalError(c)
	}
}

func rejectionResponse(rej *service.Rejection) *dto.CheckInResponse {
	return &dto.CheckInResponse{
		Accepted:       false,
		ReasonCode:     rej.Reason,
		Message:        rej.Message,
		DistanceMeters: rej.DistanceMeters,
		RadiusMeters:   rej.RadiusMeters,
		UsedEmail:      rej.UsedEmail,
		Indicators:     rej.Indicators,
		Confidence:     rej.Confidence,
	}
}
