package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/maamriaabderahmene/greve-ensta/internal/dto"
	"github.com/maamriaabderahmene/greve-ensta/internal/service"
	pkgerrors "github.com/maamriaabderahmene/greve-ensta/pkg/errors"
	"github.com/maamriaabderahmene/greve-ensta/pkg/response"
)

// IPHandler IP 登记 HTTP 处理器
type IPHandler struct {
	ipSvc service.IPRegistrationService
	ips   *ClientIPResolver
}

// NewIPHandler 创建 IPHandler
func NewIPHandler(ipSvc service.IPRegistrationService, ips *ClientIPResolver) *IPHandler {
	return &IPHandler{ipSvc: ipSvc, ips: ips}
}

// ClientIP 回显服务端识别到的 IP 与 UA
// GET /api/v1/ip
func (h *IPHandler) ClientIP(c *gin.Context) {
	ip := h.ips.Resolve(c)
	if ip == "" {
		response.BadRequest(c, 23001, "无法识别 IP 地址")
		return
	}

	response.OK(c, &dto.ClientIPResponse{IP: ip, UserAgent: c.GetHeader("User-Agent")})
}

// Register 登记当前 IP
// POST /api/v1/ip/register
func (h *IPHandler) Register(c *gin.Context) {
	result, err := h.ipSvc.Register(c.Request.Context(), h.ips.Resolve(c), c.GetHeader("User-Agent"))
	if err != nil {
		h.handleIPError(c, err)
		return
	}

	response.OK(c, result)
}

// Status 查询当前 IP 登记状态
// GET /api/v1/ip/status
func (h *IPHandler) Status(c *gin.Context) {
	result, err := h.ipSvc.Status(c.Request.Context(), h.ips.Resolve(c))
	if err != nil {
		h.handleIPError(c, err)
		return
	}

	response.OK(c, result)
}

// handleIPError 统一处理 IP 登记业务错误
func (h *IPHandler) handleIPError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrIPUnavailable):
		response.BadRequest(c, 23001, "无法识别 IP 地址")
	case errors.Is(err, pkgerrors.ErrDependency):
		response.ServiceUnavailable(c, 10007, "服务暂时不可用，请稍后重试")
	default:
		response.InternalError(c)
	}
}
