package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/maamriaabderahmene/greve-ensta/internal/service"
	"github.com/maamriaabderahmene/greve-ensta/pkg/response"
)

// AntiFraudHandler 反作弊检测 HTTP 处理器
type AntiFraudHandler struct {
	antiFraudSvc service.AntiFraudService
}

// NewAntiFraudHandler 创建 AntiFraudHandler
func NewAntiFraudHandler(antiFraudSvc service.AntiFraudService) *AntiFraudHandler {
	return &AntiFraudHandler{antiFraudSvc: antiFraudSvc}
}

// PrivateCheck 服务端隐私浏览检测
// POST /api/v1/antifraud/private-check
func (h *AntiFraudHandler) PrivateCheck(c *gin.Context) {
	response.OK(c, h.antiFraudSvc.CheckPrivate(requestHeaders(c)))
}
