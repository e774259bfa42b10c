package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/maamriaabderahmene/greve-ensta/internal/dto"
	"github.com/maamriaabderahmene/greve-ensta/internal/service"
	"github.com/maamriaabderahmene/greve-ensta/pkg/response"
)

// StudentHandler 学生查询 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// ListStudents 学生分页列表
// GET /api/v1/admin/students
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.studentSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetStudent 按邮箱查询学生及签到记录
// GET /api/v1/admin/students/:email
func (h *StudentHandler) GetStudent(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		response.BadRequest(c, 10001, "邮箱不能为空")
		return
	}

	result, err := h.studentSvc.GetByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			response.NotFound(c, 17001, "学生不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
