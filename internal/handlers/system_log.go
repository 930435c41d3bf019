package handlers

import (
	"strconv"

	"github.com/bugnest/backend/internal/services"
	"github.com/bugnest/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type SystemLogHandler struct {
	logService *services.SystemLogService
}

func NewSystemLogHandler(logService *services.SystemLogService) *SystemLogHandler {
	return &SystemLogHandler{logService: logService}
}

// List handles GET /api/admin/logs (admin only).
func (h *SystemLogHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.logService.List(&services.SystemLogListRequest{
		Page:     page,
		PageSize: pageSize,
		Level:    c.Query("level"),
		Module:   c.Query("module"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
