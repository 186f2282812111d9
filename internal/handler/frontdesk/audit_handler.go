package frontdesk

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
)

// AuditHandler 操作日志查询
type AuditHandler struct {
	logRepo *repository.OperationLogRepository
}

// NewAuditHandler 创建操作日志处理器
func NewAuditHandler(logRepo *repository.OperationLogRepository) *AuditHandler {
	return &AuditHandler{logRepo: logRepo}
}

// ListOperationLogs 操作日志列表
// @Summary 前台操作日志（仅经理）
// @Tags 审计
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param staff_id query int false "员工ID"
// @Param module query string false "模块"
// @Param action query string false "操作"
// @Param target_type query string false "目标类型"
// @Param target_id query int false "目标ID"
// @Param start_date query string false "开始日期 YYYY-MM-DD"
// @Param end_date query string false "结束日期 YYYY-MM-DD"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/operation-logs [get]
func (h *AuditHandler) ListOperationLogs(c *gin.Context) {
	staffID, ok := handler.ParseQueryID(c, "staff_id", "员工")
	if !ok {
		return
	}
	targetID, ok := handler.ParseQueryID(c, "target_id", "目标")
	if !ok {
		return
	}

	filters := &repository.OperationLogFilters{
		StaffID:    staffID,
		Module:     c.Query("module"),
		Action:     c.Query("action"),
		TargetType: c.Query("target_type"),
		TargetID:   targetID,
	}
	if s := c.Query("start_date"); s != "" {
		start, err := handler.ParseDate(s)
		if err != nil {
			response.BadRequest(c, "无效的开始日期格式")
			return
		}
		filters.StartTime = &start
	}
	if s := c.Query("end_date"); s != "" {
		end, err := handler.ParseDate(s)
		if err != nil {
			response.BadRequest(c, "无效的结束日期格式")
			return
		}
		endOfDay := end.AddDate(0, 0, 1).Add(-1)
		filters.EndTime = &endOfDay
	}

	p := handler.BindPagination(c)
	logs, total, err := h.logRepo.List(c.Request.Context(), p.GetOffset(), p.GetLimit(), filters)
	handler.MustSucceedPage(c, err, logs, total, p.Page, p.PageSize)
}
