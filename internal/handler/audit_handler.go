package handler

import (
	"net/http"

	"rbac/internal/middleware"
	"rbac/internal/service"
	"rbac/pkg/pagination"
	"rbac/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
	gate         Gate
}

func NewAuditHandler(auditService service.AuditService, gate Gate) *AuditHandler {
	return &AuditHandler{auditService: auditService, gate: gate}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/audit-logs", h.gate.module("audit", adminOnly, middleware.AuthorizeOptions{}), h.GetAuditLogs)
}

// GetAuditLogs returns identity events newest first
// @Summary      Get audit logs
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        action    query     string  false  "Exact action, e.g. role.deleted"
// @Param        actorId   query     string  false  "Acting user id"
// @Param        entityId  query     string  false  "Affected record id"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        size      query     int     false  "Page size (default 10, max 100)"
// @Success      200       {object}  response.Response{data=service.AuditLogListResponse}
// @Failure      400       {object}  response.Response
// @Failure      401       {object}  response.Response
// @Failure      403       {object}  response.Response
// @Router       /audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	var q service.AuditQuery
	if err := bindQuery(c, &q); err != nil {
		h.gate.fail(c, err)
		return
	}

	logs, err := h.auditService.ListAuditLogs(c.Request.Context(), q, pagination.Parse(c))
	if err != nil {
		h.gate.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(service.MsgAuditFetched, logs))
}
