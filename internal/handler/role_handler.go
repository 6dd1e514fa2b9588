package handler

import (
	"net/http"

	"rbac/internal/middleware"
	"rbac/internal/service"
	"rbac/pkg/pagination"
	"rbac/pkg/response"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleService service.RoleService
	gate        Gate
}

func NewRoleHandler(roleService service.RoleService, gate Gate) *RoleHandler {
	return &RoleHandler{roleService: roleService, gate: gate}
}

func (h *RoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	none := middleware.AuthorizeOptions{}
	protect := middleware.ProtectSystemRole(h.gate.Roles)

	roles := router.Group("/role")
	{
		// Public so the sign-up form can offer a role picker.
		roles.GET("", h.ListRoles)
		roles.POST("", h.gate.module("roles", adminOnly, none), h.CreateRole)
		roles.GET("/:id", h.gate.module("roles", adminOrManager, none, middleware.ValidTargetID()), h.GetRole)
		roles.PUT("/:id", h.gate.module("roles", adminOnly, none, protect), h.UpdateRole)
		roles.DELETE("/:id", h.gate.module("roles", adminOnly, none, protect), h.DeleteRole)
	}
}

// ListRoles returns roles with search and pagination
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Param        search    query     string  false  "Case-insensitive role name filter"
// @Param        isActive  query     string  false  "true (default) or false"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        size      query     int     false  "Page size (default 10, max 100)"
// @Success      200       {object}  response.Response{data=service.RoleListResponse}
// @Router       /role [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	var q service.ListQuery
	if err := bindQuery(c, &q); err != nil {
		h.gate.fail(c, err)
		return
	}

	res, err := h.roleService.ListRoles(c.Request.Context(), q, pagination.Parse(c))
	if err != nil {
		h.gate.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(service.MsgRolesFetched, res))
}

// GetRole returns a single role
// @Summary      Get role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Role ID"
// @Success      200  {object}  response.Response{data=service.RoleResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /role/{id} [get]
func (h *RoleHandler) GetRole(c *gin.Context) {
	role, err := h.roleService.GetRole(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.gate.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(service.MsgRoleFetched, role))
}

// CreateRole creates a custom role
// @Summary      Create role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRoleRequest  true  "Role payload"
// @Success      201      {object}  response.Response{data=object}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /role [post]
func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req service.CreateRoleRequest
	if err := bindJSON(c, &req); err != nil {
		h.gate.fail(c, err)
		return
	}

	role, err := h.roleService.CreateRole(c.Request.Context(), actorID(c), req)
	if err != nil {
		h.gate.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(service.MsgRoleCreated, gin.H{"newRole": role}))
}

// UpdateRole renames a role or adds/removes one module
// @Summary      Update role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Role ID"
// @Param        payload  body      service.UpdateRoleRequest  true  "Changes"
// @Success      200      {object}  response.Response{data=service.RoleResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /role/{id} [put]
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	role, ok := middleware.TargetRoleFrom(c)
	if !ok {
		h.gate.fail(c, errNoTargetRole)
		return
	}
	var req service.UpdateRoleRequest
	if err := bindJSON(c, &req); err != nil {
		h.gate.fail(c, err)
		return
	}

	res, err := h.roleService.UpdateRole(c.Request.Context(), actorID(c), role, req)
	if err != nil {
		h.gate.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(service.MsgRoleUpdated, res))
}

// DeleteRole deletes a role, optionally moving its users to another role first
// @Summary      Delete role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true   "Role ID"
// @Param        payload  body      service.DeleteRoleRequest  false  "Transfer target"
// @Success      200      {object}  response.Response{data=service.DeleteRoleResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /role/{id} [delete]
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	role, ok := middleware.TargetRoleFrom(c)
	if !ok {
		h.gate.fail(c, errNoTargetRole)
		return
	}
	var req service.DeleteRoleRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.gate.fail(c, err)
		return
	}

	res, err := h.roleService.DeleteRole(c.Request.Context(), actorID(c), role, req)
	if err != nil {
		h.gate.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(service.MsgRoleDeleted, res))
}
