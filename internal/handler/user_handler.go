package handler

import (
	"net/http"

	"rbac/internal/middleware"
	"rbac/internal/service"
	"rbac/pkg/pagination"
	"rbac/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
	gate        Gate
}

// NewUserHandler sets up the routing dependencies for User endpoints
func NewUserHandler(userService service.UserService, gate Gate) *UserHandler {
	return &UserHandler{userService: userService, gate: gate}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	none := middleware.AuthorizeOptions{}
	own := middleware.AuthorizeOptions{IsOwn: true}
	validID := middleware.ValidTargetID()

	users := router.Group("/user")
	{
		users.POST("", h.gate.module("users", adminOrManager, none), h.CreateUser)
		users.GET("", h.gate.module("users", staffRoles, none), h.ListUsers)
		// Registered before /:id so "bulk" is never taken for an id.
		users.PATCH("/bulk/same", h.gate.module("users", adminOnly, none), h.BulkUpdateSame)
		users.PATCH("/bulk/different", h.gate.module("users", adminOnly, none), h.BulkUpdateDifferent)
		users.GET("/:id", h.gate.module("users", staffRoles, own, validID), h.GetUser)
		users.PUT("/:id", h.gate.module("users", adminOrManager, own, validID), h.UpdateUser)
		users.DELETE("/:id", h.gate.module("users", adminOnly, none, validID), h.DeleteUser)
	}
}

// CreateUser handles POST /user
// @Summary      Create a new user
// @Description  Creates a user, or reactivates a deactivated account with the same email
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateUserRequest  true  "Create User Payload"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /user [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := bindJSON(c, &req); err != nil {
		h.gate.fail(c, err)
		return
	}

	res, err := h.userService.CreateOrReactivate(c.Request.Context(), actorID(c), req)
	if err != nil {
		h.gate.fail(c, err)
		return
	}

	if res.Reactivated {
		c.JSON(http.StatusOK, response.Success(service.MsgUserReactivated, res.User))
		return
	}
	c.JSON(http.StatusCreated, response.Success(service.MsgUserCreated, res.User))
}

// ListUsers handles GET /user
// @Summary      List users
// @Description  Paginated users with their role, newest first
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        search    query     string  false  "Matches first name, last name or email"
// @Param        isActive  query     string  false  "true (default) or false"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        size      query     int     false  "Page size (default 10, max 100)"
// @Success      200       {object}  response.Response{data=service.UserListResponse}
// @Router       /user [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var q service.ListQuery
	if err := bindQuery(c, &q); err != nil {
		h.gate.fail(c, err)
		return
	}

	res, err := h.userService.ListUsers(c.Request.Context(), q, pagination.Parse(c))
	if err != nil {
		h.gate.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(service.MsgUsersFetched, res))
}

// GetUser handles GET /user/:id
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /user/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.gate.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(service.MsgUserFetched, user))
}

// UpdateUser handles PUT /user/:id
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "User ID"
// @Param        payload  body      service.UpdateUserRequest  true  "Update User Payload"
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /user/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req service.UpdateUserRequest
	if err := bindJSON(c, &req); err != nil {
		h.gate.fail(c, err)
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		h.gate.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(service.MsgUserUpdated, user))
}

// DeleteUser handles DELETE /user/:id. Accounts are deactivated, never removed.
// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=service.DeleteUserResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /user/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	res, err := h.userService.DeleteUser(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		h.gate.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(service.MsgUserDeleted, res))
}

// BulkUpdateSame handles PATCH /user/bulk/same
// @Summary      Bulk update all active users
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.BulkSameRequest  true  "Fields applied to every active user"
// @Success      200      {object}  response.Response{data=repository.BulkResult}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /user/bulk/same [patch]
func (h *UserHandler) BulkUpdateSame(c *gin.Context) {
	var req service.BulkSameRequest
	if err := bindJSON(c, &req); err != nil {
		h.gate.fail(c, err)
		return
	}

	res, err := h.userService.BulkUpdateSame(c.Request.Context(), actorID(c), req)
	if err != nil {
		h.gate.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(service.MsgBulkSameDone, res))
}

// BulkUpdateDifferent handles PATCH /user/bulk/different. Either every entry applies or none.
// @Summary      Bulk update users individually
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.BulkDifferentRequest  true  "Per-user changes"
// @Success      200      {object}  response.Response{data=repository.BulkResult}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /user/bulk/different [patch]
func (h *UserHandler) BulkUpdateDifferent(c *gin.Context) {
	var req service.BulkDifferentRequest
	if err := bindJSON(c, &req); err != nil {
		h.gate.fail(c, err)
		return
	}

	res, err := h.userService.BulkUpdateDifferent(c.Request.Context(), actorID(c), req)
	if err != nil {
		h.gate.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(service.MsgBulkDifferentOK, res))
}
