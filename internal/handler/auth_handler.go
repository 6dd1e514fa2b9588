package handler

import (
	"net/http"

	"rbac/internal/middleware"
	"rbac/internal/service"
	"rbac/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
	gate        Gate
}

func NewAuthHandler(authService service.AuthService, gate Gate) *AuthHandler {
	return &AuthHandler{authService: authService, gate: gate}
}

// RegisterRoutes binds the /auth endpoints
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/signUp", h.gate.limited(), h.SignUp)
		auth.POST("/login", h.gate.limited(), h.Login)
		auth.POST("/refresh", h.gate.limited(), h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.GET("/checkAccess", h.gate.authenticated(), h.CheckAccess)
	}
}

// SignUp registers a user, or reclaims a deactivated account with the same email
// @Summary      Register
// @Description  Creates a user. A deactivated account with the same email is reactivated in place and returned in full with 200.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateUserRequest  true  "Registration payload"
// @Success      201      {object}  response.Response{data=service.RegisterResponse}
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /auth/signUp [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req service.CreateUserRequest
	if err := bindJSON(c, &req); err != nil {
		h.gate.fail(c, err)
		return
	}

	res, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.gate.fail(c, err)
		return
	}

	if res.Reactivated {
		c.JSON(http.StatusOK, response.Success(service.MsgUserReactivated, res.User))
		return
	}
	c.JSON(http.StatusCreated, response.Success(service.MsgRegisterSuccess, service.RegisterResponse{
		UserID: res.User.ID,
		Email:  res.User.Email,
	}))
}

// Login exchanges credentials for a token pair
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Credentials"
// @Success      200      {object}  response.Response{data=token.Pair}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		h.gate.fail(c, err)
		return
	}

	pair, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.gate.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(service.MsgLoginSuccess, pair))
}

// Refresh rotates the token pair
// @Summary      Refresh tokens
// @Description  Issues a new pair for a stored, unexpired refresh token. The old refresh token stops working.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RefreshRequest  true  "Refresh token"
// @Success      200      {object}  response.Response{data=token.Pair}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req service.RefreshRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.gate.fail(c, err)
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.gate.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(service.MsgRefreshSuccess, pair))
}

// Logout revokes a refresh token
// @Summary      Logout
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RefreshRequest  true  "Refresh token"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req service.RefreshRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.gate.fail(c, err)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.gate.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(service.MsgLogoutSuccess, nil))
}

// CheckAccess reports the caller's modules, or whether one module is granted
// @Summary      Check module access
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        module  query     string  false  "Module name"
// @Success      200     {object}  response.Response{data=service.ModuleAccessResponse}
// @Failure      401     {object}  response.Response
// @Router       /auth/checkAccess [get]
func (h *AuthHandler) CheckAccess(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		h.gate.fail(c, errNoIdentity)
		return
	}
	msg, data := h.authService.CheckAccess(id.AccessModules, c.Query("module"))
	c.JSON(http.StatusOK, response.Success(msg, data))
}
