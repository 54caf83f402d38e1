package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/teamtasks/team-tasks-api/internal/application"
	"github.com/teamtasks/team-tasks-api/internal/domain/apperror"
	"github.com/teamtasks/team-tasks-api/internal/domain/entity"
	"github.com/teamtasks/team-tasks-api/internal/interface/middleware"
	"github.com/teamtasks/team-tasks-api/pkg/response"
	"github.com/teamtasks/team-tasks-api/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=1,max=150"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Role     string `json:"role" binding:"omitempty,oneof=ADMIN MANAGER MEMBER"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

func writeAppError(c *gin.Context, err error) {
	ae := apperror.From(err)
	response.Error[any](c, ae.HTTPStatus(), ae.Message, ae.Details)
}

// Register POST /api/auth/register
// Anonymous callers always become MEMBER; only admins may pick a role.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	var actor *application.Actor
	if a, ok := middleware.ActorFrom(c); ok {
		actor = &a
	}

	u, err := h.Svc.Register(c.Request.Context(), actor, application.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     entity.Role(req.Role),
	})
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toUserView(u), "user registered", nil)
}

// Login POST /api/auth/login
// Bad credentials return 400, matching the public wire contract.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, pair, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid username or password", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"access":  pair.AccessToken,
		"refresh": pair.RefreshToken,
		"user": userLite{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Role:     u.Role,
		},
	}, "login successful", gin.H{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Refresh POST /api/auth/refresh
// Rotates the refresh token: the consumed token is revoked and replaying
// it fails.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	_, pair, err := h.Svc.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"access":  pair.AccessToken,
		"refresh": pair.RefreshToken,
	}, "token refreshed", gin.H{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Logout POST /api/auth/logout
// Strict contract: an invalid or already-revoked refresh token is a 400,
// never a silent success.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "refresh token is required", validation.ToDetails(err))
		return
	}

	if err := h.Svc.Logout(c.Request.Context(), req.Refresh); err != nil {
		writeAppError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out successfully", nil)
}
