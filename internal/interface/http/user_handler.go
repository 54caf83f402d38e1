package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/teamtasks/team-tasks-api/internal/application"
	"github.com/teamtasks/team-tasks-api/internal/domain/entity"
	repo "github.com/teamtasks/team-tasks-api/internal/domain/repository"
	"github.com/teamtasks/team-tasks-api/internal/interface/middleware"
	"github.com/teamtasks/team-tasks-api/pkg/response"
	"github.com/teamtasks/team-tasks-api/pkg/validation"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type createUserRequest struct {
	Username string `json:"username" binding:"required,min=1,max=150"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"omitempty,pwd"`
	Role     string `json:"role" binding:"omitempty,oneof=ADMIN MANAGER MEMBER"`
}

type updateUserRequest struct {
	Username *string `json:"username" binding:"omitempty,min=1,max=150"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,pwd"`
	Role     *string `json:"role" binding:"omitempty,oneof=ADMIN MANAGER MEMBER"`
}

// List GET /api/users (admin)
func (h *UserHandler) List(c *gin.Context) {
	f := repo.UserFilter{Search: c.Query("search")}
	if r := c.Query("role"); r != "" {
		role := entity.Role(r)
		if !role.Valid() {
			response.Error[any](c, http.StatusBadRequest, "invalid role filter", nil)
			return
		}
		f.Role = &role
	}

	users, err := h.Svc.List(f)
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUserViews(users), "users", gin.H{"count": len(users)})
}

// Create POST /api/users (admin)
// Password is optional; without one the account cannot authenticate.
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Create(application.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     entity.Role(req.Role),
	})
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toUserView(u), "user created", nil)
}

// Get GET /api/users/:id (admin)
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Svc.Get(c.Param("id"))
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUserView(u), "user", nil)
}

// Update PUT/PATCH /api/users/:id (admin)
func (h *UserHandler) Update(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	in := application.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.Role != nil {
		role := entity.Role(*req.Role)
		in.Role = &role
	}

	u, err := h.Svc.Update(actor, c.Param("id"), in)
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUserView(u), "user updated", nil)
}

// Delete DELETE /api/users/:id (admin)
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Param("id")); err != nil {
		writeAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me GET /api/users/me (any authenticated user)
func (h *UserHandler) Me(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	u, err := h.Svc.Get(actor.ID)
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUserView(u), "profile", nil)
}

// Options GET /api/users/options (manager/admin)
// Assignment picker: every user, lite representation.
func (h *UserHandler) Options(c *gin.Context) {
	users, err := h.Svc.Options()
	if err != nil {
		writeAppError(c, err)
		return
	}
	out := make([]userLite, 0, len(users))
	for _, u := range users {
		out = append(out, userLite{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role})
	}
	response.Success(c, http.StatusOK, out, "assignable users", gin.H{"count": len(out)})
}
