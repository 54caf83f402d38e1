package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teamtasks/team-tasks-api/internal/application"
	"github.com/teamtasks/team-tasks-api/internal/container"
	"github.com/teamtasks/team-tasks-api/internal/domain/entity"
	handlers "github.com/teamtasks/team-tasks-api/internal/interface/http"
	"github.com/teamtasks/team-tasks-api/internal/interface/middleware"
)

// UserModule wires user management routes.
// me: any authenticated user; options: manager/admin; everything else
// is admin only.
type UserModule struct {
	Handler *handlers.UserHandler
	Auth    *application.AuthService
}

func NewUserModule(h *handlers.UserHandler, auth *application.AuthService) *UserModule {
	return &UserModule{Handler: h, Auth: auth}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(middleware.Auth(m.Auth))
	users.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByActor(), nil))

	users.GET("/me", m.Handler.Me)
	users.GET("/options", middleware.RequireRoles(entity.RoleManager, entity.RoleAdmin), m.Handler.Options)

	adminOnly := middleware.RequireRoles(entity.RoleAdmin)
	users.GET("", adminOnly, m.Handler.List)
	users.POST("", adminOnly, m.Handler.Create)
	users.GET("/:id", adminOnly, m.Handler.Get)
	users.PUT("/:id", adminOnly, m.Handler.Update)
	users.PATCH("/:id", adminOnly, m.Handler.Update)
	users.DELETE("/:id", adminOnly, m.Handler.Delete)
}
