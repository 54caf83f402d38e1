package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teamtasks/team-tasks-api/internal/application"
	"github.com/teamtasks/team-tasks-api/internal/container"
	handlers "github.com/teamtasks/team-tasks-api/internal/interface/http"
	"github.com/teamtasks/team-tasks-api/internal/interface/middleware"
)

// TaskModule wires task routes. Role and ownership rules are decided by
// the authorization engine inside the service, not at the route level,
// so every authenticated actor reaches the handlers.
type TaskModule struct {
	Handler *handlers.TaskHandler
	Auth    *application.AuthService
}

func NewTaskModule(h *handlers.TaskHandler, auth *application.AuthService) *TaskModule {
	return &TaskModule{Handler: h, Auth: auth}
}

func (m *TaskModule) Register(rg *gin.RouterGroup) {
	tasks := rg.Group("/tasks")
	tasks.Use(middleware.Auth(m.Auth))
	tasks.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByActor(), nil))

	tasks.GET("", m.Handler.List)
	tasks.POST("", m.Handler.Create)
	tasks.GET("/search", m.Handler.Search)
	tasks.GET("/:id", m.Handler.Get)
	tasks.PUT("/:id", m.Handler.Update)
	tasks.PATCH("/:id", m.Handler.Update)
	tasks.DELETE("/:id", m.Handler.Delete)
	tasks.POST("/:id/assign", m.Handler.Assign)
}
