package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teamtasks/team-tasks-api/internal/application"
	"github.com/teamtasks/team-tasks-api/internal/container"
	handlers "github.com/teamtasks/team-tasks-api/internal/interface/http"
	"github.com/teamtasks/team-tasks-api/internal/interface/middleware"
)

// AuthModule wires the session lifecycle endpoints.
// Public: register, login, refresh. Protected: logout.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Auth    *application.AuthService
}

func NewAuthModule(h *handlers.AuthHandler, auth *application.AuthService) *AuthModule {
	return &AuthModule{Handler: h, Auth: auth}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Internal callers (probes, smoke tests) skip the brute-force limits.
	fromInside := middleware.AllowPrivateIP()
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), fromInside)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), fromInside)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), fromInside)

	// Register resolves the actor when a token is present: admins may set
	// roles, anonymous callers are forced to MEMBER.
	rg.POST("/auth/register", registerLimiter, middleware.OptionalAuth(m.Auth), m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/refresh", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Auth))
	{
		auth.POST("/auth/logout", m.Handler.Logout)
	}
}
