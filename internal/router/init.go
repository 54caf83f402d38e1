package router

import (
	"github.com/teamtasks/team-tasks-api/internal/application"
	"github.com/teamtasks/team-tasks-api/internal/container"
	pginfra "github.com/teamtasks/team-tasks-api/internal/infrastructure/postgres"
	handlers "github.com/teamtasks/team-tasks-api/internal/interface/http"
	"github.com/teamtasks/team-tasks-api/internal/router/modules"
	"github.com/teamtasks/team-tasks-api/pkg/helpers"
	"github.com/teamtasks/team-tasks-api/pkg/search"
)

// InitModules builds the services from the container singletons and
// registers every feature module with the router registry. Called once
// during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	userRepo := pginfra.NewUserRepository(pool)
	taskRepo := pginfra.NewTaskRepository(pool)

	blacklist := helpers.NewRedisBlacklist(container.GetRedis())
	authSvc := application.NewAuthService(userRepo, container.GetJWT(), blacklist, logger)
	userSvc := application.NewUserService(userRepo, logger)

	index := search.NewTaskIndex(container.GetES(), cfg.ESTasksIndex, logger)
	var events application.EventPublisher
	if pub := container.GetRabbitPub(); pub != nil {
		events = pub
	}
	taskSvc := application.NewTaskService(taskRepo, userRepo, index, events, logger)

	authHandler := handlers.NewAuthHandler(authSvc, logger)
	userHandler := handlers.NewUserHandler(userSvc, logger)
	taskHandler := handlers.NewTaskHandler(taskSvc, logger)

	r.Add(modules.NewAuthModule(authHandler, authSvc))
	r.Add(modules.NewUserModule(userHandler, authSvc))
	r.Add(modules.NewTaskModule(taskHandler, authSvc))
}
