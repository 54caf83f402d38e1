package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/teamtasks/team-tasks-api/internal/application"
	"github.com/teamtasks/team-tasks-api/internal/domain/apperror"
	"github.com/teamtasks/team-tasks-api/internal/domain/entity"
	"github.com/teamtasks/team-tasks-api/pkg/response"
)

const CtxActorKey = "actor"

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Auth validates the bearer access token and stores the resolved actor
// in the Gin context.
func Auth(auth *application.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			ae := apperror.Unauthenticated("missing access token")
			response.AbortError(c, ae.HTTPStatus(), ae.Message, nil)
			return
		}
		actor, err := auth.Verify(token)
		if err != nil {
			ae := apperror.From(err)
			response.AbortError(c, ae.HTTPStatus(), ae.Message, nil)
			return
		}
		c.Set(CtxActorKey, *actor)
		c.Next()
	}
}

// OptionalAuth resolves an actor when a valid bearer token is present
// but lets anonymous requests through. Used by registration, where the
// rules differ for anonymous, member and admin callers.
func OptionalAuth(auth *application.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if actor, err := auth.Verify(token); err == nil {
				c.Set(CtxActorKey, *actor)
			}
		}
		c.Next()
	}
}

// RequireRoles aborts with 403 unless the actor holds one of the given
// roles. Must run after Auth.
func RequireRoles(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			response.AbortError(c, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		response.AbortError(c, http.StatusForbidden, "insufficient role", nil)
	}
}

// ActorFrom returns the authenticated actor stored by Auth.
func ActorFrom(c *gin.Context) (application.Actor, bool) {
	v, ok := c.Get(CtxActorKey)
	if !ok {
		return application.Actor{}, false
	}
	actor, ok := v.(application.Actor)
	return actor, ok
}
