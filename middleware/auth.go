package middleware

import (
	"context"
	"net/http"
	"strings"

	"solobuddy/models"
	"solobuddy/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const actorKey = "actor"

// GuideIdentityResolver maps a user account to the guide profile it owns.
type GuideIdentityResolver interface {
	ResolveGuideIdentity(ctx context.Context, userID string) (string, error)
}

// JWTAuthMiddleware validates the bearer token and stores the caller as an
// Actor on the context.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			zap.L().Debug("Rejected token", zap.Error(err))
			utils.JSONError(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		role := claims.Role
		if role == "" {
			role = models.RoleTraveler
		}
		c.Set(actorKey, models.Actor{
			UserID: claims.Subject,
			Role:   role,
			Name:   claims.Name,
			Email:  claims.Email,
		})
		c.Next()
	}
}

// RequireRole lets through callers whose role is one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		utils.RespondError(c, utils.Forbidden("this action requires role "+strings.Join(roles, " or ")))
	}
}

// RequireGuide resolves the caller's guide profile and records it on the
// actor. Callers without one get FORBIDDEN.
func RequireGuide(resolver GuideIdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor.Role != models.RoleGuide {
			utils.RespondError(c, utils.Forbidden("user is not a tour guide"))
			return
		}
		if resolveGuide(c, resolver, actor) {
			c.Next()
		}
	}
}

// AttachGuide resolves the guide profile of callers with the guide role so
// shared endpoints can scope results to it. Other callers pass through.
func AttachGuide(resolver GuideIdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor.Role != models.RoleGuide {
			c.Next()
			return
		}
		if resolveGuide(c, resolver, actor) {
			c.Next()
		}
	}
}

func resolveGuide(c *gin.Context, resolver GuideIdentityResolver, actor models.Actor) bool {
	guideID, err := resolver.ResolveGuideIdentity(c.Request.Context(), actor.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return false
	}
	actor.GuideID = guideID
	c.Set(actorKey, actor)
	return true
}

// ActorFrom returns the authenticated caller, or the zero Actor.
func ActorFrom(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Actor{}
}
