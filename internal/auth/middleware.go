package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pbp/bookorama/internal/domain/models"
	"github.com/pbp/bookorama/internal/logger"
)

// TokenFromRequest extracts the raw session token: cookie first, then a
// "Bearer <token>" Authorization header. Empty string when neither is set.
func TokenFromRequest(ctx *gin.Context) string {
	if cookie, err := ctx.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	tokenHeader := ctx.GetHeader("Authorization")
	if tokenHeader == "" {
		return ""
	}
	tokenParts := strings.Split(tokenHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return ""
	}
	return tokenParts[1]
}

// RequireAuth admits any authenticated user and stores the resolved identity
// in the request context. The request is aborted on any failure; no handler
// runs after a negative result.
func (s *Sessions) RequireAuth() gin.HandlerFunc {
	return s.RequireRole()
}

// RequireRole admits only identities whose role matches one of the given
// roles; with no roles it behaves like RequireAuth.
func (s *Sessions) RequireRole(roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		log := logger.Get()
		id, err := s.Authorize(TokenFromRequest(ctx), roles...)
		if err != nil {
			if err == ErrForbidden {
				ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"status":  "error",
					"message": "Access denied",
				})
				return
			}
			log.Debug().Err(err).Str("path", ctx.FullPath()).Msg("session rejected")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Unauthorized",
			})
			return
		}
		ctx.Set("uid", id.UID)
		ctx.Set("email", id.Email)
		ctx.Set("role", id.Role)
		ctx.Next()
	}
}

// IdentityFromContext rebuilds the Identity stored by the middleware.
func IdentityFromContext(ctx *gin.Context) (models.Identity, bool) {
	uid := ctx.GetString("uid")
	if uid == "" {
		return models.Identity{}, false
	}
	return models.Identity{
		UID:   uid,
		Email: ctx.GetString("email"),
		Role:  ctx.GetString("role"),
	}, true
}
