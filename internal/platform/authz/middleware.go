package authz

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"kintai-backend/internal/platform/auth"
)

// RequirePrivileged: manager/admin のみ通すルート用。
// JWT のクレームではなく毎回 user_roles を引く（ロール付与・剥奪が即時反映される）。
func RequirePrivileged(a *Authorizer) gin.HandlerFunc {
	return RequireAnyRole(a, RoleManager, RoleAdmin)
}

func RequireAnyRole(a *Authorizer, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetString(auth.CtxUserIDKey)
		if actorID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}

		ok, err := a.HasAnyRole(c.Request.Context(), actorID, roles...)
		if err != nil {
			log.Printf("[ERROR] role check failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "role check failed"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}
