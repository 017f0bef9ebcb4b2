package middleware

import (
	"net/http"

	"blocks-cms/internal/domain/usergroups"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RequirePermission lets admins through and otherwise requires one of the
// caller's user groups to grant name at level or above.
func RequirePermission(groups *usergroups.Service, name string, level int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") == "admin" {
			c.Next()
			return
		}
		userID := c.GetUint("user_id")
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		ok, err := groups.Can(c.Request.Context(), userID, name, level)
		if err != nil {
			log.Error().Err(err).Uint("user_id", userID).Str("permission", name).Msg("permission lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Permission check failed"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Missing permission " + name})
			return
		}

		c.Next()
	}
}
