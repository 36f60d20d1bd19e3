package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const sessionCookieName = "session_id"

const contextKeyUserID = "user_id"

// UserIDFromContext returns the user ID stored by RequireSession, or 0
// when the request never passed through it.
func UserIDFromContext(c *gin.Context) int64 {
	if v, ok := c.Get(contextKeyUserID); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// RequireSession resolves the session cookie against the session store
// and puts the owning user ID into the request context. Requests with a
// missing, expired or unknown cookie are rejected with 401 before any
// handler runs.
func RequireSession(sessions *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(sessionCookieName)
		if err != nil || sessionID == "" {
			unauthorized(c)
			return
		}
		userID, ok := sessions.GetUserID(c.Request.Context(), sessionID)
		if !ok {
			unauthorized(c)
			return
		}
		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
}
