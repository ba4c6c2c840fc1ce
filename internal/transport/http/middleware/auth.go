package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const errUnauthorized = "Unauthorized"

// Authenticator resolves a bearer token to a user ID. It never errors; a
// false result means the request stays anonymous.
type Authenticator interface {
	Authenticate(bearerToken string) (userID string, ok bool)
}

// Auth populates "userID" in the gin context from the Authorization header
// and rejects requests that do not carry a valid access token. Identity is
// request-scoped: nothing global is mutated.
func Auth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.Authenticate(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}
