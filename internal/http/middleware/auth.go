// README: Firebase ID token middleware for booking routes.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chauffeur/internal/infra"
)

const ctxUID = "auth.uid"

func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		t, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxUID, t.UID)
		c.Next()
	}
}

// CallerUID returns the verified uid, or "" on unauthenticated routes.
func CallerUID(c *gin.Context) string {
	return c.GetString(ctxUID)
}
