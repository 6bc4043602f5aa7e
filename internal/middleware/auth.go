package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// identityKey is where RequireIdentity stores the authenticated identity in
// the request context.
const identityKey = "identity"

// legacyIdentityHeader is the header the previous access-control layer
// injected; still honored so existing proxy configs keep working.
const legacyIdentityHeader = "CF-Access-Authenticated-User-Email"

// RequireIdentity gates admin routes on the identity header injected by the
// trusted upstream proxy. Authentication itself happens at that boundary;
// here an absent or empty identity is simply anonymous and rejected.
func RequireIdentity(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := c.GetHeader(header)
		if identity == "" {
			identity = c.GetHeader(legacyIdentityHeader)
		}

		if identity == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// Identity returns the authenticated identity stored by RequireIdentity, or
// "" on routes that don't require one.
func Identity(c *gin.Context) string {
	return c.GetString(identityKey)
}
