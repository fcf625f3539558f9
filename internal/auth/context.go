package auth

import "github.com/gin-gonic/gin"

const (
	ctxUserIDKey = "userID"
	ctxRoleKey   = "userRole"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	if v, ok := c.Get(ctxUserIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetUserRole returns the authenticated user's role claim or empty string.
func GetUserRole(c *gin.Context) string {
	if v, ok := c.Get(ctxRoleKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// SetIdentity stores the caller identity on the context.
func SetIdentity(c *gin.Context, userID, role string) {
	c.Set(ctxUserIDKey, userID)
	c.Set(ctxRoleKey, role)
}
