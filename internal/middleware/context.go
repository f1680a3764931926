package middleware

import (
	"github.com/masasa123jp/docshub/internal/models"

	"github.com/gin-gonic/gin"
)

// currentUser returns the authenticated user set by RequireSession or
// RequireToken, or nil.
func currentUser(c *gin.Context) *models.User {
	val, exists := c.Get("user")
	if !exists {
		return nil
	}
	user, ok := val.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// CurrentUser exposes the authenticated user to handlers
func CurrentUser(c *gin.Context) *models.User {
	return currentUser(c)
}
