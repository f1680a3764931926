package models

import (
	"context"

	"github.com/gin-gonic/gin"
)

type userContextKey struct{}

// SetUserContext stores the authenticated user in the context
func SetUserContext(ctx context.Context, user *User) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUserFromContext extracts the authenticated user from the context.
// It checks the Gin context's "user" key (set by the session and token
// middleware) first, then the plain context value.
func GetUserFromContext(ctx context.Context) *User {
	if ginCtx, ok := ctx.(*gin.Context); ok {
		if userVal, exists := ginCtx.Get("user"); exists {
			if user, ok := userVal.(*User); ok {
				return user
			}
		}
		return nil
	}

	if user, ok := ctx.Value(userContextKey{}).(*User); ok {
		return user
	}
	return nil
}

// GetUserIDFromContext extracts the user ID from the user object in context.
// Returns empty string if user cannot be determined.
func GetUserIDFromContext(ctx context.Context) string {
	if user := GetUserFromContext(ctx); user != nil {
		return user.ID
	}
	return ""
}

// GetUsernameFromContext extracts the username from the user object in context.
// Returns empty string if user cannot be determined.
func GetUsernameFromContext(ctx context.Context) string {
	if user := GetUserFromContext(ctx); user != nil {
		return user.Username
	}
	return ""
}
