package middleware

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/masasa123jp/docshub/internal/services"
	"github.com/masasa123jp/docshub/internal/token"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the opaque server-side session ID
const SessionCookieName = "session_id"

// RequireSession resolves the session_id cookie to a user and aborts to the
// login page when the session is missing or invalid. The authenticated user
// is stored under the "user" context key.
func RequireSession(sessionService *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookieName)
		if err != nil || sid == "" {
			redirectToLogin(c)
			return
		}

		user, err := sessionService.Validate(c.Request.Context(), sid)
		if err != nil {
			redirectToLogin(c)
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

func redirectToLogin(c *gin.Context) {
	next := url.QueryEscape(c.Request.URL.String())
	c.Redirect(http.StatusFound, "/login?next="+next)
	c.Abort()
}

// RequireAdmin allows only users with the admin role. Must run after
// RequireSession or RequireToken.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || !user.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireToken authenticates API requests with a bearer access token. The
// token must carry a valid signature, be unexpired, and not appear in the
// revocation ledger; its subject must still be an active user.
func RequireToken(
	tokenService *services.TokenService,
	userService *services.UserService,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			unauthorized(c)
			return
		}

		result, err := tokenService.Verify(c.Request.Context(), tokenString)
		if err != nil {
			// The rejection cause (bad signature, expired, revoked) stays in
			// logs and metrics; the response never distinguishes them.
			if !token.IsRejection(err) {
				log.Printf("[Auth] Token verification unavailable: %v", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "server_error"})
				c.Abort()
				return
			}
			unauthorized(c)
			return
		}

		user, err := userService.GetUserByID(result.UserID)
		if err != nil || !user.IsActive {
			unauthorized(c)
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("token_claims", result)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// unauthorized emits the single 401 shape every bearer failure gets. Missing,
// malformed, expired, and revoked tokens are indistinguishable to the caller.
func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", `Bearer realm="docshub", error="invalid_token"`)
	c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
	c.Abort()
}
