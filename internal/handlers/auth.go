package handlers

import (
	"net/http"

	"github.com/masasa123jp/docshub/internal/config"
	"github.com/masasa123jp/docshub/internal/middleware"
	"github.com/masasa123jp/docshub/internal/services"
	"github.com/masasa123jp/docshub/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves the browser login/logout flow and the session
// validation endpoint used by relying applications.
type AuthHandler struct {
	userService    *services.UserService
	sessionService *services.SessionService
	config         *config.Config
}

func NewAuthHandler(
	us *services.UserService,
	ss *services.SessionService,
	cfg *config.Config,
) *AuthHandler {
	return &AuthHandler{
		userService:    us,
		sessionService: ss,
		config:         cfg,
	}
}

// LoginPage renders the login form
func (h *AuthHandler) LoginPage(c *gin.Context) {
	// An already valid session skips the form.
	if sid, err := c.Cookie(middleware.SessionCookieName); err == nil {
		if _, err := h.sessionService.Validate(c.Request.Context(), sid); err == nil {
			c.Redirect(http.StatusFound, h.safeNext(c.Query("next")))
			return
		}
	}

	c.HTML(http.StatusOK, "login.html", gin.H{
		"CSRFToken": middleware.GetCSRFToken(c),
		"Next":      h.safeNext(c.Query("next")),
		"Error":     "",
	})
}

// Login handles the login form submission and mints the session cookie
func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	next := h.safeNext(c.PostForm("next"))

	user, err := h.userService.Authenticate(c, username, password)
	if err != nil {
		// One message for every failure mode.
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"CSRFToken": middleware.GetCSRFToken(c),
			"Next":      next,
			"Error":     "Invalid username or password",
		})
		return
	}

	session, err := h.sessionService.Login(c, user)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"Error": "Failed to create session",
		})
		return
	}

	h.setSessionCookie(c, session.SID, int(h.config.SessionExpiration.Seconds()))
	c.Redirect(http.StatusFound, next)
}

// Logout destroys the session row and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	if sid, err := c.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.sessionService.Destroy(c, sid); err != nil {
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{
				"Error": "Failed to destroy session",
			})
			return
		}
	}

	h.setSessionCookie(c, "", -1)
	c.Redirect(http.StatusFound, "/login")
}

// ValidateSession lets relying applications check a session ID they received
// out of band. Responds 200 with the user identity or 401.
func (h *AuthHandler) ValidateSession(c *gin.Context) {
	sid := c.Query("sid")

	user, err := h.sessionService.Validate(c.Request.Context(), sid)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":  user.ID,
		"username": user.Username,
	})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.SessionCookieName,
		value,
		maxAge,
		"/",
		"",
		h.config.SecureCookies,
		true, // httponly; the SID must never be readable from scripts
	)
}

func (h *AuthHandler) safeNext(next string) string {
	if next == "" || !util.IsRedirectSafe(next, h.config.BaseURL) {
		return "/"
	}
	return next
}
