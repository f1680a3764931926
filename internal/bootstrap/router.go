package bootstrap

import (
	"log"
	"net/http"

	"github.com/masasa123jp/docshub/internal/config"
	"github.com/masasa123jp/docshub/internal/handlers"
	"github.com/masasa123jp/docshub/internal/metrics"
	"github.com/masasa123jp/docshub/internal/middleware"
	"github.com/masasa123jp/docshub/internal/store"
	"github.com/masasa123jp/docshub/internal/templates"
	"github.com/masasa123jp/docshub/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(app *Application) *gin.Engine {
	cfg := app.Config

	r := gin.New()
	r.Use(metrics.HTTPMetricsMiddleware(app.MetricsRecorder))
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(util.IPMiddleware())

	setupSessionMiddleware(r, cfg)
	r.SetHTMLTemplate(templates.Load())

	r.GET("/health", createHealthCheckHandler(app.DB))
	setupMetricsEndpoint(r, cfg)

	authHandler := handlers.NewAuthHandler(app.UserService, app.SessionService, cfg)
	userHandler := handlers.NewUserHandler(app.UserService)
	clientHandler := handlers.NewClientHandler(app.ClientService)
	authzHandler := handlers.NewAuthorizationHandler(app.AuthorizationService)
	tokenHandler := handlers.NewTokenHandler(
		app.AuthorizationService, app.ClientService, app.TokenService)
	docHandler := handlers.NewDocumentHandler(app.DocumentService)
	auditHandler := handlers.NewAuditHandler(app.AuditService)

	// Browser flow: login and consent forms carry the CSRF token from the
	// signed flow cookie.
	browser := r.Group("/")
	browser.Use(middleware.CSRF())
	{
		browser.GET("/login", authHandler.LoginPage)
		browser.POST("/login", authHandler.Login)
		browser.GET("/logout", authHandler.Logout)

		authorize := browser.Group("/oauth")
		authorize.Use(middleware.RequireSession(app.SessionService))
		{
			authorize.GET("/authorize", authzHandler.AuthorizePage)
			authorize.POST("/authorize", authzHandler.Decide)
		}
	}

	// Public API.
	r.POST("/signup", userHandler.Signup)
	r.GET("/auth/validate_session", authHandler.ValidateSession)

	// Token endpoint family: authenticated by client credentials, not cookies.
	r.POST("/oauth/token", tokenHandler.Token)
	r.GET("/oauth/tokeninfo", tokenHandler.TokenInfo)
	r.POST("/oauth/revoke", tokenHandler.Revoke)

	// Account management: session-authenticated JSON API.
	account := r.Group("/account")
	account.Use(middleware.RequireSession(app.SessionService))
	{
		account.POST("/change_password", userHandler.ChangePassword)
	}

	// Client registry: session-authenticated JSON API.
	clientGroup := r.Group("/clients")
	clientGroup.Use(middleware.RequireSession(app.SessionService))
	{
		clientGroup.POST("/register", clientHandler.Register)
		clientGroup.GET("", clientHandler.List)
		clientGroup.POST("/:client_id/deactivate", clientHandler.Deactivate)
		clientGroup.POST("/:client_id/rotate_secret", clientHandler.RotateSecret)
	}

	// Bearer-protected resource API.
	api := r.Group("/api")
	api.Use(middleware.RequireToken(app.TokenService, app.UserService))
	{
		api.GET("/docs", docHandler.List)
		api.POST("/docs", docHandler.Create)
		api.GET("/docs/:id", docHandler.Get)
		api.PUT("/docs/:id", docHandler.Update)
		api.DELETE("/docs/:id", docHandler.Delete)

		audit := api.Group("/audit")
		audit.Use(middleware.RequireAdmin())
		{
			audit.GET("", auditHandler.List)
			audit.GET("/stats", auditHandler.Stats)
		}
	}

	log.Printf("Server configured at %s (base URL %s)", cfg.ServerAddr, cfg.BaseURL)
	return r
}

// setupSessionMiddleware configures the signed cookie used for the
// authorize-flow stash and CSRF token. Login state itself lives in DB rows,
// not in this cookie.
func setupSessionMiddleware(r *gin.Engine, cfg *config.Config) {
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionExpiration.Seconds()),
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("docshub_flow", sessionStore))
}

func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	if !cfg.EnableMetrics {
		log.Printf("Prometheus metrics disabled")
		return
	}
	log.Printf("Prometheus metrics enabled at /metrics")
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func createHealthCheckHandler(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
