package bootstrap

import (
	"fmt"
	"net/http"

	"github.com/masasa123jp/docshub/internal/cache"
	"github.com/masasa123jp/docshub/internal/config"
	"github.com/masasa123jp/docshub/internal/metrics"
	"github.com/masasa123jp/docshub/internal/models"
	"github.com/masasa123jp/docshub/internal/services"
	"github.com/masasa123jp/docshub/internal/store"
	"github.com/masasa123jp/docshub/internal/token"

	"github.com/gin-gonic/gin"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB              *store.Store
	MetricsRecorder metrics.Recorder
	ClientCache     cache.Cache[models.Client]
	MetricsCache    cache.CacheWithFetch[int64]
	cacheClosers    []func() error

	// Services
	AuditService         *services.AuditService
	UserService          *services.UserService
	SessionService       *services.SessionService
	ClientService        *services.ClientService
	AuthorizationService *services.AuthorizationService
	TokenService         *services.TokenService
	DocumentService      *services.DocumentService

	// HTTP
	Router *gin.Engine
	Server *http.Server
}

// Run initializes every layer and serves until shutdown
func Run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{Config: cfg}

	if err := app.initializeInfrastructure(); err != nil {
		return err
	}
	app.initializeBusinessLayer()
	app.initializeHTTPLayer()

	app.startWithGracefulShutdown()
	return nil
}

func (app *Application) initializeInfrastructure() error {
	var err error

	app.DB, err = store.New(app.Config.DatabaseDriver, app.Config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	app.MetricsRecorder = metrics.Init(app.Config.EnableMetrics)

	if err := app.initializeCaches(); err != nil {
		return err
	}

	return nil
}

func (app *Application) initializeBusinessLayer() {
	app.AuditService = services.NewAuditService(app.DB, true, 0)

	app.UserService = services.NewUserService(app.DB, app.AuditService, app.MetricsRecorder)
	app.SessionService = services.NewSessionService(
		app.DB, app.Config, app.AuditService, app.MetricsRecorder)
	app.ClientService = services.NewClientService(
		app.DB, app.ClientCache, app.Config.ClientCacheTTL,
		app.AuditService, app.MetricsRecorder)
	app.AuthorizationService = services.NewAuthorizationService(
		app.DB, app.Config, app.ClientService, app.AuditService, app.MetricsRecorder)
	app.TokenService = services.NewTokenService(
		app.DB, token.NewProvider(app.Config), app.AuditService, app.MetricsRecorder)
	app.DocumentService = services.NewDocumentService(app.DB)
}

func (app *Application) initializeHTTPLayer() {
	app.Router = setupRouter(app)
	app.Server = createHTTPServer(app.Config, app.Router)
}
