package bootstrap

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/masasa123jp/docshub/internal/cache"
	"github.com/masasa123jp/docshub/internal/config"
	"github.com/masasa123jp/docshub/internal/metrics"
	"github.com/masasa123jp/docshub/internal/services"
	"github.com/masasa123jp/docshub/internal/store"

	"github.com/appleboy/graceful"
)

func createHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// startWithGracefulShutdown runs the server and background jobs until a
// termination signal arrives, then drains them in order.
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	addServerRunningJob(m, app.Server)
	addServerShutdownJob(m, app.Server)
	addExpiredRowSweepJob(m, app.Config, app.DB)
	addAuditCleanupJob(m, app.Config, app.AuditService)
	addMetricsGaugeUpdateJob(m, app.Config, app.DB, app.MetricsRecorder, app.MetricsCache)
	addAuditServiceShutdownJob(m, app.AuditService)
	addCacheShutdownJob(m, app.cacheClosers)

	<-m.Done()
}

func addServerRunningJob(m *graceful.Manager, srv *http.Server) {
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()
		<-ctx.Done()
		return nil
	})
}

func addServerShutdownJob(m *graceful.Manager, srv *http.Server) {
	m.AddShutdownJob(func() error {
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
			return err
		}

		log.Println("Server exited")
		return nil
	})
}

// addExpiredRowSweepJob periodically deletes expired sessions, authorization
// codes, and revocation ledger entries. Expiry is still enforced lazily on
// every read; the sweep only reclaims storage.
func addExpiredRowSweepJob(m *graceful.Manager, cfg *config.Config, db *store.Store) {
	if cfg.CleanupInterval <= 0 {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sweepExpiredRows(db)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

func sweepExpiredRows(db *store.Store) {
	if err := db.DeleteExpiredSessions(); err != nil {
		log.Printf("Failed to sweep expired sessions: %v", err)
	}
	if err := db.DeleteExpiredAuthorizationCodes(); err != nil {
		log.Printf("Failed to sweep expired authorization codes: %v", err)
	}
	if err := db.DeleteExpiredRevokedTokens(); err != nil {
		log.Printf("Failed to sweep expired revocation entries: %v", err)
	}
}

// addAuditCleanupJob prunes audit rows past the retention window once a day
func addAuditCleanupJob(m *graceful.Manager, cfg *config.Config, auditService *services.AuditService) {
	if cfg.AuditLogRetention <= 0 {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		cleanup := func() {
			if deleted, err := auditService.CleanupOldLogs(cfg.AuditLogRetention); err != nil {
				log.Printf("Failed to cleanup old audit logs: %v", err)
			} else if deleted > 0 {
				log.Printf("Cleaned up %d old audit logs", deleted)
			}
		}
		cleanup()

		for {
			select {
			case <-ticker.C:
				cleanup()
			case <-ctx.Done():
				return nil
			}
		}
	})
}

func addMetricsGaugeUpdateJob(
	m *graceful.Manager,
	cfg *config.Config,
	db *store.Store,
	recorder metrics.Recorder,
	metricsCache cache.CacheWithFetch[int64],
) {
	if !cfg.EnableMetrics {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		interval := cfg.CleanupInterval
		if interval <= 0 {
			interval = time.Minute
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		wrapper := metrics.NewCacheWrapper(db, metricsCache)
		wrapper.UpdateGauges(ctx, recorder, interval)

		for {
			select {
			case <-ticker.C:
				wrapper.UpdateGauges(ctx, recorder, interval)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

func addAuditServiceShutdownJob(m *graceful.Manager, auditService *services.AuditService) {
	m.AddShutdownJob(func() error {
		log.Println("Shutting down audit service...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := auditService.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down audit service: %v", err)
			return err
		}
		return nil
	})
}

func addCacheShutdownJob(m *graceful.Manager, closers []func() error) {
	if len(closers) == 0 {
		return
	}

	m.AddShutdownJob(func() error {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				log.Printf("Error closing cache: %v", err)
			}
		}
		log.Println("Caches closed")
		return nil
	})
}
