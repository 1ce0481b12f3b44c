package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "cbrne_dashboard/docs"
	"cbrne_dashboard/internal/config"
	"cbrne_dashboard/internal/handlers"
	"cbrne_dashboard/internal/logger"
	"cbrne_dashboard/internal/repository"
	"cbrne_dashboard/internal/repository/db"
	"cbrne_dashboard/internal/server"
	"cbrne_dashboard/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title                       CBRNe dashboard filter API
// @version                     1.0
// @description                 Faceted filters, quick date ranges and filtered monitoring records for dashboard views.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.Get(cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	loc, err := cfg.Filters.Location()
	if err != nil {
		log.Fatalw("invalid filters timezone", "err", err)
	}

	conn, err := openDB(cfg.DB.Path, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.Options{
		Visibility: cfg.Filters.Visibility,
		Catalog:    cfg.Filters.Catalog,
		Location:   loc,
		IdleTTL:    cfg.Sessions.IdleTTL,
		Auth: service.AuthSettings{
			SigningKey: cfg.Auth.SigningKey,
			TokenTTL:   cfg.Auth.TokenTTL,
		},
		Log: log.Named("service"),
	})
	apiHandler := handlers.NewHandler(services, log.Named("http"))
	apiHandler.SetSnapshotBuffer(cfg.WS.Buffer)
	apiHandler.SetAllowedOrigins(cfg.WS.AllowedOrigins)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// expire sessions of views that went away without closing them
	go services.RunReaper(ctx, cfg.Sessions.ReapInterval)

	srv := server.New(cfg.Port, apiHandler.InitRoutes())
	runHTTPServer(srv, log)

	waitForShutdown(cancel, srv, log)
}

// openDB initializes the SQLite database, falling back to app.db.
func openDB(path string, log *logger.Logger) (*sql.DB, error) {
	if path == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		path = "app.db"
	}
	return db.InitDB(path)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "addr", srv.Addr())
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
