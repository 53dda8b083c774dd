package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/farmdesk/cliparse"
	"github.com/danielhkuo/farmdesk/db"
	"github.com/danielhkuo/farmdesk/middleware"
	"github.com/danielhkuo/farmdesk/router"
	"github.com/danielhkuo/farmdesk/sessions"
)

const (
	sweepEvery = 5 * time.Minute
	// drafts live in memory only; logins persist much longer
	workspaceIdle = 30 * time.Minute
	sessionIdle   = 7 * 24 * time.Hour
)

func main() {
	var err error

	// Optional .env in the working directory
	cliparse.LoadDotEnv(".env")

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the session database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Create router
	mux, registry := router.NewRouter(dbConn, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigin)(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go sweep(ctx, registry, sessions.NewStore(dbConn))

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		stop()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "api", cfg.APIBaseURL)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// sweep drops idle drafts and expired sessions until ctx is done
func sweep(ctx context.Context, registry *sessions.Registry, store *sessions.Store) {
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		dropped := registry.Sweep(workspaceIdle)
		deleted, err := store.DeleteIdle(ctx, time.Now().Add(-sessionIdle))
		if err != nil {
			slog.Error("session cleanup failed", "error", err)
			continue
		}
		if dropped > 0 || deleted > 0 {
			slog.Info("swept idle sessions", "workspaces", dropped, "sessions", deleted, "active", registry.Len())
		}
	}
}
